package postgres

import "gorm.io/gorm"

// TxOf exposes the open transaction to the integration tests.
func TxOf(uow *GormUnitOfWork) *gorm.DB {
	return uow.tx
}
