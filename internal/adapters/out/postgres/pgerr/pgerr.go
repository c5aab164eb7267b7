// Package pgerr translates PostgreSQL errors raised by the pgx driver into the
// domain error kinds of internal/pkg/errs.
package pgerr

import (
	"errors"
	"regexp"
	"strconv"

	"expedition/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the separation store reacts to.
const (
	UniqueViolation      = "23505"
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
)

// Constraint names created by the migrations.
const (
	ControlLotConstraint  = "uq_separation_controls_lot"
	RecordSeqConstraint   = "uq_separation_records_control_seq"
	RecordItemConstraint  = "uq_separation_records_control_item"
	controlAggregateLabel = "separation control"
	recordAggregateLabel  = "separation cargo record"
)

// detailKey matches the "Key (control_id, seq)=(<uuid>, <n>) already exists." detail.
var detailKey = regexp.MustCompile(`=\(([0-9a-fA-F-]{36}), (\d+)\)`)

// Translate maps err to a domain error. Errors that are not PostgreSQL errors, or
// carry an unrelated code, are returned unchanged.
//
// Example:
//
//	if err := tx.Create(&dto).Error; err != nil {
//	    return pgerr.Translate(err, "separation control", control.ID())
//	}
func Translate(err error, subject string, id any) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case UniqueViolation:
		return translateUnique(pgErr, err, id)
	case SerializationFailure, DeadlockDetected, LockNotAvailable:
		return errs.NewSynchronizationConflictErrorWithCause(subject, id, err)
	default:
		return err
	}
}

func translateUnique(pgErr *pgconn.PgError, err error, id any) error {
	switch pgErr.ConstraintName {
	case RecordSeqConstraint:
		owner, seq := id, 0
		if m := detailKey.FindStringSubmatch(pgErr.Detail); m != nil {
			owner = m[1]
			seq, _ = strconv.Atoi(m[2])
		}
		return errs.NewDuplicateSequenceErrorWithCause(owner, seq, err)
	case ControlLotConstraint:
		return errs.NewDuplicateAggregateErrorWithCause(controlAggregateLabel, id, err)
	case RecordItemConstraint:
		return errs.NewDuplicateAggregateErrorWithCause(recordAggregateLabel, id, err)
	default:
		aggregate := pgErr.TableName
		if aggregate == "" {
			aggregate = pgErr.ConstraintName
		}
		return errs.NewDuplicateAggregateErrorWithCause(aggregate, id, err)
	}
}
