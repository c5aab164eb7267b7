// Package ports defines the contracts between the separation core and its
// infrastructure: repositories, the unit of work and the metrics sink.
package ports

import (
	"context"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/transport"
)

// TransportLotRepository reads transport lots owned by the transport subsystem.
// The separation core never writes lots.
type TransportLotRepository interface {
	// Get returns a lot with its cargo items ordered by seq.
	// Returns errs.ObjectNotFoundError when the lot does not exist.
	Get(ctx context.Context, id kernel.UUID) (*transport.Lot, error)

	// GetForUpdate is Get with the lot row locked until the transaction ends.
	// Synchronizations of the same lot are serialized on this lock.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*transport.Lot, error)
}
