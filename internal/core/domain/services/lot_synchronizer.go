package services

import (
	"fmt"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"
	"expedition/internal/pkg/errs"
)

// SyncAction is what a synchronization decided to do with the control of a lot.
type SyncAction int

const (
	// SyncUnchanged means storage already mirrors the lot.
	SyncUnchanged SyncAction = iota
	// SyncCreated means a new control was built and must be inserted.
	SyncCreated
	// SyncUpdated means a stored control changed and its changes must be written.
	SyncUpdated
	// SyncDeleted means the lot is blocked and its control must be deleted.
	SyncDeleted
)

// String returns the wire name of the action.
func (a SyncAction) String() string {
	switch a {
	case SyncCreated:
		return "created"
	case SyncUpdated:
		return "updated"
	case SyncDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// SyncResult is the outcome of LotSynchronizer.Synchronize.
type SyncResult struct {
	Action SyncAction
	// Control is the reconciled control. It is nil for a blocked lot.
	Control *separation.Control
	// Changes lists the row writes for SyncCreated and SyncUpdated.
	Changes separation.Changes
}

// LotSynchronizer derives the separation state of a transport lot from the lot itself.
//
// Rules:
//   - a BLOCKED lot has no control; an existing one is marked for deletion
//   - a RELEASED lot has exactly one control, created Pending when missing
//   - the control holds one record per cargo item; records of vanished items go away
//   - surviving records keep their status and operational data
//
// The synchronizer only decides. Writing the result is the caller's job, inside the
// transaction that loaded the lot and the control.
type LotSynchronizer struct{}

// NewLotSynchronizer creates a LotSynchronizer.
func NewLotSynchronizer() LotSynchronizer {
	return LotSynchronizer{}
}

// Synchronize reconciles existing (nil when the lot has no control yet) against lot.
func (LotSynchronizer) Synchronize(lot *transport.Lot, existing *separation.Control, now time.Time) (SyncResult, error) {
	if err := lot.Validate(); err != nil {
		return SyncResult{}, err
	}
	if existing != nil {
		if err := existing.Validate(); err != nil {
			return SyncResult{}, err
		}
		if !existing.LotID().IsEqual(lot.ID()) {
			return SyncResult{}, errs.NewValueIsInvalidErrorWithCause("control",
				fmt.Errorf("control %s belongs to lot %s, not %s", existing.ID(), existing.LotID(), lot.ID()))
		}
	}

	if lot.IsBlocked() {
		if existing == nil {
			return SyncResult{Action: SyncUnchanged}, nil
		}
		return SyncResult{Action: SyncDeleted}, nil
	}

	control := existing
	action := SyncUpdated
	if control == nil {
		c, err := separation.NewControl(kernel.NewUUID(), lot.ID(), now)
		if err != nil {
			return SyncResult{}, err
		}
		control = c
		action = SyncCreated
	}

	if err := control.Reconcile(mirrorsOf(lot)); err != nil {
		return SyncResult{}, err
	}

	changes := control.Changes()
	if action == SyncUpdated && changes.IsEmpty() {
		action = SyncUnchanged
	}
	return SyncResult{Action: action, Control: control, Changes: changes}, nil
}

func mirrorsOf(lot *transport.Lot) []separation.CargoMirror {
	items := lot.Items()
	mirrors := make([]separation.CargoMirror, 0, len(items))
	for _, item := range items {
		mirrors = append(mirrors, separation.CargoMirror{
			CargoItemID: item.ID(),
			CargoNumber: item.CargoNumber(),
			Seq:         item.Seq(),
			Deliveries:  item.Deliveries(),
			Mode:        item.Mode(),
		})
	}
	return mirrors
}
