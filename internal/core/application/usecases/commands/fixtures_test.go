package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow   = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	fixedClock = kernel.FixedClock{At: fixedNow}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildLot(t *testing.T, lotID kernel.UUID, state transport.BlockState, itemIDs ...kernel.UUID) *transport.Lot {
	t.Helper()
	items := make([]*transport.CargoItem, 0, len(itemIDs))
	for i, id := range itemIDs {
		item, err := transport.RestoreCargoItem(id, "C"+string(rune('1'+i)), i+1, 1, "F")
		require.NoError(t, err)
		items = append(items, item)
	}
	lot, err := transport.RestoreLot(lotID, "L1", transport.LotDetails{
		Destination: "Sorocaba",
		State:       "SP",
		Weight:      decimal.NewFromInt(100),
		Volume:      decimal.NewFromInt(3),
		Date:        fixedNow,
	}, state, items)
	require.NoError(t, err)
	return lot
}

// storedControl returns a persisted control for lotID with one record per item.
func storedControl(t *testing.T, lotID kernel.UUID, itemIDs ...kernel.UUID) *separation.Control {
	t.Helper()
	c, err := separation.NewControl(kernel.NewUUID(), lotID, fixedNow)
	require.NoError(t, err)
	mirrors := make([]separation.CargoMirror, 0, len(itemIDs))
	for i, id := range itemIDs {
		mirrors = append(mirrors, separation.CargoMirror{
			CargoItemID: id, CargoNumber: "C" + string(rune('1'+i)), Seq: i + 1, Deliveries: 1, Mode: "F",
		})
	}
	require.NoError(t, c.Reconcile(mirrors))
	c.MarkPersisted()
	return c
}

func releasedControl(t *testing.T, itemIDs ...kernel.UUID) *separation.Control {
	t.Helper()
	c := storedControl(t, kernel.NewUUID(), itemIDs...)
	_, err := c.Release()
	require.NoError(t, err)
	c.MarkPersisted()
	return c
}
