// Package services provides domain services that coordinate work across aggregates
// which does not belong to any single one of them.
//
// The package includes:
//   - LotSynchronizer: aligns the separation control of a transport lot with the
//     lot's current block state and cargo items
package services
