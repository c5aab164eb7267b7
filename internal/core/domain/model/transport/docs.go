// Package transport models the transport lot ("lecom") and its cargo items as the
// separation service sees them: a read-only snapshot owned by the external transport
// subsystem.
//
// The package includes:
//   - Lot: a truck load identified by an external code, with destination, weight,
//     volume, date, vehicle type and block state
//   - CargoItem: one shipment line of a lot, identified by cargo number and sequence
//   - BlockState: RELEASED or BLOCKED
//
// Key rules:
//   - cargo numbers are unique within a lot
//   - sequence numbers are positive and unique within a lot
//
// The separation service never creates or deletes lots; it restores them from the
// store and reconciles separation records against them.
package transport
