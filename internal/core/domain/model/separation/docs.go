// Package separation holds the separation (picking) lifecycle of a transport lot.
//
// The package includes:
//   - Control: the aggregate root, one per transport lot
//   - CargoRecord: the separation record of one cargo item, owned by a Control
//   - Status and Action: the shared lifecycle vocabulary, with explicit transition
//     tables for controls and for records
//
// A control moves Pending → AwaitingRelease → InProgress → Completed. Records move
// Pending → InProgress → Completed, or straight from Pending to Completed. Starting or
// completing a record moves a waiting control into InProgress, and completing the
// last unfinished record completes the control in the same step.
//
// Reconcile keeps the record set aligned with the cargo items of the lot, and Changes
// tells the persistence layer exactly which rows differ so an unchanged lot costs no
// writes.
package separation
