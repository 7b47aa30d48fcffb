// Package repository defines the storage port the bitemporal engine is
// written against.
//
// The Store interface is the only seam between the engine and the relational
// backend. Reads are available outside transactions; every mutation runs its
// read-check-write sequence inside a single Transact call, which is the only
// synchronization primitive the engine relies on.
//
// The sqlite subpackage provides the production implementation. Row mapping
// (toRow/fromRow) is owned by the adapter; domain types carry no persistence
// concerns.
package repository
