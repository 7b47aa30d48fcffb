// Package service orchestrates the bitemporal engine: ModifyService applies
// mutations as single storage transactions, QueryService translates read
// coordinates into storage predicates and assembles results.
//
// Services take their collaborators (store, clock, event bus, logger) as
// constructor arguments; there is no global wiring. The injected clock
// supplies the "now" instant for every transition so tests can pin time.
package service
