// Package aggregates implements the order-inventory write side: the product store,
// the cart aggregate maintainer and the checkout coordinator.
//
// Implementations compose table-level repos from internal/data/repos and own the
// transaction boundary of every write. Inside a transaction rows are locked in one
// fixed order, cart_entry rows then product rows then the cart row, each ascending
// by id, so concurrent writers cannot deadlock on each other.
package aggregates
