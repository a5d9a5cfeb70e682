// Package inbound hands callback URLs from the host into the payment manager.
//
// Callbacks often arrive on a platform thread that must not block, so the
// Receiver accepts them without waiting and replays them on its own goroutine.
// The loopback router turns a browser redirect to a local HTTP listener into
// the same delivery, for desktop hosts without a custom URL scheme.
package inbound
