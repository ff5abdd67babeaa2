// Package event is the notification bus between the engine and its front
// ends.
//
// Topics use dot notation. Subscription patterns may use "*" for exactly one
// segment and "**" for any number of segments:
//
//	chord.finalized     exact match
//	registration.*      registration.conflict, registration.invariant
//	**                  everything
//
// Delivery is synchronous on the publishing goroutine. The engine publishes
// from the event loop, so handlers must not block.
package event
