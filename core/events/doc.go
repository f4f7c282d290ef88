// Package events defines the events emitted on the run event bus.
//
// Available event types:
//   - RunEvent: a solve run finished, successfully or not
package events
