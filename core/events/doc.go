// Package events defines the docking events emitted on the event bus.
//
// Available event types:
//   - RequestEvent: a docking request entered the allocator
//   - DecisionEvent: the allocator accepted, rejected or refused a request
//   - ClearEvent: the whole schedule was reset
package events
