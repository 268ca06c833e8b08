// Package events defines the auction events emitted on the event bus.
//
// Available event types:
//   - OfferEvent: a task is put up for auction
//   - BidEvent: a participant answered an offer, or declined it
//   - AwardEvent: an auction was resolved
//   - PlanEvent: a fleet plan was computed
package events
