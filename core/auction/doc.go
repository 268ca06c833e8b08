// Package auction prices transport tasks offered in sealed-bid auctions.
//
// An Agent keeps the assignment of the tasks it has already won. For every
// offer it asks the Estimator for the marginal cost of adding the task: the
// committed plan is re-optimized with the candidate under a short deadline,
// then several speculative rounds repeat the comparison after adding tasks
// sampled from a Distribution. The agent turns that cost into an integer bid,
// lifted towards the lowest price competitors have been seen to offer.
//
// A House runs the auctions themselves between any Participant, such as an
// Agent and the NaiveBidder baseline.
package auction
