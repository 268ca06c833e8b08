// Package metrics defines the events recorded while planning and bidding and
// the sink interfaces that receive them. Sinks like PromSink and InfluxSink
// live in infra/metrics and register themselves by type; OpenSinks builds
// the configured ones and fans them out through a MultiSink when there are
// several. Optional recorder interfaces are discovered
// with type assertions so a sink only implements what it can store.
package metrics
