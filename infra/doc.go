// Package infra contains technical adapters: the zerolog logger, metrics
// sinks for Prometheus and InfluxDB, and the MQTT result publisher. These
// packages depend only on the interfaces defined in the core packages.
package infra
