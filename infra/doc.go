// Package infra holds the adapters around the solver core: the zerolog
// logger, Prometheus and InfluxDB metrics sinks, and the MQTT report
// publisher. They depend only on interfaces declared under core.
package infra
