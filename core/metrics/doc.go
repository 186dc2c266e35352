// Package metrics defines interfaces and implementations for collecting
// prediction metrics. Sinks like PromSink and InfluxSink record events such
// as model inferences, training runs or fleet health cycles and can be
// combined with NewMultiSink. The factory helpers return a MultiSink
// automatically when multiple sinks are configured. A collector in
// infra/metrics feeds sinks from the internal event bus.
package metrics
