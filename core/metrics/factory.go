package metrics

import (
	"fmt"

	"github.com/kilianp07/haulage/core/factory"
)

// Sink types known to OpenSinks. infra/metrics registers the built-in ones
// ("nop", "prometheus", "influx") from its init function.
var sinkTypes = factory.NewRegistry[MetricsSink]()

// RegisterSink makes a sink type available under typ.
func RegisterSink(typ string, f factory.Factory[MetricsSink]) error {
	return sinkTypes.Register(typ, f)
}

// SinkTypes lists the registered sink types in sorted order.
func SinkTypes() []string { return sinkTypes.Types() }

// OpenSinks builds every sink listed in cfg. Entries of type "nop" are
// skipped. No remaining entry yields NopSink, a single one is returned as is
// and several are fanned out through a MultiSink. On failure the sinks opened
// so far are closed.
func OpenSinks(cfg Config) (MetricsSink, error) {
	var opened []MetricsSink
	for i, mc := range cfg.Sinks {
		if mc.Type == "nop" {
			continue
		}
		s, err := sinkTypes.Create(mc)
		if err != nil {
			NewMultiSink(opened...).Close()
			return nil, fmt.Errorf("sink %d (%s): %w", i, mc.Type, err)
		}
		opened = append(opened, s)
	}
	switch len(opened) {
	case 0:
		return NopSink{}, nil
	case 1:
		return opened[0], nil
	default:
		return NewMultiSink(opened...), nil
	}
}
