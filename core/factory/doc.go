// Package factory instantiates pluggable modules from configuration. A module
// is described by a type name and a map of raw settings; registered factories
// decode the settings into typed structs and return the implementation.
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct{ URL string `json:"url"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://db:8086"}})
package factory
