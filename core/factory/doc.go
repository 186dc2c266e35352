// Package factory provides a small generic registry used to instantiate
// pluggable modules from configuration. A module is described by a type
// string and a map of raw settings; registered factories decode the settings
// into typed structs and return the concrete implementation. Metric sinks,
// weather providers and prediction log stores are all built through it.
//
// Example usage:
//
//	reg := factory.NewRegistry[weather.Provider]()
//	reg.Register("mock", func(conf map[string]any) (weather.Provider, error) {
//	    var c struct {
//	        Seed int64 `json:"seed"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return weather.NewMock(c.Seed), nil
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "mock", Conf: map[string]any{"seed": 7}})
package factory
