package floodbarrier

import (
	"context"
	"fmt"
)

// Flow collects runtime options in two stages, the serial side (StreamIN)
// and the storage side (StreamOUT), before a Runtime is built:
//
//	flow, _ := floodbarrier.Conf("config.yaml")
//	err := flow.StreamIN(floodbarrier.StreamInSource(sim)).Run(ctx)
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

type (
	FlowOption      func(*Flow)
	StreamInOption  func(*Flow)
	StreamOutOption func(*Flow)
)

// Conf starts a Flow from a config file, or from the field defaults when
// path is empty.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config is live: edits made before StreamOUT reach the Runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

func (f *Flow) Options(opts ...RuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.opts = append(f.opts, opts...)
	return f
}

func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT applies the storage options and builds the Runtime. Nothing is
// opened yet.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Runtime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewRuntime(f.cfg, f.opts...)
}

// Run builds the Runtime and ingests until ctx is cancelled or the serial
// link fails.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		f.opts = append(f.opts, opts...)
	}
}

// StreamInSource replaces the serial port, e.g. with a bench simulator.
func StreamInSource(src LineSource) StreamInOption {
	return func(f *Flow) {
		f.opts = append(f.opts, WithLineSource(src))
	}
}

func StreamInObservability(obs Observability) StreamInOption {
	return func(f *Flow) {
		f.opts = append(f.opts, WithObservability(obs))
	}
}

// StreamOutStore bypasses the configured database.
func StreamOutStore(s Store) StreamOutOption {
	return func(f *Flow) {
		f.opts = append(f.opts, WithStore(s))
	}
}

// StreamOutCallback passes each parsed reading to fn; see NewCallbackStore.
func StreamOutCallback(name string, fn ReadingHandler) StreamOutOption {
	return StreamOutStore(NewCallbackStore(name, fn))
}
