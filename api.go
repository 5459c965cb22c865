package floodbarrier

import (
	base "github.com/gonikkk/smart-FloodBarrier-monitoring/pkg/floodbarrier"
)

// Re-exported parse error classes for errors.Is.
var (
	ErrFieldCount    = base.ErrFieldCount
	ErrFieldFormat   = base.ErrFieldFormat
	ErrNumericFormat = base.ErrNumericFormat

	ErrChannelStoreClosed = base.ErrChannelStoreClosed
)

// Type aliases so consumers can import github.com/gonikkk/smart-FloodBarrier-monitoring directly.
type (
	Config          = base.Config
	SerialConfig    = base.SerialConfig
	DatabaseConfig  = base.DatabaseConfig
	ViewerConfig    = base.ViewerConfig
	MetricsConfig   = base.MetricsConfig
	LogConfig       = base.LogConfig
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	Reading         = base.Reading
	Row             = base.Row
	LineSource      = base.LineSource
	Store           = base.Store
	StoreConn       = base.StoreConn
	RowReader       = base.RowReader
	Observability   = base.Observability
	Field           = base.Field
	Policy          = base.Policy
	SerialOpenError = base.SerialOpenError
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	StreamInOption  = base.StreamInOption
	StreamOutOption = base.StreamOutOption
	ReadingHandler  = base.ReadingHandler
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInSource(src LineSource) StreamInOption {
	return base.StreamInSource(src)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutStore(s Store) StreamOutOption {
	return base.StreamOutStore(s)
}

func StreamOutCallback(name string, fn ReadingHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Parsing.
func ParseReading(line string) (Reading, error) {
	return base.ParseReading(line)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithLineSource(src LineSource) RuntimeOption {
	return base.WithLineSource(src)
}

func WithStore(s Store) RuntimeOption {
	return base.WithStore(s)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Store adapters.
func NewCallbackStore(name string, fn ReadingHandler) Store {
	return base.NewCallbackStore(name, fn)
}

func NewChannelStore(name string, buffer int) (Store, <-chan Reading, func()) {
	return base.NewChannelStore(name, buffer)
}
