package serial

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	bugst "go.bug.st/serial"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// Config captures the link settings of the controller's UART.
type Config struct {
	Port         string        `yaml:"port" validate:"required"`
	BaudRate     int           `yaml:"baud_rate" validate:"gt=0"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
	MaxLineBytes int           `yaml:"max_line_bytes" validate:"gt=0"`
}

func (c *Config) ApplyDefaults() {
	if c.Port == "" {
		c.Port = "/dev/serial0"
	}
	if c.BaudRate <= 0 {
		c.BaudRate = 115200
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = time.Second
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = 1024
	}
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.BaudRate <= 0 {
		return errors.New("baud_rate must be > 0")
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read_timeout must be > 0")
	}
	return nil
}

// OpenError reports that the serial device could not be opened.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string { return fmt.Sprintf("open serial port %s: %v", e.Port, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// Source reads newline-terminated records from a serial port.
type Source struct {
	port    io.ReadCloser
	chunk   []byte
	pending []byte
	max     int
}

// Open opens the port as 8N1 with the configured baud rate and read timeout.
func Open(cfg Config) (*Source, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &OpenError{Port: cfg.Port, Err: err}
	}

	port, err := bugst.Open(cfg.Port, &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, &OpenError{Port: cfg.Port, Err: err}
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, &OpenError{Port: cfg.Port, Err: fmt.Errorf("set read timeout: %w", err)}
	}

	return newSource(port, cfg.MaxLineBytes), nil
}

func newSource(port io.ReadCloser, maxLine int) *Source {
	return &Source{
		port:  port,
		chunk: make([]byte, 256),
		max:   maxLine,
	}
}

// ReadLine returns the next line including its terminator. A read timeout
// with no complete line returns (nil, nil); partial data is kept for the
// next call. Lines longer than MaxLineBytes are returned unterminated.
func (s *Source) ReadLine(ctx context.Context) ([]byte, error) {
	for {
		if line := s.takeLine(); line != nil {
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, nil
		}

		n, err := s.port.Read(s.chunk)
		if n > 0 {
			s.pending = append(s.pending, s.chunk[:n]...)
		}
		if err != nil {
			return nil, fmt.Errorf("serial read: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
	}
}

func (s *Source) takeLine() []byte {
	end := bytes.IndexByte(s.pending, '\n') + 1
	if end == 0 || end > s.max {
		if len(s.pending) < s.max {
			return nil
		}
		end = s.max
	}
	line := make([]byte, end)
	copy(line, s.pending[:end])
	s.pending = append(s.pending[:0], s.pending[end:]...)
	return line
}

func (s *Source) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

var _ ports.LineSource = (*Source)(nil)
