package serial

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// scriptedPort returns one chunk per Read; an empty chunk simulates a read
// timeout.
type scriptedPort struct {
	chunks [][]byte
	err    error
	closed bool
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	if len(p.chunks) == 0 {
		if p.err != nil {
			return 0, p.err
		}
		return 0, nil
	}
	c := p.chunks[0]
	p.chunks = p.chunks[1:]
	return copy(b, c), nil
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

func TestReadLineAssemblesAcrossReads(t *testing.T) {
	port := &scriptedPort{chunks: [][]byte{
		[]byte("RAIN=23,LEV"),
		[]byte("EL=정상,SERVO=ON\nRAIN=5,"),
		[]byte("LEVEL=위험,SERVO=OFF\n"),
	}}
	src := newSource(port, 1024)
	ctx := context.Background()

	first, err := src.ReadLine(ctx)
	if err != nil || string(first) != "RAIN=23,LEVEL=정상,SERVO=ON\n" {
		t.Fatalf("unexpected first line %q (%v)", first, err)
	}
	second, err := src.ReadLine(ctx)
	if err != nil || string(second) != "RAIN=5,LEVEL=위험,SERVO=OFF\n" {
		t.Fatalf("unexpected second line %q (%v)", second, err)
	}
}

func TestReadLineTimeoutKeepsPartial(t *testing.T) {
	port := &scriptedPort{chunks: [][]byte{[]byte("RAIN=1,"), {}, []byte("LEVEL=a,SERVO=ON\n")}}
	src := newSource(port, 1024)
	ctx := context.Background()

	line, err := src.ReadLine(ctx)
	if err != nil || line != nil {
		t.Fatalf("expected empty read on timeout, got %q (%v)", line, err)
	}
	line, err = src.ReadLine(ctx)
	if err != nil || string(line) != "RAIN=1,LEVEL=a,SERVO=ON\n" {
		t.Fatalf("expected partial data to be completed, got %q (%v)", line, err)
	}
}

func TestReadLineFlushesOverlongLine(t *testing.T) {
	port := &scriptedPort{chunks: [][]byte{[]byte("0123456789ABC\n")}}
	src := newSource(port, 8)

	line, err := src.ReadLine(context.Background())
	if err != nil || string(line) != "01234567" {
		t.Fatalf("expected first 8 bytes flushed, got %q (%v)", line, err)
	}
	line, _ = src.ReadLine(context.Background())
	if string(line) != "89ABC\n" {
		t.Fatalf("expected remainder, got %q", line)
	}
}

func TestReadLinePropagatesPortError(t *testing.T) {
	port := &scriptedPort{err: io.ErrUnexpectedEOF}
	src := newSource(port, 1024)

	if _, err := src.ReadLine(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected port error, got %v", err)
	}
}

func TestReadLineCancelledContext(t *testing.T) {
	port := &scriptedPort{chunks: [][]byte{[]byte("RAIN=1,LEVEL=a,SERVO=ON\n")}}
	src := newSource(port, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	line, err := src.ReadLine(ctx)
	if line != nil || err != nil {
		t.Fatalf("expected no read after cancellation, got %q (%v)", line, err)
	}
	if len(port.chunks) != 1 {
		t.Fatalf("expected port not to be read")
	}
}

func TestCloseReleasesPort(t *testing.T) {
	port := &scriptedPort{}
	src := newSource(port, 1024)
	if err := src.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !port.closed {
		t.Fatalf("expected port to be closed")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != "/dev/serial0" || cfg.BaudRate != 115200 || cfg.ReadTimeout != time.Second || cfg.MaxLineBytes != 1024 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open(Config{Port: "/dev/does-not-exist-floodbarrier"})
	var openErr *OpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("expected OpenError, got %v", err)
	}
	if openErr.Port != "/dev/does-not-exist-floodbarrier" {
		t.Fatalf("unexpected port in error: %s", openErr.Port)
	}
}
