package floodbarrier

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrChannelStoreClosed is returned once the channel store has been closed.
// The ingestion loop stops with this error.
var ErrChannelStoreClosed = errors.New("floodbarrier: channel store closed")

// ReadingHandler receives each reading the loop would otherwise insert.
type ReadingHandler func(Reading) error

// NewCallbackStore adapts a ReadingHandler into a Store so callers can plug
// arbitrary functions without defining structs. A handler error counts as a
// failed insert on a live connection: the reading is dropped and logged.
func NewCallbackStore(name string, fn ReadingHandler) Store {
	if name == "" {
		name = "callback"
	}
	return &callbackStore{name: name, fn: fn}
}

// NewChannelStore exposes readings via a channel; it returns the store, the
// read-only channel, and a close function the caller should invoke during
// shutdown. Inserts block until the reader takes the reading or close is called.
func NewChannelStore(name string, buffer int) (Store, <-chan Reading, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Reading, buffer)
	s := &channelStore{
		name:   name,
		ch:     ch,
		closed: make(chan struct{}),
	}
	return s, ch, func() { s.close() }
}

type callbackStore struct {
	name string
	fn   ReadingHandler
}

func (s *callbackStore) Connect(context.Context) (StoreConn, error) { return s, nil }
func (s *callbackStore) Name() string                               { return s.name }
func (s *callbackStore) EnsureSchema(context.Context) error         { return nil }
func (s *callbackStore) IsConnected(context.Context) bool           { return true }
func (s *callbackStore) Close() error                               { return nil }

func (s *callbackStore) Insert(_ context.Context, r Reading) error {
	if s.fn == nil {
		return fmt.Errorf("callback store %q: nil handler", s.name)
	}
	return s.fn(r)
}

type channelStore struct {
	name   string
	ch     chan Reading
	closed chan struct{}
	once   sync.Once

	// held by senders so ch is never closed under them
	mu sync.RWMutex
}

func (s *channelStore) Connect(context.Context) (StoreConn, error) {
	select {
	case <-s.closed:
		return nil, ErrChannelStoreClosed
	default:
		return s, nil
	}
}

func (s *channelStore) Name() string                       { return s.name }
func (s *channelStore) EnsureSchema(context.Context) error { return nil }
func (s *channelStore) Close() error                       { return nil }

func (s *channelStore) IsConnected(context.Context) bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func (s *channelStore) Insert(_ context.Context, r Reading) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.closed:
		return ErrChannelStoreClosed
	default:
	}

	select {
	case <-s.closed:
		return ErrChannelStoreClosed
	case s.ch <- r:
		return nil
	}
}

func (s *channelStore) close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}
