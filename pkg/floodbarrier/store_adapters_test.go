package floodbarrier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewCallbackStore(t *testing.T) {
	var received []Reading
	st := NewCallbackStore("cb", func(r Reading) error {
		received = append(received, r)
		return nil
	})

	conn, err := st.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	if err := conn.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}

	input := Reading{RainMM: 17, Level: "주의", ServoOn: true}
	if err := conn.Insert(context.Background(), input); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if len(received) != 1 || received[0] != input {
		t.Fatalf("unexpected readings %+v", received)
	}
	if st.Name() != "cb" {
		t.Fatalf("expected name cb, got %s", st.Name())
	}
}

func TestNewCallbackStoreNilHandler(t *testing.T) {
	st := NewCallbackStore("", nil)
	conn, _ := st.Connect(context.Background())
	if err := conn.Insert(context.Background(), Reading{}); err == nil {
		t.Fatalf("expected error when callback is nil")
	}
	if !conn.IsConnected(context.Background()) {
		t.Fatalf("a handler error must not look like a dead connection")
	}
}

func TestNewChannelStore(t *testing.T) {
	st, ch, closeFn := NewChannelStore("chan", 1)
	defer closeFn()

	conn, err := st.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	input := Reading{RainMM: 2, Level: "정상"}
	errCh := make(chan error, 1)
	go func() {
		errCh <- conn.Insert(context.Background(), input)
	}()

	var got Reading
	select {
	case got = <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel reading")
	}
	if err := <-errCh; err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if got != input {
		t.Fatalf("unexpected reading %+v", got)
	}

	closeFn()
	if err := conn.Insert(context.Background(), input); !errors.Is(err, ErrChannelStoreClosed) {
		t.Fatalf("expected ErrChannelStoreClosed, got %v", err)
	}
	if conn.IsConnected(context.Background()) {
		t.Fatalf("closed store must report disconnected")
	}
	if _, err := st.Connect(context.Background()); !errors.Is(err, ErrChannelStoreClosed) {
		t.Fatalf("expected Connect to fail after close, got %v", err)
	}
}
