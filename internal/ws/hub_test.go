package ws

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitOnline(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Online() != want {
		if time.Now().After(deadline) {
			t.Fatalf("Online() = %d, want %d", h.Online(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func fakeClient() (*Client, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{cancel: cancel}, ctx
}

func TestHub_Online(t *testing.T) {
	hub := NewHub()
	if got := hub.Online(); got != 0 {
		t.Errorf("Online() on new hub = %d, want 0", got)
	}

	a, _ := fakeClient()
	b, _ := fakeClient()
	hub.register <- a
	hub.register <- b
	waitOnline(t, hub, 2)

	hub.unregister <- a
	waitOnline(t, hub, 1)

	// unknown or repeated unregisters are ignored
	hub.unregister <- a
	hub.unregister <- b
	waitOnline(t, hub, 0)
}

func TestHub_ShutdownEmpty(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}

func TestHub_ShutdownCancelsClients(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 3; i++ {
		c, cctx := fakeClient()
		hub.register <- c
		go func() {
			<-cctx.Done()
			hub.unregister <- c
		}()
	}
	waitOnline(t, hub, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v, want nil", err)
	}
	if got := hub.Online(); got != 0 {
		t.Errorf("Online() after Shutdown = %d, want 0", got)
	}

	// a second call is a no-op
	if err := hub.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
}

func TestHub_ShutdownRejectsLateClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	c, cctx := fakeClient()
	hub.register <- c
	select {
	case <-cctx.Done():
	case <-time.After(time.Second):
		t.Error("client registered after Shutdown was not cancelled")
	}
}

func TestHub_ShutdownTimeout(t *testing.T) {
	hub := NewHub()
	c, _ := fakeClient()
	hub.register <- c

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := hub.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want %v", err, context.DeadlineExceeded)
	}
}
