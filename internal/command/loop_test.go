package command

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanTransport feeds lines from in and records replies on out. Closing in acts as a disconnect.
type chanTransport struct {
	in  chan string
	out chan string
}

func newChanTransport() *chanTransport {
	return &chanTransport{in: make(chan string), out: make(chan string, 32)}
}

func (t *chanTransport) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-t.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *chanTransport) WriteLine(ctx context.Context, line string) error {
	t.out <- line
	return nil
}

func (t *chanTransport) expect(tb testing.TB, want ...string) {
	tb.Helper()
	for _, w := range want {
		select {
		case got := <-t.out:
			assert.Equal(tb, w, got)
		case <-time.After(2 * time.Second):
			tb.Fatalf("timed out waiting for %q", w)
		}
	}
}

func serveAsync(t *chanTransport, s *Session, timeout time.Duration) <-chan error {
	done := make(chan error, 1)
	go func() { done <- Serve(context.Background(), t, s, timeout) }()
	return done
}

func waitDone(tb testing.TB, done <-chan error) error {
	tb.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		tb.Fatal("Serve did not return")
		return nil
	}
}

func TestServe_Conversation(t *testing.T) {
	s, _ := newTestSession()
	tr := newChanTransport()
	done := serveAsync(tr, s, 0)

	tr.in <- "insert_msg"
	tr.expect(t, "Inserting a message...", "content: ")
	tr.in <- "hi there"
	tr.expect(t, `Inserted "hi there"`)
	tr.in <- "nonsense"
	tr.in <- "quit"

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, StateClosed, s.State())
	assert.Empty(t, tr.out)
}

func TestServe_DisconnectMidCommand(t *testing.T) {
	s, st := newTestSession()
	tr := newChanTransport()
	done := serveAsync(tr, s, 0)

	tr.in <- "insert_room"
	tr.expect(t, "Creating a new room...", "Room name: ")
	close(tr.in)

	require.NoError(t, waitDone(t, done))
	assert.Equal(t, StateClosed, s.State())
	rooms, err := st.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestServe_PromptTimeout(t *testing.T) {
	s, _ := newTestSession()
	tr := newChanTransport()
	done := serveAsync(tr, s, 50*time.Millisecond)

	tr.in <- "delete_msg"
	tr.expect(t, "Deleting a message...", "ID: ")
	tr.expect(t, "error: timed out waiting for ID")

	// Idle sessions wait without a deadline.
	time.Sleep(100 * time.Millisecond)
	tr.in <- "get_rooms"
	tr.expect(t, "Requesting rooms...", "Rooms: []")
	tr.in <- "quit"
	require.NoError(t, waitDone(t, done))
}

type failingTransport struct{ err error }

func (f failingTransport) ReadLine(context.Context) (string, error) { return "", f.err }

func (f failingTransport) WriteLine(context.Context, string) error { return f.err }

func TestServe_TransportError(t *testing.T) {
	s, _ := newTestSession()
	boom := errors.New("boom")
	err := Serve(context.Background(), failingTransport{err: boom}, s, 0)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, s.State())
}
