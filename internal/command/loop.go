package command

import (
	"context"
	"errors"
	"io"
	"time"
)

// Transport carries text lines in both directions. ReadLine returns io.EOF once the peer is gone.
// A ReadLine aborted by its context must leave the transport usable.
type Transport interface {
	ReadLine(ctx context.Context) (string, error)
	WriteLine(ctx context.Context, line string) error
}

// Serve drives s over t until the peer quits, disconnects or ctx is cancelled.
// promptTimeout bounds the wait for each argument; zero disables it.
func Serve(ctx context.Context, t Transport, s *Session, promptTimeout time.Duration) error {
	for s.State() != StateClosed {
		line, err := readLine(ctx, t, s, promptTimeout)
		switch {
		case err == nil:
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			if err := writeLines(ctx, t, s.Expire()); err != nil {
				return err
			}
			continue
		case errors.Is(err, io.EOF):
			s.Close()
			return nil
		default:
			s.Close()
			return err
		}

		if err := writeLines(ctx, t, s.Handle(ctx, line)); err != nil {
			return err
		}
	}
	return nil
}

func readLine(ctx context.Context, t Transport, s *Session, promptTimeout time.Duration) (string, error) {
	if promptTimeout <= 0 || s.State() != StateAwaitingArgument {
		return t.ReadLine(ctx)
	}
	rctx, cancel := context.WithTimeout(ctx, promptTimeout)
	defer cancel()
	return t.ReadLine(rctx)
}

func writeLines(ctx context.Context, t Transport, lines []string) error {
	for _, line := range lines {
		if err := t.WriteLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}
