package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zairysbigtae/privdm-backend/internal/apperr"
	"github.com/zairysbigtae/privdm-backend/internal/metrics"
)

type State int

const (
	StateIdle State = iota
	StateAwaitingArgument
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingArgument:
		return "awaiting_argument"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	keywordHelp = "help"
	keywordQuit = "quit"
)

const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeInvalid = "invalid"
	outcomePanic   = "panic"
	outcomeTimeout = "timeout"
)

// Session is the per-connection protocol state. It is not safe for concurrent use;
// one connection drives one session from a single goroutine.
type Session struct {
	router  *Router
	log     zerolog.Logger
	state   State
	pending Route
	args    Args
}

func NewSession(router *Router, logger zerolog.Logger) *Session {
	return &Session{router: router, log: logger}
}

func (s *Session) State() State {
	return s.state
}

// Pending reports the command being collected. ok is false when the session is not awaiting input.
func (s *Session) Pending() (keyword string, collected int, remaining int, ok bool) {
	if s.state != StateAwaitingArgument {
		return "", 0, 0, false
	}
	return s.pending.Keyword, len(s.args), s.pending.Arity() - len(s.args), true
}

// Handle consumes one inbound text frame and returns the lines to write back, in order.
func (s *Session) Handle(ctx context.Context, line string) []string {
	switch s.state {
	case StateIdle:
		return s.handleKeyword(ctx, line)
	case StateAwaitingArgument:
		return s.handleArgument(ctx, line)
	default:
		return nil
	}
}

func (s *Session) handleKeyword(ctx context.Context, line string) []string {
	keyword := strings.TrimSpace(line)
	switch keyword {
	case keywordQuit:
		s.Close()
		return nil
	case keywordHelp:
		return []string{s.router.Help()}
	}

	route, ok := s.router.Lookup(keyword)
	if !ok {
		s.log.Debug().Str("keyword", keyword).Msg("unknown command ignored")
		return nil
	}

	var out []string
	if route.Intro != "" {
		out = append(out, route.Intro)
	}
	if route.Arity() == 0 {
		return append(out, s.execute(ctx, route, nil))
	}
	s.state = StateAwaitingArgument
	s.pending = route
	s.args = make(Args, 0, route.Arity())
	return append(out, route.Params[0].Prompt)
}

func (s *Session) handleArgument(ctx context.Context, line string) []string {
	if strings.TrimSpace(line) == keywordQuit {
		s.Close()
		return nil
	}

	route := s.pending
	param := route.Params[len(s.args)]
	arg, err := param.parse(line)
	if err != nil {
		s.reset()
		metrics.CommandsTotal.WithLabelValues(route.Keyword, outcomeInvalid).Inc()
		return []string{errorReply(err)}
	}
	s.args = append(s.args, arg)

	if len(s.args) < route.Arity() {
		return []string{route.Params[len(s.args)].Prompt}
	}
	args := s.args
	s.reset()
	return []string{s.execute(ctx, route, args)}
}

// Expire abandons a partially collected command after the prompt timeout fires.
func (s *Session) Expire() []string {
	if s.state != StateAwaitingArgument {
		return nil
	}
	route := s.pending
	param := route.Params[len(s.args)]
	s.reset()
	metrics.CommandsTotal.WithLabelValues(route.Keyword, outcomeTimeout).Inc()
	return []string{"error: timed out waiting for " + param.Name}
}

// Close discards any partial arguments. A closed session ignores further input.
func (s *Session) Close() {
	s.pending = Route{}
	s.args = nil
	s.state = StateClosed
}

func (s *Session) reset() {
	s.pending = Route{}
	s.args = nil
	s.state = StateIdle
}

func (s *Session) execute(ctx context.Context, route Route, args Args) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("command", route.Keyword).Interface("panic", r).Msg("command handler panicked")
			metrics.CommandsTotal.WithLabelValues(route.Keyword, outcomePanic).Inc()
			reply = errorReply(apperr.Internal(fmt.Errorf("panic: %v", r)))
		}
	}()

	reply, err := route.Run(ctx, args)
	if err != nil {
		ev := s.log.Warn()
		if apperr.KindOf(err) == apperr.KindInternal {
			ev = s.log.Error()
		}
		ev.Err(err).Str("command", route.Keyword).Msg("command failed")
		metrics.CommandsTotal.WithLabelValues(route.Keyword, outcomeError).Inc()
		return errorReply(err)
	}
	metrics.CommandsTotal.WithLabelValues(route.Keyword, outcomeOK).Inc()
	return reply
}

func errorReply(err error) string {
	return "error: " + apperr.Message(err)
}
