package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zairysbigtae/privdm-backend/internal/apperr"
)

type Domain string

const (
	DomainMessages  Domain = "messages"
	DomainUsers     Domain = "users"
	DomainRooms     Domain = "rooms"
	DomainRelations Domain = "relations"
)

type Op string

const (
	OpGet    Op = "get"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
	OpEdit   Op = "edit"
	OpAttach Op = "attach"
)

type ParamKind int

const (
	Text ParamKind = iota
	Integer
)

// Param is one positional argument collected by a multi-turn command.
type Param struct {
	Name   string
	Prompt string
	Kind   ParamKind
}

// Arg is a collected argument. Int is set only for Integer params.
type Arg struct {
	Text string
	Int  int64
}

type Args []Arg

func (p Param) parse(line string) (Arg, error) {
	if p.Kind != Integer {
		return Arg{Text: line}, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return Arg{}, apperr.Validation(fmt.Sprintf("invalid %s: must be an integer", p.Name))
	}
	return Arg{Text: line, Int: n}, nil
}

// HandlerFunc runs a command once all of its arguments are collected and returns the reply.
type HandlerFunc func(ctx context.Context, args Args) (string, error)

type Route struct {
	Keyword string
	Domain  Domain
	Op      Op
	Summary string
	// Intro is written as soon as the keyword is recognised, before any prompt.
	Intro  string
	Params []Param
	Run    HandlerFunc
}

func (r Route) Arity() int {
	return len(r.Params)
}

// Router maps each keyword to exactly one route.
type Router struct {
	routes map[string]Route
	help   string
}

func newRouter(routes ...Route) *Router {
	r := &Router{routes: make(map[string]Route, len(routes))}
	for _, route := range routes {
		if _, dup := r.routes[route.Keyword]; dup {
			panic("command: duplicate keyword " + route.Keyword)
		}
		r.routes[route.Keyword] = route
	}
	r.help = helpText(routes)
	return r
}

func (r *Router) Lookup(keyword string) (Route, bool) {
	route, ok := r.routes[keyword]
	return route, ok
}

// Help is the static listing written in reply to "help".
func (r *Router) Help() string {
	return r.help
}

var domainHeadings = []struct {
	domain  Domain
	heading string
}{
	{DomainMessages, "MESSAGE"},
	{DomainUsers, "USER"},
	{DomainRooms, "ROOM"},
	{DomainRelations, "RELATION"},
}

func helpText(routes []Route) string {
	var b strings.Builder
	for _, d := range domainHeadings {
		first := true
		for _, route := range routes {
			if route.Domain != d.domain {
				continue
			}
			if first {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				fmt.Fprintf(&b, "--- %s ---\n", d.heading)
				first = false
			}
			fmt.Fprintf(&b, "%s - %s\n", route.Keyword, route.Summary)
		}
	}
	b.WriteString("\nhelp - Shows this listing\nquit - Closes the connection")
	return b.String()
}
