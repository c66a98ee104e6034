package trophy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gh-trophy/internal/logging"
	"gh-trophy/internal/stats"
)

// Response is the outcome of one trophy request.
type Response struct {
	Status int
	Body   []byte
}

// OK reports whether the response carries a renderable document.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// statsProvider is the service's view of the profile stats source.
type statsProvider interface {
	Fetch(ctx context.Context, login string) (*stats.Stats, error)
}

// Service turns profile requests into trophy SVG responses. It is the
// in-process handler behind the CLI request boundary.
type Service struct {
	provider statsProvider
	themes   map[string]Theme
	now      func() time.Time
}

// NewService wires a trophy handler around the given stats source.
func NewService(provider statsProvider) (*Service, error) {
	themes, err := LoadThemes()
	if err != nil {
		return nil, err
	}
	return &Service{provider: provider, themes: themes, now: time.Now}, nil
}

// Handle serves one request URL. Request-level problems (missing username,
// unknown user, upstream failure) come back as non-success responses; an
// error return means the request could not be completed at all.
func (s *Service) Handle(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &Response{Status: http.StatusBadRequest, Body: []byte(fmt.Sprintf("invalid request URL: %v", err))}, nil
	}
	q := u.Query()
	username := q.Get("username")
	if username == "" {
		return &Response{Status: http.StatusBadRequest, Body: []byte("username parameter is required")}, nil
	}

	st, err := s.provider.Fetch(ctx, username)
	if err != nil {
		if errors.Is(err, stats.ErrUserNotFound) {
			return &Response{Status: http.StatusNotFound, Body: []byte(fmt.Sprintf("user '%s' not found", username))}, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logging.Logf(logging.Error, "Stats fetch for '%s' failed: %v", username, err)
		return &Response{Status: http.StatusBadGateway, Body: []byte(fmt.Sprintf("failed to fetch stats for '%s': %v", username, err))}, nil
	}

	trophies := Evaluate(st, s.now())
	if titles := listParam(q.Get("title")); len(titles) > 0 {
		trophies = filterByTitle(trophies, titles)
	}
	if ranks := listParam(q.Get("rank")); len(ranks) > 0 {
		trophies = filterByRank(trophies, ranks)
	}

	column := intParam(q, "column", DefaultColumn)
	if column == -1 {
		// Single row holding every trophy.
		column = len(trophies)
	}
	svg, err := RenderGrid(trophies, RenderOptions{
		Theme:        s.theme(q.Get("theme")),
		Column:       column,
		Row:          intParam(q, "row", DefaultRow),
		MarginWidth:  intParam(q, "margin-w", 0),
		MarginHeight: intParam(q, "margin-h", 0),
		NoBackground: boolParam(q, "no-bg"),
		NoFrame:      boolParam(q, "no-frame"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render trophies for '%s': %w", username, err)
	}
	return &Response{Status: http.StatusOK, Body: []byte(svg)}, nil
}

// theme resolves a requested palette name, falling back to the default for
// unknown names.
func (s *Service) theme(name string) Theme {
	if name != "" {
		if t, ok := s.themes[normalizeKey(name)]; ok {
			return t
		}
		logging.Logf(logging.Debug, "Unknown theme '%s', using '%s'", name, DefaultTheme)
	}
	return s.themes[DefaultTheme]
}

// normalizeKey lower-cases and trims a lookup token.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// listParam splits a comma-separated parameter into a lookup set.
func listParam(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if key := normalizeKey(part); key != "" {
			set[key] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// intParam reads an integer query parameter, keeping the fallback for absent
// or malformed values.
func intParam(q url.Values, name string, fallback int) int {
	raw := q.Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		logging.Logf(logging.Debug, "Ignoring non-numeric '%s' value '%s'", name, raw)
		return fallback
	}
	return n
}

// boolParam treats only the literal "true" as set.
func boolParam(q url.Values, name string) bool {
	return q.Get(name) == "true"
}
