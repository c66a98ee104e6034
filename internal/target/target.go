package target

import (
	"errors"
	"net/url"
	"strings"

	"gh-trophy/internal/options"
)

// baseURL is the placeholder origin for synthesized requests. The in-process
// handler routes on query parameters, never on the host.
const baseURL = "http://localhost/"

// ErrNoTarget is returned when neither a URL nor a username is available to
// build a request from.
var ErrNoTarget = errors.New("no url or username provided")

// BuildURL constructs the request URL for an invocation. An explicit URL is
// returned verbatim; its shape is the handler's problem. Otherwise a URL is
// synthesized on the placeholder origin with the username parameter first,
// followed by the extra query parameters in their source order.
func BuildURL(o options.Options) (string, error) {
	if o.URL != "" {
		return o.URL, nil
	}
	if o.Username == "" {
		return "", ErrNoTarget
	}

	var b strings.Builder
	b.WriteString(baseURL)
	b.WriteString("?username=")
	b.WriteString(url.QueryEscape(o.Username))
	for _, pair := range extraParams(o.Query) {
		b.WriteByte('&')
		b.WriteString(pair)
	}
	return b.String(), nil
}

// extraParams normalizes the user-supplied extra query string into encoded
// key=value pairs. One leading "?" is tolerated. Pairs named "username" are
// dropped so the extra query cannot override the explicit username; duplicate
// keys are preserved in order, never collapsed.
func extraParams(query string) []string {
	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return nil
	}

	var pairs []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if eq := strings.Index(pair, "="); eq >= 0 {
			key, value = pair[:eq], pair[eq+1:]
		}
		decodedKey := decodeComponent(key)
		if decodedKey == "username" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(decodedKey)+"="+url.QueryEscape(decodeComponent(value)))
	}
	return pairs
}

// decodeComponent unescapes a query component, keeping the raw text when the
// escaping is malformed rather than failing the whole build.
func decodeComponent(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
