package options

import (
	"strings"
)

// Options is the validated record of all parsed command-line inputs plus the
// diagnostics accumulated while parsing. An empty string means the flag was
// not supplied. A non-empty Errors slice marks the invocation as invalid.
type Options struct {
	Help     bool
	URL      string
	Username string
	Query    string
	Output   string
	Errors   []string
}

// valueFlags are the recognized flags that require a value.
var valueFlags = map[string]bool{
	"url":      true,
	"username": true,
	"query":    true,
	"output":   true,
}

// Parse tokenizes raw command-line arguments into an Options record. It never
// stops at the first problem: every unknown flag, unknown positional, and
// missing flag value is collected. Diagnostics are reported grouped: unknown
// options first, then unknown arguments, then missing values. The grouping
// falls out of two independent scans over the same tokens, one classifying
// flags and positionals, one checking value presence.
func Parse(rawArgs []string) Options {
	var o Options
	var unknownOpts, unknownArgs []string

	// First scan: classify every token and capture flag values. A bare "--"
	// ends flag recognition; everything after it is a positional.
	flagMode := true
	for i := 0; i < len(rawArgs); i++ {
		arg := rawArgs[i]
		if flagMode && arg == "--" {
			flagMode = false
			continue
		}
		if !flagMode || !isFlagToken(arg) {
			unknownArgs = append(unknownArgs, "Unknown argument: "+arg)
			continue
		}

		name, inline, hasInline := splitFlag(arg)
		switch {
		case name == "help" || name == "h":
			o.Help = true
		case valueFlags[name]:
			if hasInline {
				// An empty inline value is reported by the second scan and
				// does not set the flag.
				if inline != "" {
					o.set(name, inline)
				}
			} else if i+1 < len(rawArgs) && !isFlagToken(rawArgs[i+1]) {
				i++
				o.set(name, rawArgs[i])
			}
			// A bare value flag at the end of the line, or followed by
			// another flag, consumes nothing; the second scan reports it.
		default:
			unknownOpts = append(unknownOpts, "Unknown option: --"+name)
		}
	}

	// Second scan: report value flags that were given without a value.
	var missing []string
	for i := 0; i < len(rawArgs); i++ {
		arg := rawArgs[i]
		if arg == "--" {
			break
		}
		if !isFlagToken(arg) {
			continue
		}
		name, inline, hasInline := splitFlag(arg)
		if !valueFlags[name] {
			continue
		}
		if hasInline {
			if inline == "" {
				missing = append(missing, "Missing value for: --"+name)
			}
			continue
		}
		if i+1 >= len(rawArgs) || isFlagToken(rawArgs[i+1]) {
			missing = append(missing, "Missing value for: --"+name)
			continue
		}
		i++
	}

	o.Errors = append(o.Errors, unknownOpts...)
	o.Errors = append(o.Errors, unknownArgs...)
	o.Errors = append(o.Errors, missing...)
	return o
}

// Validate appends the post-parse diagnostics: exactly one of URL and Username
// must be set for a runnable invocation.
func (o *Options) Validate() {
	if o.URL != "" && o.Username != "" {
		o.Errors = append(o.Errors, "Conflicting options: --url and --username")
	}
	if o.URL == "" && o.Username == "" {
		o.Errors = append(o.Errors, "Missing required option: --url or --username")
	}
}

// set records a value flag. Repeated occurrences keep the last value.
func (o *Options) set(name, value string) {
	switch name {
	case "url":
		o.URL = value
	case "username":
		o.Username = value
	case "query":
		o.Query = value
	case "output":
		o.Output = value
	}
}

// isFlagToken reports whether a token is dash-prefixed. A bare "-" is treated
// as a positional, following the usual stdin placeholder convention.
func isFlagToken(arg string) bool {
	return len(arg) > 1 && strings.HasPrefix(arg, "-")
}

// splitFlag strips leading dashes and separates an inline "=value" part.
func splitFlag(arg string) (name, inline string, hasInline bool) {
	trimmed := strings.TrimLeft(arg, "-")
	if eq := strings.Index(trimmed, "="); eq >= 0 {
		return trimmed[:eq], trimmed[eq+1:], true
	}
	return trimmed, "", false
}
