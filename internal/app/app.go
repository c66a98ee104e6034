package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gh-trophy/internal/logging"
	"gh-trophy/internal/options"
	"gh-trophy/internal/output"
	"gh-trophy/internal/stats"
	"gh-trophy/internal/target"
	"gh-trophy/internal/trophy"
	"gh-trophy/internal/util"
)

// --- Interfaces for Testability ---

// trophyHandler is the request boundary: a URL in, a response out.
type trophyHandler interface {
	Handle(ctx context.Context, rawURL string) (*trophy.Response, error)
}

// handlerFactory builds the handler lazily so that invalid invocations never
// touch the network stack.
type handlerFactory interface {
	New() (trophyHandler, error)
}

// --- Default Implementations ---

type defaultHandlerFactory struct{}

// New wires the real trophy service around a stats client configured from the
// environment. It satisfies the handlerFactory interface.
func (f *defaultHandlerFactory) New() (trophyHandler, error) {
	client, err := stats.NewClientFromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	return trophy.NewService(client)
}

// --- AppRunner ---

// AppRunner encapsulates the application's execution logic and dependencies.
type AppRunner struct {
	handlerFactory handlerFactory
	writer         output.Writer
	stdout         io.Writer
	stderr         io.Writer
}

// AppRunnerOpts allows configuring the AppRunner's dependencies.
type AppRunnerOpts struct {
	HandlerFactory handlerFactory
	Writer         output.Writer
	Stdout         io.Writer
	Stderr         io.Writer
}

// NewAppRunner creates a new instance of the application runner with default
// dependencies.
func NewAppRunner() *AppRunner {
	return NewAppRunnerWithOpts(AppRunnerOpts{})
}

// NewAppRunnerWithOpts creates a new AppRunner allowing dependency injection.
func NewAppRunnerWithOpts(opts AppRunnerOpts) *AppRunner {
	factory := opts.HandlerFactory
	if factory == nil {
		factory = &defaultHandlerFactory{}
	}
	writer := opts.Writer
	if writer == nil {
		writer = output.NewDiskWriter()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	return &AppRunner{
		handlerFactory: factory,
		writer:         writer,
		stdout:         stdout,
		stderr:         stderr,
	}
}

// usageText defines the command-line help information.
const usageText = `Usage:
  gh-trophy [options]

Options:
  --username string
        GitHub login to fetch trophies for
  --url string
        Full request URL including query string (conflicts with --username)
  --query string
        Extra query parameters for the generated URL, without a leading '?'
  --output string
        Destination file path (default "generated/<username>.svg")
  --help
        Show help

Environment:
  GITHUB_TOKEN     GitHub API token (GITHUB_TOKEN1/GITHUB_TOKEN2 take precedence)
  GITHUB_API_URL   Override the GraphQL endpoint
  TROPHY_AUTH      Authentication mode (token, basic, ntlm, oauth2, none)
  TROPHY_TIMEOUT   Request timeout in seconds (default 30)
  TROPHY_LOG       Logging level (none, error, warn, info, debug)

Examples:
  gh-trophy --username octocat
  gh-trophy --username octocat --query "theme=onedark&column=4" --output out/octocat.svg
  gh-trophy --url "http://localhost/?username=octocat&theme=gruvbox"
`

// Usage prints the command-line help information to the specified writer.
func (a *AppRunner) Usage(writer io.Writer) {
	fmt.Fprint(writer, usageText)
}

// Run drives one invocation: parse and validate the arguments, build the
// request URL, dispatch it to the trophy handler, and persist the SVG
// payload. The return value is the process exit code.
func (a *AppRunner) Run(rawArgs []string) int {
	opts := options.Parse(rawArgs)

	// Help short-circuits everything else, including collected errors.
	if opts.Help {
		a.Usage(a.stderr)
		return 0
	}

	opts.Validate()
	if len(opts.Errors) > 0 {
		for _, msg := range opts.Errors {
			fmt.Fprintln(a.stderr, msg)
		}
		a.Usage(a.stderr)
		return 1
	}

	requestURL, err := target.BuildURL(opts)
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to build request URL: %v\n", err)
		return 1
	}
	outputPath := output.Resolve(opts)
	logging.Logf(logging.Debug, "Request URL: %s", requestURL)
	logging.Logf(logging.Debug, "Output path: %s", outputPath)

	handler, err := a.handlerFactory.New()
	if err != nil {
		fmt.Fprintf(a.stderr, "Failed to initialize request handler: %v\n", err)
		return 1
	}

	resp, err := handler.Handle(context.Background(), requestURL)
	if err != nil {
		fmt.Fprintf(a.stderr, "Request failed: %v\n", err)
		return 1
	}
	if !resp.OK() {
		fmt.Fprintf(a.stderr, "Request failed: status %d\n", resp.Status)
		if body := strings.TrimSpace(string(resp.Body)); body != "" {
			fmt.Fprintln(a.stderr, body)
		}
		return 1
	}
	logging.Logf(logging.Debug, "Response status: %d, payload snippet: %s", resp.Status, util.Snippet(resp.Body))

	if err := a.writer.WriteFile(outputPath, resp.Body, 0644); err != nil {
		fmt.Fprintf(a.stderr, "Failed to write %s: %v\n", outputPath, err)
		return 1
	}
	fmt.Fprintf(a.stdout, "Saved %s\n", outputPath)
	return 0
}
