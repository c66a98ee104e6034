package app

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"gh-trophy/internal/output"
	"gh-trophy/internal/trophy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

// mockHandlerFactory controls handler construction.
type mockHandlerFactory struct {
	mock.Mock
}

func (m *mockHandlerFactory) New() (trophyHandler, error) {
	args := m.Called()
	h, _ := args.Get(0).(trophyHandler)
	return h, args.Error(1)
}

// mockHandler allows scripting handler responses.
type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Handle(ctx context.Context, rawURL string) (*trophy.Response, error) {
	args := m.Called(ctx, rawURL)
	resp, _ := args.Get(0).(*trophy.Response)
	return resp, args.Error(1)
}

// mockWriter records file writes.
type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteFile(filename string, data []byte, perm fs.FileMode) error {
	args := m.Called(filename, data, perm)
	return args.Error(0)
}

// newTestRunner builds a runner around mocks and captured output streams.
func newTestRunner(factory handlerFactory, writer output.Writer) (*AppRunner, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runner := NewAppRunnerWithOpts(AppRunnerOpts{
		HandlerFactory: factory,
		Writer:         writer,
		Stdout:         stdout,
		Stderr:         stderr,
	})
	return runner, stdout, stderr
}

// --- Tests ---

func TestAppRunner_Run_Help(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"Help Flag Long", []string{"--help"}},
		{"Help Flag Short", []string{"-h"}},
		{"Help Overrides Other Errors", []string{"--help", "--url", "u", "--username", "x", "--bogus"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			factory := new(mockHandlerFactory)
			writer := new(mockWriter)
			runner, stdout, stderr := newTestRunner(factory, writer)

			code := runner.Run(tc.args)
			assert.Equal(t, 0, code)
			assert.Contains(t, stderr.String(), "Usage:")
			assert.Empty(t, stdout.String())
			factory.AssertNotCalled(t, "New")
			writer.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAppRunner_Run_UsageErrors(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "Conflicting URL And Username",
			args:     []string{"--url", "http://example.com/", "--username", "alice"},
			expected: []string{"Conflicting options: --url and --username"},
		},
		{
			name:     "No Target At All",
			args:     []string{},
			expected: []string{"Missing required option: --url or --username"},
		},
		{
			name:     "Unknown Option",
			args:     []string{"--username", "alice", "--bogus"},
			expected: []string{"Unknown option: --bogus"},
		},
		{
			name: "Grouped Error Report",
			args: []string{"--bogus", "stray", "--query="},
			expected: []string{
				"Unknown option: --bogus",
				"Unknown argument: stray",
				"Missing value for: --query",
				"Missing required option: --url or --username",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			factory := new(mockHandlerFactory)
			writer := new(mockWriter)
			runner, stdout, stderr := newTestRunner(factory, writer)

			code := runner.Run(tc.args)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout.String())

			lines := strings.Split(stderr.String(), "\n")
			require.GreaterOrEqual(t, len(lines), len(tc.expected))
			assert.Equal(t, tc.expected, lines[:len(tc.expected)])
			assert.Contains(t, stderr.String(), "Usage:")
			factory.AssertNotCalled(t, "New")
			writer.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAppRunner_Run_Success(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	expectedPath := filepath.Join("generated", "octocat.svg")
	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, "http://localhost/?username=octocat").
		Return(&trophy.Response{Status: 200, Body: []byte("<svg/>")}, nil).Once()
	writer.On("WriteFile", expectedPath, []byte("<svg/>"), fs.FileMode(0644)).Return(nil).Once()

	runner, stdout, stderr := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "octocat"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "Saved "+expectedPath+"\n", stdout.String())
	assert.Empty(t, stderr.String())
	factory.AssertExpectations(t)
	handler.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestAppRunner_Run_QueryParametersKeepOrder(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, "http://localhost/?username=alice&column=-1&theme=onedark").
		Return(&trophy.Response{Status: 200, Body: []byte("<svg/>")}, nil).Once()
	writer.On("WriteFile", filepath.Join("generated", "alice.svg"), mock.Anything, mock.Anything).Return(nil).Once()

	runner, _, _ := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "alice", "--query", "column=-1&theme=onedark"})

	assert.Equal(t, 0, code)
	handler.AssertExpectations(t)
}

func TestAppRunner_Run_VerbatimURL(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	rawURL := "http://example.com/trophies?username=zoe&theme=nord"
	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, rawURL).
		Return(&trophy.Response{Status: 200, Body: []byte("<svg/>")}, nil).Once()
	writer.On("WriteFile", filepath.Join("generated", "zoe.svg"), mock.Anything, mock.Anything).Return(nil).Once()

	runner, _, _ := newTestRunner(factory, writer)
	code := runner.Run([]string{"--url", rawURL})

	assert.Equal(t, 0, code)
	handler.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestAppRunner_Run_OutputOverride(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(&trophy.Response{Status: 200, Body: []byte("<svg/>")}, nil).Once()
	writer.On("WriteFile", "out/custom.svg", mock.Anything, mock.Anything).Return(nil).Once()

	runner, stdout, _ := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "octocat", "--output", "out/custom.svg"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "Saved out/custom.svg\n", stdout.String())
	writer.AssertExpectations(t)
}

func TestAppRunner_Run_HandlerFailureResponse(t *testing.T) {
	t.Run("With Body", func(t *testing.T) {
		factory := new(mockHandlerFactory)
		handler := new(mockHandler)
		writer := new(mockWriter)

		factory.On("New").Return(handler, nil).Once()
		handler.On("Handle", mock.Anything, mock.Anything).
			Return(&trophy.Response{Status: 404, Body: []byte("user 'nobody' not found")}, nil).Once()

		runner, stdout, stderr := newTestRunner(factory, writer)
		code := runner.Run([]string{"--username", "nobody"})

		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Request failed: status 404")
		assert.Contains(t, stderr.String(), "user 'nobody' not found")
		writer.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty Body", func(t *testing.T) {
		factory := new(mockHandlerFactory)
		handler := new(mockHandler)
		writer := new(mockWriter)

		factory.On("New").Return(handler, nil).Once()
		handler.On("Handle", mock.Anything, mock.Anything).
			Return(&trophy.Response{Status: 500}, nil).Once()

		runner, _, stderr := newTestRunner(factory, writer)
		code := runner.Run([]string{"--username", "octocat"})

		assert.Equal(t, 1, code)
		assert.Equal(t, "Request failed: status 500\n", stderr.String())
		writer.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAppRunner_Run_HandlerError(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused")).Once()

	runner, stdout, stderr := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "octocat"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Request failed: dial tcp: connection refused")
	writer.AssertNotCalled(t, "WriteFile", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppRunner_Run_FactoryError(t *testing.T) {
	factory := new(mockHandlerFactory)
	writer := new(mockWriter)

	factory.On("New").Return(nil, errors.New("unsupported authentication type 'bogus' for client creation")).Once()

	runner, stdout, stderr := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "octocat"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Failed to initialize request handler:")
	factory.AssertExpectations(t)
}

func TestAppRunner_Run_WriteFailure(t *testing.T) {
	factory := new(mockHandlerFactory)
	handler := new(mockHandler)
	writer := new(mockWriter)

	factory.On("New").Return(handler, nil).Once()
	handler.On("Handle", mock.Anything, mock.Anything).
		Return(&trophy.Response{Status: 200, Body: []byte("<svg/>")}, nil).Once()
	writer.On("WriteFile", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("permission denied")).Once()

	runner, stdout, stderr := newTestRunner(factory, writer)
	code := runner.Run([]string{"--username", "octocat"})

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Failed to write")
	assert.Contains(t, stderr.String(), "permission denied")
}
