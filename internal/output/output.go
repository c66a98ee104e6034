package output

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"gh-trophy/internal/options"
)

const (
	defaultDir      = "generated"
	defaultFileName = "trophy.svg"
)

// Resolve determines the destination path for the SVG payload. An explicit
// --output wins. Otherwise the filename is derived from the username, taken
// from the options or, failing that, from the username query parameter of an
// explicit URL. URL parse failures are swallowed; they only mean the fallback
// default applies.
func Resolve(o options.Options) string {
	if o.Output != "" {
		return o.Output
	}

	username := o.Username
	if username == "" && o.URL != "" {
		if u, err := url.Parse(o.URL); err == nil {
			username = u.Query().Get("username")
		}
	}

	if username != "" {
		return filepath.Join(defaultDir, username+".svg")
	}
	return filepath.Join(defaultDir, defaultFileName)
}

// Writer persists a payload to a file.
type Writer interface {
	// WriteFile writes data to a file named by filename, creating the parent
	// directory first when it does not exist. Existing files are truncated.
	WriteFile(filename string, data []byte, perm fs.FileMode) error
}

type diskWriter struct{}

// NewDiskWriter returns a Writer backed by the local filesystem.
func NewDiskWriter() Writer {
	return &diskWriter{}
}

func (d *diskWriter) WriteFile(filename string, data []byte, perm fs.FileMode) error {
	// os.WriteFile does not create directories, so ensure the parent exists.
	// MkdirAll is a no-op when it already does.
	dir := filepath.Dir(filename)
	if mkDirErr := os.MkdirAll(dir, 0755); mkDirErr != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", dir, mkDirErr)
	}
	return os.WriteFile(filename, data, perm)
}
