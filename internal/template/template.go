package template

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"gh-trophy/internal/logging"
)

// Render evaluates a Go template string with the provided data map. Missing
// keys are errors (Option "missingkey=error") so malformed card templates fail
// loudly instead of emitting broken SVG.
func Render(templateName, tmplStr string, data map[string]string) (string, error) {
	if tmplStr == "" {
		return "", nil
	}

	tmpl, err := template.New(templateName).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template '%s': %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logging.Logf(logging.Debug, "Template '%s' data keys: %v", templateName, keys)
		return "", fmt.Errorf("failed to execute template '%s': %w", templateName, err)
	}

	return buf.String(), nil
}
