package main

import (
	"os"

	"gh-trophy/internal/app"
	"gh-trophy/internal/logging"
)

// main is the entry point of the application.
// The CLI flag set is fixed, so the log level comes from the environment.
func main() {
	if level := os.Getenv("TROPHY_LOG"); level != "" {
		logging.SetupLogging(level)
	}
	os.Exit(app.NewAppRunner().Run(os.Args[1:]))
}
