// Command flatbase is the CLI surface over the engine package: load a CSV
// into a heap-file table, scan a table back out, or run a hand-authored
// JSON plan through the executor. There is no SQL layer; run takes the
// operator chain directly, the same shape the executor consumes.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("flatbase: command failed")
		os.Exit(1)
	}
}
