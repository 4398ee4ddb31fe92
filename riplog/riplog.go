// Package riplog wires up the logrus entry every other package logs
// through, so every line in the process carries the owning router's id
// without each call site having to attach it.
package riplog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus.Entry tagged with the given router id. verbose
// raises the level to Debug; otherwise the daemon logs at Info and above.
func New(routerID int, verbose bool) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log.WithField("router", routerID)
}
