// Package logging configures the logrus logger used by the command line
// client.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// New returns a logger writing text lines at or above level to w. An empty
// level means "warn".
func New(level string, w io.Writer) (*log.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = log.WarnLevel.String()
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}

	l := log.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&log.TextFormatter{
		DisableTimestamp: lvl < log.DebugLevel,
		FullTimestamp:    true,
	})

	return l, nil
}
