package logging_test

import (
	"bytes"
	"testing"

	"github.com/picatz/chatgpt/internal/logging"
	"github.com/shoenig/test/must"
	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer

	l, err := logging.New("", &buf)
	must.NoError(t, err)
	must.Eq(t, logrus.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.WithField("status", 429).Warn("rate limited")

	must.StrNotContains(t, buf.String(), "hidden")
	must.StrContains(t, buf.String(), "rate limited")
	must.StrContains(t, buf.String(), "status=429")

	l, err = logging.New("DEBUG", &buf)
	must.NoError(t, err)
	must.Eq(t, logrus.DebugLevel, l.GetLevel())

	_, err = logging.New("loud", &buf)
	must.Error(t, err)
}
