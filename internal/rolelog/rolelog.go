// Package rolelog gives every role the same bracketed logging convention
// ([C=id], [P=id], [A=id], [L=id]) over logrus.
package rolelog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// bracketFormatter renders entries as "[X=id] level message", matching the
// prefix convention the harness binaries all use. An error attached with
// WithError is appended as "message: error"; other fields are not printed.
type bracketFormatter struct {
	prefix string
}

func (f *bracketFormatter) Format(e *logrus.Entry) ([]byte, error) {
	msg := e.Message
	if err, ok := e.Data[logrus.ErrorKey]; ok {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	line := fmt.Sprintf("%s %-5s %s\n", f.prefix, e.Level.String(), msg)
	return []byte(line), nil
}

// New builds a logger entry prefixed for the given role letter and integer
// id ('C', 'P', 'A', or 'L'). The level is read from QUORUM_LOG_LEVEL
// (logrus level names), defaulting to info.
func New(role byte, id int) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&bracketFormatter{prefix: fmt.Sprintf("[%c=%d]", role, id)})

	level := logrus.InfoLevel
	if raw := os.Getenv("QUORUM_LOG_LEVEL"); raw != "" {
		if parsed, err := logrus.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)

	return logrus.NewEntry(logger)
}
