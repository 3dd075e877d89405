package migrate

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
)

var _ migrate.Logger = (*consoleLogger)(nil)

type consoleLogger struct {
	verbose bool
}

func (l *consoleLogger) Printf(format string, v ...interface{}) {
	fmt.Printf(format, v...)
}

func (l *consoleLogger) Verbose() bool {
	return l.verbose
}
