package repomanager

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/pressly/goose/v3"
)

// gooseLogger sends goose output to a logging.Logger.
type gooseLogger struct {
	logger logging.Logger
}

// newGooseLogger returns a goose.Logger writing through logger, or one that
// discards everything when logger is nil.
func newGooseLogger(logger logging.Logger) goose.Logger {
	if logger == nil {
		return goose.NopLogger()
	}
	return &gooseLogger{logger: logger.With("module", "migrations")}
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs and exits, like log.Fatalf which goose uses by default.
func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
