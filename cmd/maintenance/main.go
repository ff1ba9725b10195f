// Command maintenance runs one-shot maintenance tasks against the token
// request store:
//
//	maintenance remove-expired -d <dsn>
//	maintenance admin-token -s <secret>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/carmeet/internal/flagx"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server"
	"github.com/dmitrijs2005/carmeet/internal/server/config"
	"github.com/dmitrijs2005/carmeet/internal/server/maintenance"
	"github.com/dmitrijs2005/carmeet/internal/server/services"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

var errNoDSN = errors.New("database DSN is required")

func main() {
	if err := run(context.Background(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command named in os.Args, writing its result to out.
func run(ctx context.Context, out io.Writer) error {
	cfg := config.LoadConfig()
	runner := maintenance.NewRunner(out, isTerminal(int(os.Stdout.Fd())))

	switch cmd := flagx.Command(os.Args[1:], maintenance.CommandRemoveExpired); cmd {
	case maintenance.CommandRemoveExpired:
		return removeExpired(ctx, cfg, runner)
	case maintenance.CommandAdminToken:
		return runner.AdminToken(cfg.SecretKey, cfg.AdminTokenValidityDuration)
	default:
		return fmt.Errorf("%w: %s", maintenance.ErrUnknownCommand, cmd)
	}
}

func removeExpired(ctx context.Context, cfg *config.Config, runner *maintenance.Runner) error {
	if cfg.DatabaseDSN == "" {
		return errNoDSN
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, rm, err := server.OpenStore(ctx, cfg.DatabaseDSN, timex.SystemClock{}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cleaner := services.NewTokenCleaner(rm.TokenRequests(db), cfg.GCEnabled, logger, nil)

	return runner.RemoveExpired(ctx, cleaner)
}
