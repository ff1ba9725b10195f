// Package maintenance implements the one-shot commands of cmd/maintenance.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/server/auth"
)

const (
	CommandRemoveExpired = "remove-expired"
	CommandAdminToken    = "admin-token"

	adminSubject = "maintenance"
)

var ErrUnknownCommand = errors.New("unknown command")

type GarbageCollector interface {
	HandleGarbageCollection(ctx context.Context, force bool) (int64, error)
}

// Runner executes maintenance commands, writing their result to out.
// Interactive output is meant for a person at a terminal; otherwise only the
// bare result is printed so it can be consumed by scripts.
type Runner struct {
	out         io.Writer
	interactive bool
}

func NewRunner(out io.Writer, interactive bool) *Runner {
	return &Runner{out: out, interactive: interactive}
}

// RemoveExpired forces a garbage collection pass regardless of whether
// periodic collection is enabled.
func (r *Runner) RemoveExpired(ctx context.Context, gc GarbageCollector) error {
	if r.interactive {
		fmt.Fprintln(r.out, "Removing expired token requests...")
	}

	n, err := gc.HandleGarbageCollection(ctx, true)
	if err != nil {
		return fmt.Errorf("garbage collection failed: %w", err)
	}

	if r.interactive {
		fmt.Fprintf(r.out, "Garbage collection successful. Removed %d token request object(s).\n", n)
		return nil
	}
	fmt.Fprintln(r.out, n)
	return nil
}

// AdminToken prints a signed admin access token for the gRPC maintenance
// methods.
func (r *Runner) AdminToken(secret string, validity time.Duration) error {
	tok, err := auth.GenerateAdminToken(adminSubject, []byte(secret), validity)
	if err != nil {
		return err
	}
	if r.interactive {
		fmt.Fprintf(r.out, "Admin token (valid for %s):\n", validity)
	}
	fmt.Fprintln(r.out, tok)
	return nil
}
