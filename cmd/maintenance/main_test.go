package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/carmeet/internal/server/auth"
	"github.com/dmitrijs2005/carmeet/internal/server/maintenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withArgs replaces os.Args and the terminal check for one test.
func withArgs(t *testing.T, terminal bool, args ...string) {
	t.Helper()

	origArgs, origTerm := os.Args, isTerminal
	os.Args = append([]string{"maintenance"}, args...)
	isTerminal = func(int) bool { return terminal }
	t.Cleanup(func() {
		os.Args, isTerminal = origArgs, origTerm
	})
}

func TestRun_UnknownCommand(t *testing.T) {
	withArgs(t, false, "rotate-keys")

	var out bytes.Buffer
	err := run(context.Background(), &out)
	require.ErrorIs(t, err, maintenance.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "rotate-keys")
	assert.Empty(t, out.String())
}

func TestRun_AdminToken(t *testing.T) {
	withArgs(t, false, "admin-token", "-s", "maintenance-secret")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out))

	claims, err := auth.ParseAdminToken(strings.TrimSpace(out.String()), []byte("maintenance-secret"))
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestRun_AdminToken_Terminal(t *testing.T) {
	withArgs(t, true, "admin-token", "-s", "maintenance-secret")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Admin token"))
}

func TestRun_RemoveExpired_RequiresDSN(t *testing.T) {
	withArgs(t, false, "remove-expired", "-d=")

	err := run(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, errNoDSN)
}

func TestRun_RemoveExpired_SQLite(t *testing.T) {
	dsn := "sqlite:" + filepath.Join(t.TempDir(), "carmeet.db")

	withArgs(t, false, "remove-expired", "-d", dsn)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out))
	assert.Equal(t, "0\n", out.String())

	withArgs(t, true, "remove-expired", "-d", dsn)
	out.Reset()
	require.NoError(t, run(context.Background(), &out))
	assert.Equal(t,
		"Removing expired token requests...\nGarbage collection successful. Removed 0 token request object(s).\n",
		out.String())
}

func TestRun_DefaultsToRemoveExpired(t *testing.T) {
	withArgs(t, false, "-d=")

	err := run(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, errNoDSN)
}
