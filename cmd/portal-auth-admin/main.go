// Command portal-auth-admin manages identities directly against the configured
// identity backend. It exists to bootstrap the first admin, since the HTTP
// admin API requires one.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/target/portal-auth/internal/bootstrap"
	"github.com/target/portal-auth/internal/ports"
)

// openBackendFunc returns the identity backend and a release func.
type openBackendFunc func(ctx context.Context) (ports.IdentityBackend, func(), error)

type cliDeps struct {
	open   openBackendFunc
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// CLI output goes to stdout; logs go to stderr at warn so they stay out of pipes.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	deps := &cliDeps{
		open:   configuredBackend(logger),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		logger: logger,
	}
	if err := newRootCmd(deps).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func configuredBackend(logger *slog.Logger) openBackendFunc {
	return func(ctx context.Context) (ports.IdentityBackend, func(), error) {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			return nil, func() {}, err
		}
		identity, closeFn, err := bootstrap.OpenIdentity(ctx, &cfg, logger)
		if err != nil {
			return nil, func() {}, err
		}
		if err := identity.Provider.Ready(); err != nil {
			closeFn()
			return nil, func() {}, err
		}
		return identity.Provider, closeFn, nil
	}
}

func newRootCmd(deps *cliDeps) *cobra.Command {
	root := &cobra.Command{
		Use:           "portal-auth-admin",
		Short:         "Manage portal identities and roles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.stdout)
	root.AddCommand(usersCmd(deps))
	return root
}
