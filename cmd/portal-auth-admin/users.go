package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
	"github.com/target/portal-auth/internal/service"
)

const maxListLimit = 1000

func usersCmd(deps *cliDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, create and manage users",
	}
	cmd.AddCommand(
		usersListCmd(deps),
		usersCreateCmd(deps),
		usersSetRoleCmd(deps),
		usersRevokeCmd(deps),
	)
	return cmd
}

// withAdmin opens the backend and runs fn with an AdminService over it.
func withAdmin(cmd *cobra.Command, deps *cliDeps, pageSize int, fn func(*service.AdminService) error) error {
	backend, closeFn, err := deps.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(service.NewAdminService(service.AdminServiceOptions{
		Backend:  backend,
		PageSize: pageSize,
		Logger:   deps.logger,
	}))
}

func usersListCmd(deps *cliDeps) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 || limit > maxListLimit {
				return fmt.Errorf("--limit must be between 1 and %d", maxListLimit)
			}
			return withAdmin(cmd, deps, limit, func(admin *service.AdminService) error {
				users, err := admin.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				return printUsers(cmd.OutOrStdout(), users)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", maxListLimit, "Maximum number of users to list")
	return cmd
}

func printUsers(w io.Writer, users []service.UserSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "UID\tEMAIL\tROLE\tDISABLED\tCREATED\tLAST SIGN-IN"); err != nil {
		return err
	}
	for _, u := range users {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			u.UID, u.Email, u.Role, u.Disabled, formatTime(u.CreatedAt), formatTime(u.LastSignInAt)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func usersCreateCmd(deps *cliDeps) *cobra.Command {
	var (
		email     string
		password  string
		fromStdin bool
		role      string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user with a role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fromStdin {
				if password != "" {
					return errors.New("--password and --stdin are mutually exclusive")
				}
				pw, err := readPassword(deps.stdin)
				if err != nil {
					return err
				}
				password = pw
			}
			return withAdmin(cmd, deps, 0, func(admin *service.AdminService) error {
				created, err := admin.CreateUser(cmd.Context(), service.CreateUserInput{
					Email:    email,
					Password: password,
					Role:     role,
				})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", created.UID, created.Email, created.Role)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the password from the first line of stdin")
	cmd.Flags().StringVar(&role, "role", string(domainauth.RoleUser), "Role: "+domainauth.AllowedRolesString())
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func usersSetRoleCmd(deps *cliDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <uid> <role>",
		Short: "Set a user's role, keeping other custom claims",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, deps, 0, func(admin *service.AdminService) error {
				role, err := admin.ChangeRole(cmd.Context(), service.ChangeRoleInput{UID: args[0], Role: args[1]})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s now has role %s (takes effect at next sign-in)\n", args[0], role)
				return err
			})
		},
	}
}

func usersRevokeCmd(deps *cliDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <uid>",
		Short: "Revoke all sessions of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, closeFn, err := deps.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := backend.RevokeRefreshTokens(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "revoked sessions for %s\n", args[0])
			return err
		},
	}
}
