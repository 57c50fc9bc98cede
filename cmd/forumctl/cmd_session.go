package main

import (
	"context"
	"fmt"

	goSession "github.com/MrEthical07/goSession"
	"github.com/spf13/cobra"
)

var password string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			if err := c.Login(goSession.WithNavigationPath(ctx, "/login"), args[0], password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			return printWhoami(cmd, c)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			if err := c.Register(goSession.WithNavigationPath(ctx, "/register"), args[0], password); err != nil {
				return fmt.Errorf("register failed: %w", err)
			}
			return printWhoami(cmd, c)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			c.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the persisted session and its landing surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			if _, err := c.Reconcile(ctx); err != nil {
				return err
			}
			return printWhoami(cmd, c)
		})
	},
}

type whoami struct {
	Authenticated bool              `json:"authenticated"`
	UserID        string            `json:"user_id,omitempty"`
	Username      string            `json:"username,omitempty"`
	Role          string            `json:"role,omitempty"`
	Landing       goSession.Surface `json:"landing"`
}

func printWhoami(cmd *cobra.Command, c *goSession.Client) error {
	snap := c.Session()
	out := whoami{
		Authenticated: snap.IsAuthenticated,
		Role:          string(snap.Role()),
		Landing:       goSession.LandingFor(snap),
	}
	if snap.User != nil {
		out.UserID = string(snap.User.ID)
		out.Username = snap.User.Username
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func registerSessionCommands(root *cobra.Command) {
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = loginCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("password")

	root.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
