package main

import (
	"context"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/forum"
	"github.com/spf13/cobra"
)

var (
	threadParams forum.ThreadListParams
	reportParams forum.ReportParams
	moderatorID  string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List public categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			return printJSON(cmd.OutOrStdout(), c.Categories().List(ctx))
		})
	},
}

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			return printJSON(cmd.OutOrStdout(), c.Threads().List(ctx, threadParams))
		})
	},
}

var threadCmd = &cobra.Command{
	Use:   "thread <id>",
	Short: "Show one thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		threadPassword, _ := cmd.Flags().GetString("password")
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			t, err := c.Threads().Get(ctx, args[0], threadPassword)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		})
	},
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the moderation queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			return printJSON(cmd.OutOrStdout(), c.Moderation().Reports(ctx, reportParams))
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show moderation statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, c *goSession.Client) error {
			st, err := c.Moderation().Stats(ctx, moderatorID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), st)
		})
	},
}

func registerForumCommands(root *cobra.Command) {
	threadsCmd.Flags().StringVar(&threadParams.CategoryID, "category", "", "Filter by category id")
	threadsCmd.Flags().IntVar(&threadParams.Page, "page", 0, "Page number")
	threadsCmd.Flags().IntVar(&threadParams.PageSize, "page-size", 0, "Page size (default 20)")
	threadsCmd.Flags().StringVar(&threadParams.Sort, "sort", "", "Sort order")

	threadCmd.Flags().String("password", "", "Password for a private thread")

	reportsCmd.Flags().IntVar(&reportParams.Page, "page", 0, "Page number")
	reportsCmd.Flags().IntVar(&reportParams.PageSize, "page-size", 0, "Page size (default 20)")
	reportsCmd.Flags().StringVar(&reportParams.Status, "status", "", "Filter by status")
	reportsCmd.Flags().StringVar(&reportParams.Priority, "priority", "", "Filter by priority")

	statsCmd.Flags().StringVar(&moderatorID, "moderator", "", "Restrict to one moderator")

	root.AddCommand(categoriesCmd, threadsCmd, threadCmd, reportsCmd, statsCmd)
}
