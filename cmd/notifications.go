package cmd

import (
	"fmt"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"alerts"},
	Short:   "Budget alerts and goal milestones",
	Args:    cobra.NoArgs,
	RunE:    runNotifications,
}

var notificationsRead bool

func init() {
	notificationsCmd.Flags().BoolVar(&notificationsRead, "read", false, "Mark all notifications as read")
	rootCmd.AddCommand(notificationsCmd)
}

func runNotifications(cmd *cobra.Command, _ []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	ns, err := l.Notifications(cmd.Context())
	if err != nil {
		return err
	}
	if len(ns) == 0 {
		fmt.Println("\n  No notifications.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("NOTIFICATIONS  %d unread", pipeline.Unread(ns))))
	fmt.Println()
	for _, n := range ns {
		line := fmt.Sprintf("  %s %s", notificationIcon(n.Kind), n.Message)
		if n.Read {
			line = cli.RenderMuted(line)
		}
		fmt.Println(line)
	}

	if notificationsRead {
		if err := l.MarkNotificationsRead(cmd.Context()); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println("  Marked all as read.")
	}
	return nil
}
