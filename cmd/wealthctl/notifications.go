package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/simaogato/wealthflow-dashboard/internal/domain"
)

type notificationsCmd struct {
	unread  bool
	read    string
	readAll bool
	clear   bool
}

func (*notificationsCmd) Name() string     { return "notifications" }
func (*notificationsCmd) Synopsis() string { return "list notifications or mark them read" }
func (*notificationsCmd) Usage() string {
	return `wealthctl [-user <id>] notifications [-unread] [-read <id>] [-all] [-clear]

  Lists notifications, newest first. -read marks one as read, -all marks every
  notification as read, -clear removes them all.
`
}

func (c *notificationsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.unread, "unread", false, "only list unread notifications")
	f.StringVar(&c.read, "read", "", "mark the notification with this id as read")
	f.BoolVar(&c.readAll, "all", false, "mark all notifications as read")
	f.BoolVar(&c.clear, "clear", false, "remove all notifications")
}

func (c *notificationsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()
	n := s.orch.Notifications

	switch {
	case c.clear:
		removed, err := n.Clear(ctx)
		if !report(err) {
			return subcommands.ExitFailure
		}
		fmt.Printf("%d notification(s) removed\n", removed)
		return subcommands.ExitSuccess
	case c.readAll:
		marked, err := n.MarkAllAsRead(ctx)
		if !report(err) {
			return subcommands.ExitFailure
		}
		fmt.Printf("%d notification(s) marked as read\n", marked)
		return subcommands.ExitSuccess
	case c.read != "":
		changed, err := n.MarkAsRead(ctx, c.read)
		if !report(err) {
			return subcommands.ExitFailure
		}
		if !changed {
			fmt.Fprintf(os.Stderr, "notification %s not found or already read\n", c.read)
		}
		return subcommands.ExitSuccess
	}

	list := n.List()
	if c.unread {
		list = n.Unread()
	}
	printMarkdown(notificationsMarkdown(list, n.UnreadCount()))
	return subcommands.ExitSuccess
}

// report prints a persistence warning and reports whether err is not fatal.
func report(err error) bool {
	if err == nil {
		return true
	}
	if domain.IsWarning(err) {
		warn(err)
		return true
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return false
}

func notificationsMarkdown(list []domain.Notification, unread int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Notifications (%d unread)\n\n", unread)
	if len(list) == 0 {
		b.WriteString("_Nothing to show._\n")
		return b.String()
	}
	b.WriteString("| | Type | Title | Message | Received | ID |\n|---|---|---|---|---|---|\n")
	for _, item := range list {
		mark := " "
		if !item.IsRead {
			mark = "•"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%s` |\n", mark, item.Type,
			escapeCell(item.Title), escapeCell(item.Message), item.CreatedAt.Format("2006-01-02 15:04"), item.ID)
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
