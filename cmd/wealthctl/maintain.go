package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type maintainCmd struct{}

func (*maintainCmd) Name() string     { return "maintain" }
func (*maintainCmd) Synopsis() string { return "prune expired notifications and refresh the subscription" }
func (*maintainCmd) Usage() string {
	return `wealthctl [-user <id>] maintain

  Removes notifications older than NOTIFICATION_TTL, downgrades an expired
  trial or paid period and warns about goals due within a week.
`
}

func (*maintainCmd) SetFlags(*flag.FlagSet) {}

func (*maintainCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	r, err := s.orch.RunMaintenance(ctx)
	if !report(err) {
		return subcommands.ExitFailure
	}
	fmt.Printf("pruned: %d\n", r.Pruned)
	if r.ExpiredPlan != "" {
		fmt.Printf("expired plan: %s\n", r.ExpiredPlan)
	}
	fmt.Printf("deadline warnings: %d\nunread: %d\n", r.DeadlineWarning, r.Unread)
	return subcommands.ExitSuccess
}
