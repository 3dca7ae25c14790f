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

type planCmd struct {
	trial bool
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "show or change the subscription plan" }
func (*planCmd) Usage() string {
	return `wealthctl -user <id> plan [-trial] [free|pro|enterprise]

  Without an argument, shows the current plan and its features.
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.trial, "trial", false, "start a trial of the plan instead of subscribing")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: at most one plan")
		return subcommands.ExitUsageError
	}
	s, err := openSession(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	if f.NArg() == 1 {
		if *userID == "" {
			fmt.Fprintln(os.Stderr, "Error: -user is required to change the plan")
			return subcommands.ExitUsageError
		}
		plan := domain.Plan(strings.ToLower(f.Arg(0)))
		if c.trial {
			_, err = s.orch.StartTrial(ctx, plan)
		} else {
			_, err = s.orch.ChangePlan(ctx, plan)
		}
		if !report(err) {
			return subcommands.ExitFailure
		}
	}

	sub := s.orch.Subscription.Current()
	fmt.Printf("plan: %s\n", s.orch.Subscription.Plan())
	if sub.TrialEndsAt != nil {
		fmt.Printf("trial ends: %s\n", sub.TrialEndsAt.Format("2006-01-02"))
	}
	if sub.ExpiresAt != nil {
		fmt.Printf("renews: %s\n", sub.ExpiresAt.Format("2006-01-02"))
	}
	for _, feat := range s.orch.Subscription.Features() {
		fmt.Printf("  - %s\n", feat)
	}
	return subcommands.ExitSuccess
}
