package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"RoboAdvisor/internal/recommend"
)

type auditCmd struct{}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "list catalog funds with stale data" }
func (*auditCmd) Usage() string {
	return `advisorctl audit

  Lists funds whose data is at least four weeks old.
`
}

func (*auditCmd) SetFlags(*flag.FlagSet) {}

func (*auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	cm, err := openCatalog(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}
	now := time.Now()
	funds := cm.Funds()
	stale := recommend.StaleFunds(funds, now)
	for _, f := range stale {
		_, days := recommend.Freshness(f.LastUpdated, now)
		fmt.Printf("%-40s %4d days\n", f.Name, days)
	}
	fmt.Printf("%d of %d funds stale\n", len(stale), len(funds))
	return subcommands.ExitSuccess
}
