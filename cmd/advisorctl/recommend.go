package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"

	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/notifier"
	"RoboAdvisor/internal/recommend"
)

// recommendCmd holds the flags for the 'recommend' subcommand.
type recommendCmd struct {
	risk     string
	answers  string
	amount   float64
	duration string
}

func (*recommendCmd) Name() string     { return "recommend" }
func (*recommendCmd) Synopsis() string { return "shortlist funds for a risk profile" }
func (*recommendCmd) Usage() string {
	return `advisorctl recommend (-risk <category> | -answers <n,n,...>) -amount <rupees> [-duration <label>]

  Filters and ranks the catalog. -answers scores a questionnaire instead of
  naming the category directly.
`
}

func (c *recommendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.risk, "risk", "", "Risk category, e.g. \"Medium Risk\"")
	f.StringVar(&c.answers, "answers", "", "Comma separated questionnaire option scores")
	f.Float64Var(&c.amount, "amount", 0, "Investment amount in rupees")
	f.StringVar(&c.duration, "duration", recommend.GoalDuration, "Holding period label")
}

func (c *recommendCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, tables, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	risk := model.RiskCategory(c.risk)
	if c.answers != "" {
		scores, err := parseAnswers(c.answers)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing answers: %v\n", err)
			return subcommands.ExitUsageError
		}
		total, cat, ok := tables.ScoreAnswers(scores)
		if !ok {
			fmt.Fprintf(os.Stderr, "Score %d is outside the questionnaire range\n", total)
			return subcommands.ExitUsageError
		}
		fmt.Printf("Risk score %d: %s\n\n", total, cat)
		risk = cat
	}
	if risk == "" {
		fmt.Fprintln(os.Stderr, "One of -risk or -answers is required")
		return subcommands.ExitUsageError
	}

	if _, ok := tables.DurationKey(c.duration); !ok {
		fmt.Fprintf(os.Stderr, "Unknown -duration %q; valid labels: %s\n", c.duration, strings.Join(tables.DurationLabels(), ", "))
		return subcommands.ExitUsageError
	}

	cm, err := openCatalog(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	res := recommend.Recommend(tables, cm.Funds(), risk, c.amount, c.duration)
	if res.CategoryFallback {
		fmt.Printf("Unknown risk category %q, using %s\n\n", risk, res.Category)
	}
	funds := res.Funds
	if len(funds) == 0 {
		fmt.Println("No funds match this profile.")
		return subcommands.ExitSuccess
	}
	fmt.Print(notifier.FormatRecommendations(funds))
	now := time.Now()
	for _, f := range funds {
		if status, days := recommend.Freshness(f.LastUpdated, now); status == recommend.FreshnessStale {
			fmt.Printf("  note: %s data is %d days old\n", f.Name, days)
		}
	}
	return subcommands.ExitSuccess
}

func parseAnswers(s string) ([]int, error) {
	var out []int
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
