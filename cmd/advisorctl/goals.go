package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/subcommands"

	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/notifier"
	"RoboAdvisor/internal/store"
)

// goalsCmd holds the flags for the 'goals' subcommand.
type goalsCmd struct {
	owner     string
	id        string
	revisit   bool
	analytics bool
	asJSON    bool
}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "inspect saved goals" }
func (*goalsCmd) Usage() string {
	return `advisorctl goals (-owner <id> | -id <goal> [-revisit] | -analytics) [-json]

  Lists an owner's goals newest first, shows one goal, marks it revisited, or
  prints aggregate analytics.
`
}

func (c *goalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "List goals of this owner")
	f.StringVar(&c.id, "id", "", "Show one goal")
	f.BoolVar(&c.revisit, "revisit", false, "Mark the goal given by -id as revisited")
	f.BoolVar(&c.analytics, "analytics", false, "Print goal analytics")
	f.BoolVar(&c.asJSON, "json", false, "Print JSON")
}

func (c *goalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening goal store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	switch {
	case c.analytics:
		a, err := st.Analytics(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		c.print(a, func() { printAnalytics(a) })

	case c.id != "":
		if c.revisit {
			if err := st.MarkRevisited(ctx, c.id, time.Now().UTC()); err != nil {
				return c.fail(err)
			}
		}
		rec, err := st.Get(ctx, c.id)
		if err != nil {
			return c.fail(err)
		}
		c.print(rec, func() {
			fmt.Print(notifier.FormatGoalSummary(rec, nil))
			fmt.Printf("Status: %s\n", rec.Status)
		})

	case c.owner != "":
		list, err := st.ListByOwner(ctx, c.owner)
		if err != nil {
			return c.fail(err)
		}
		c.print(list, func() {
			for _, rec := range list {
				fmt.Printf("%s  %s  %-13s %-10s expected %s\n", rec.GoalID, rec.CreatedAt.Format("2006-01-02"),
					rec.Input.RiskCategory, rec.Status, notifier.Rupees(rec.Projection.Expected))
			}
		})

	default:
		fmt.Fprintln(os.Stderr, "One of -owner, -id or -analytics is required")
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

func (c *goalsCmd) print(v any, text func()) {
	if !c.asJSON {
		text()
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func (c *goalsCmd) fail(err error) subcommands.ExitStatus {
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Goal %s not found\n", c.id)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return subcommands.ExitFailure
}

func printAnalytics(a *store.Analytics) {
	fmt.Printf("Goals: %d\n", a.TotalGoals)
	fmt.Printf("Average corpus %s, SIP %s, horizon %.1f years, expected %s\n",
		notifier.Rupees(a.AvgCorpus), notifier.Rupees(a.AvgSIP), a.AvgHorizon, notifier.Rupees(a.AvgExpected))
	fmt.Println("By status:")
	for _, s := range []model.GoalStatus{model.StatusSaved, model.StatusEmailSent, model.StatusRevisited} {
		fmt.Printf("  %-10s %d\n", s, a.ByStatus[s])
	}
	fmt.Println("By risk category:")
	for _, cat := range model.RiskCategories {
		fmt.Printf("  %-13s %d\n", cat, a.ByRiskCategory[cat])
	}
	fmt.Println("By confidence:")
	keys := make([]string, 0, len(a.ByConfidence))
	for k := range a.ByConfidence {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-8s %d\n", k, a.ByConfidence[k])
	}
}
