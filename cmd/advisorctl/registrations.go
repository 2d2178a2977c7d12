package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"

	"RoboAdvisor/internal/store"
)

// registrationsCmd holds the flags for the 'registrations' subcommand.
type registrationsCmd struct {
	limit    int
	overview bool
	asJSON   bool
}

func (*registrationsCmd) Name() string     { return "registrations" }
func (*registrationsCmd) Synopsis() string { return "list registrations or print the funnel" }
func (*registrationsCmd) Usage() string {
	return `advisorctl registrations [-limit <n>] [-overview] [-json]

  Lists the latest registrations newest first, or with -overview prints the
  registration totals, country and city breakdowns and funnel percentages.
`
}

func (c *registrationsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", store.DefaultRegistrationLimit, "Number of registrations to list")
	f.BoolVar(&c.overview, "overview", false, "Print registration analytics")
	f.BoolVar(&c.asJSON, "json", false, "Print JSON")
}

func (c *registrationsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	if c.overview {
		o, err := st.Overview(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		c.print(o, func() { printOverview(o) })
		return subcommands.ExitSuccess
	}

	regs, err := st.LatestRegistrations(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.print(regs, func() {
		for _, r := range regs {
			viewed := ""
			if r.RecommendationsViewed {
				viewed = "viewed"
			}
			fmt.Printf("%5d  %s  %-28s %-12s %-10s %-13s %s\n", r.ID, r.CreatedAt.Format("2006-01-02"),
				r.Email, r.City, r.Country, r.RiskCategory, viewed)
		}
	})
	return subcommands.ExitSuccess
}

func (c *registrationsCmd) print(v any, text func()) {
	if !c.asJSON {
		text()
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func printOverview(o *store.Overview) {
	fmt.Printf("Registered: %d  Questionnaires: %d  Viewed recommendations: %d\n",
		o.TotalRegistered, o.TotalQuestionnaireCompleted, o.TotalRecommendationsViewed)
	fmt.Printf("Funnel: %.1f%% registered of completed, %.1f%% viewed of registered\n",
		o.Funnel.RegisteredOfCompleted, o.Funnel.ViewedOfRegistered)
	fmt.Println("By country:")
	countries := make([]string, 0, len(o.ByCountry))
	for k := range o.ByCountry {
		countries = append(countries, k)
	}
	sort.Strings(countries)
	for _, k := range countries {
		name := k
		if name == "" {
			name = "(none)"
		}
		fmt.Printf("  %-16s %d\n", name, o.ByCountry[k])
	}
	fmt.Println("Top cities:")
	for _, c := range o.TopCities {
		fmt.Printf("  %-16s %-12s %d\n", c.City, c.Country, c.Count)
	}
}
