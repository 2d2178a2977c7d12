package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"RoboAdvisor/internal/goals"
	"RoboAdvisor/internal/model"
	"RoboAdvisor/internal/notifier"
	"RoboAdvisor/internal/projection"
)

// projectCmd holds the flags for the 'project' subcommand.
type projectCmd struct {
	corpus  float64
	sip     float64
	horizon int
	risk    string
	recent  string
	save    bool
	owner   string
}

func (*projectCmd) Name() string     { return "project" }
func (*projectCmd) Synopsis() string { return "project a savings plan under three scenarios" }
func (*projectCmd) Usage() string {
	return `advisorctl project -corpus <rupees> -sip <rupees> -horizon <years> -risk <category> [-recent <pct>] [-save [-owner <id>]]

  Prints conservative, expected and best case corpus. With -save the goal is
  stored in the configured database.
`
}

func (c *projectCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.corpus, "corpus", 0, "Starting corpus in rupees")
	f.Float64Var(&c.sip, "sip", 0, "Monthly SIP in rupees")
	f.IntVar(&c.horizon, "horizon", 10, "Horizon in years")
	f.StringVar(&c.risk, "risk", string(model.MediumRisk), "Risk category")
	f.StringVar(&c.recent, "recent", "", "Recent 1-year market return %; defaults to the category table")
	f.BoolVar(&c.save, "save", false, "Save the goal")
	f.StringVar(&c.owner, "owner", "", "Owner id for a saved goal")
}

func (c *projectCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in := model.GoalInput{
		Corpus:       c.corpus,
		MonthlySIP:   c.sip,
		HorizonYears: c.horizon,
		RiskCategory: model.RiskCategory(c.risk),
	}
	if err := projection.ValidateGoalInput(in); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var recent *float64
	if c.recent != "" {
		v, err := strconv.ParseFloat(c.recent, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -recent: %v\n", err)
			return subcommands.ExitUsageError
		}
		recent = &v
	}

	cfg, tables, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	engine := projection.NewEngine(tables)
	res := engine.Calculate(in, recent)

	fmt.Printf("%s over %d years\n", res.Category, in.HorizonYears)
	for _, sc := range projection.ScenarioReturns(tables, res) {
		fmt.Printf("  %-12s %5.1f%%  %s\n", sc.Name, sc.AnnualReturn, notifier.Rupees(sc.Corpus))
	}
	fmt.Printf("Confidence: %s (%d%%)\n", res.Confidence, res.ConfidencePercentage)
	if res.MeanReversionApplied {
		fmt.Printf("Expected return cut from %.1f%% to %.1f%%: recent 1y return %.1f%% (%s)\n",
			res.BaseReturn, res.AdjustedReturn, res.RecentReturn, res.RecentReturnSource)
	}

	if !c.save {
		return subcommands.ExitSuccess
	}
	st, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening goal store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer st.Close()

	svc := goals.NewService(st, engine, nil, nil)
	rec, err := svc.Save(ctx, c.owner, in, res)
	if errors.Is(err, goals.ErrPersist) {
		fmt.Fprintf(os.Stderr, "Goal %s was not saved: %v\n", rec.GoalID, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Saved goal %s\n", rec.GoalID)
	return subcommands.ExitSuccess
}
