package assumptions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"RoboAdvisor/internal/model"
)

// returnsFile leaves unset legs at their current value.
type returnsFile struct {
	Conservative *float64 `yaml:"conservative"`
	Expected     *float64 `yaml:"expected"`
	BestCase     *float64 `yaml:"best_case"`
}

type categoryFile struct {
	Returns       *returnsFile         `yaml:"returns"`
	Volatility    *float64             `yaml:"volatility"`
	RecentOneYear *float64             `yaml:"recent_1y_return"`
	Admits        []model.RiskCategory `yaml:"admits"`
}

type tablesFile struct {
	BaselineAsOf  string                              `yaml:"baseline_as_of"`
	Categories    map[model.RiskCategory]categoryFile `yaml:"categories"`
	Durations     map[string]string                   `yaml:"durations"`
	DurationRules map[string]DurationRule             `yaml:"duration_rules"`
	ScoreBands    []ScoreBand                         `yaml:"score_bands"`
}

// Load reads an optional YAML override file on top of Default. A missing
// file yields the defaults. The merged tables must pass Validate.
func Load(path string) (*Tables, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("read assumptions: %w", err)
	}
	if err := t.apply(data); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate assumptions: %w", err)
	}
	return t, nil
}

func (t *Tables) apply(data []byte) error {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse assumptions: %w", err)
	}
	for c, cf := range f.Categories {
		if !c.Valid() {
			return fmt.Errorf("unknown risk category %q in assumptions", c)
		}
		if cf.Returns != nil {
			r := t.returns[c]
			if cf.Returns.Conservative != nil {
				r.Conservative = *cf.Returns.Conservative
			}
			if cf.Returns.Expected != nil {
				r.Expected = *cf.Returns.Expected
			}
			if cf.Returns.BestCase != nil {
				r.BestCase = *cf.Returns.BestCase
			}
			t.returns[c] = r
		}
		if cf.Volatility != nil {
			t.volatility[c] = *cf.Volatility
		}
		if cf.RecentOneYear != nil {
			t.recentOneYear[c] = *cf.RecentOneYear
		}
		if len(cf.Admits) > 0 {
			t.hierarchy[c] = cf.Admits
		}
	}
	if len(f.Durations) > 0 {
		t.durationKeys = f.Durations
	}
	if len(f.DurationRules) > 0 {
		t.durationRules = f.DurationRules
	}
	if len(f.ScoreBands) > 0 {
		t.scoreBands = f.ScoreBands
	}
	if f.BaselineAsOf != "" {
		t.baselineAsOf = f.BaselineAsOf
	}
	return nil
}
