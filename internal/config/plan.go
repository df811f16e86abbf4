package config

import (
	"fmt"

	"github.com/theirongolddev/dataneko/internal/pipeline"
)

// DefaultPlanGB is the plan size assumed before setup runs.
const DefaultPlanGB = 5

// PlanPresets are the plan sizes offered by setup.
var PlanPresets = []int{1, 3, 5, 10, 20, 30, 50}

// PredictorConfig returns the predictor inputs owned by configuration.
func (c Config) PredictorConfig() pipeline.PredictorConfig {
	return pipeline.PredictorConfig{
		PlanLimitGB:        c.Plan.LimitGB,
		DefaultWifiDailyGB: c.Plan.DefaultWifiDailyGB,
	}
}

// PlanLabel renders the plan for display, e.g. "5 GB / month".
func (c Config) PlanLabel() string {
	return fmt.Sprintf("%d GB / month", c.Plan.LimitGB)
}
