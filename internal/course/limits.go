package course

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limits holds the policy ceilings enforced by the business rule validator
// and the package builder, plus the player bounded-wait constants. All
// values are configurable rather than hidden constants; DefaultLimits gives
// the production policy.
type Limits struct {
	MaxTemplates          int
	MaxAssets             int
	MaxPackageBytes       int64
	MaxOptionsPerQuestion int
	MaxCourseTitleLen     int
	MaxTemplateTitleLen   int

	// StepBudget bounds the work of a single pipeline run as defense
	// against pathological inputs. Counted in visited templates, questions
	// and options.
	StepBudget int

	// The runtime player blocks for the data blob before rendering.
	PlayerWaitTimeout  time.Duration
	PlayerPollInterval time.Duration
}

// DefaultLimits returns the standard policy ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxTemplates:          100,
		MaxAssets:             200,
		MaxPackageBytes:       50 * 1024 * 1024,
		MaxOptionsPerQuestion: 10,
		MaxCourseTitleLen:     200,
		MaxTemplateTitleLen:   100,
		StepBudget:            50000,
		PlayerWaitTimeout:     5 * time.Second,
		PlayerPollInterval:    250 * time.Millisecond,
	}
}

// limitsFile is the YAML override layout. Player wait values are given in
// milliseconds.
type limitsFile struct {
	MaxTemplates          int   `yaml:"max_templates"`
	MaxAssets             int   `yaml:"max_assets"`
	MaxPackageBytes       int64 `yaml:"max_package_bytes"`
	MaxOptionsPerQuestion int   `yaml:"max_options_per_question"`
	MaxCourseTitleLen     int   `yaml:"max_course_title_len"`
	MaxTemplateTitleLen   int   `yaml:"max_template_title_len"`
	StepBudget            int   `yaml:"step_budget"`
	PlayerWaitTimeoutMS   int   `yaml:"player_wait_timeout_ms"`
	PlayerPollIntervalMS  int   `yaml:"player_poll_interval_ms"`
}

// LoadLimits reads policy overrides from a YAML file on top of the
// defaults. Zero-valued fields in the file keep their defaults.
func LoadLimits(path string) (Limits, error) {
	lim := DefaultLimits()

	data, err := os.ReadFile(path)
	if err != nil {
		return lim, fmt.Errorf("reading limits file: %w", err)
	}

	var override limitsFile
	if err := yaml.Unmarshal(data, &override); err != nil {
		return lim, fmt.Errorf("parsing limits file: %w", err)
	}

	if override.MaxTemplates > 0 {
		lim.MaxTemplates = override.MaxTemplates
	}
	if override.MaxAssets > 0 {
		lim.MaxAssets = override.MaxAssets
	}
	if override.MaxPackageBytes > 0 {
		lim.MaxPackageBytes = override.MaxPackageBytes
	}
	if override.MaxOptionsPerQuestion > 0 {
		lim.MaxOptionsPerQuestion = override.MaxOptionsPerQuestion
	}
	if override.MaxCourseTitleLen > 0 {
		lim.MaxCourseTitleLen = override.MaxCourseTitleLen
	}
	if override.MaxTemplateTitleLen > 0 {
		lim.MaxTemplateTitleLen = override.MaxTemplateTitleLen
	}
	if override.StepBudget > 0 {
		lim.StepBudget = override.StepBudget
	}
	if override.PlayerWaitTimeoutMS > 0 {
		lim.PlayerWaitTimeout = time.Duration(override.PlayerWaitTimeoutMS) * time.Millisecond
	}
	if override.PlayerPollIntervalMS > 0 {
		lim.PlayerPollInterval = time.Duration(override.PlayerPollIntervalMS) * time.Millisecond
	}
	return lim, nil
}
