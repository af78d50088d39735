package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tbenoit3/workflow-vigil/internal/eval"
)

// Defaults for the one-shot check inputs.
const (
	DefaultWorkflow     = "release.yml"
	DefaultBranch       = "main"
	DefaultPerPage      = 50
	DefaultLookbackDays = 7
)

// ActionConfig is the fully-resolved configuration for one check invocation.
// It is assembled once at the process boundary; nothing downstream reads the
// ambient environment.
type ActionConfig struct {
	Owner    string
	Repo     string
	Workflow string
	Branch   string
	Token    string
	PerPage  int
	Policy   eval.Policy
}

// Input reads a named input the way a CI runner supplies it: the value of
// the INPUT_<NAME> environment variable, with the name uppercased.
func Input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return os.Getenv(key)
}

func inputOrDefault(name, fallback string) string {
	if v := Input(name); v != "" {
		return v
	}
	return fallback
}

// LoadActionConfig assembles the check configuration from named inputs and
// the ambient runner environment. The credential is the only hard
// requirement; everything else has a default or a soft-failure policy.
func LoadActionConfig() (ActionConfig, error) {
	cfg := ActionConfig{
		Workflow: inputOrDefault("workflow_id", DefaultWorkflow),
		Branch:   inputOrDefault("branch", DefaultBranch),
	}

	cfg.Token = Input("github_token")
	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Token == "" {
		return ActionConfig{}, fmt.Errorf("github_token input or GITHUB_TOKEN environment variable is required")
	}

	// Owner and repo default to the invoking repository's own identity.
	defaultOwner, defaultRepo := splitRepository(os.Getenv("GITHUB_REPOSITORY"))
	cfg.Owner = inputOrDefault("owner", defaultOwner)
	cfg.Repo = inputOrDefault("repo", defaultRepo)
	if cfg.Owner == "" || cfg.Repo == "" {
		return ActionConfig{}, fmt.Errorf("owner and repo inputs are required when GITHUB_REPOSITORY is not set")
	}

	cfg.PerPage = ParsePerPage(Input("per_page"))

	if s := Input("days_to_look_back"); s != "" {
		cfg.Policy.LookbackDays = ParseLookbackDays(s)
	} else {
		cfg.Policy.LookbackDays = DefaultLookbackDays
	}
	cfg.Policy.CheckOutsideWindow = ParseCheckOutsideWindow(Input("check_outside_window"))

	return cfg, nil
}

// ParseLookbackDays parses a fractional-day lookback input. An unparseable
// value degrades to NaN rather than failing the check: NaN satisfies no
// window membership comparison, so every run is excluded from the window and
// the evaluation falls through to the outside-window fallback path.
func ParseLookbackDays(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseCheckOutsideWindow parses the fallback flag. Only a literal "false"
// (case-insensitive, whitespace-trimmed) disables the fallback; empty or
// unrecognized input keeps the default of true.
func ParseCheckOutsideWindow(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) != "false"
}

// ParsePerPage parses the page-size input, falling back to the default on
// empty, unparseable, or non-positive values.
func ParsePerPage(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return DefaultPerPage
	}
	return v
}

func splitRepository(fullName string) (owner, repo string) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok {
		return "", ""
	}
	return owner, repo
}
