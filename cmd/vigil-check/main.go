package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/tbenoit3/workflow-vigil/internal/adapter/github"
	"github.com/tbenoit3/workflow-vigil/internal/config"
	"github.com/tbenoit3/workflow-vigil/internal/eval"
	"github.com/tbenoit3/workflow-vigil/internal/output"
)

// failureMessage is the fixed diagnostic reported when the check itself
// fails. The underlying error goes to the log; downstream automation only
// ever sees this message and a non-zero exit.
const failureMessage = "workflow health check failed"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadActionConfig()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		fmt.Fprintln(os.Stderr, failureMessage)
		return 1
	}

	adapterCfg := github.DefaultConfig(cfg.Token)
	if base := os.Getenv("GITHUB_API_URL"); base != "" {
		adapterCfg.BaseURL = base
	}

	evaluator := eval.NewEvaluator(github.NewAdapter(adapterCfg))

	query := eval.RunQuery{
		Owner:    cfg.Owner,
		Repo:     cfg.Repo,
		Workflow: cfg.Workflow,
		Branch:   cfg.Branch,
		PerPage:  cfg.PerPage,
	}

	result, err := evaluator.Evaluate(context.Background(), query, cfg.Policy, time.Now())
	if err != nil {
		log.Printf("Error fetching run history for %s/%s %s@%s: %v",
			cfg.Owner, cfg.Repo, cfg.Workflow, cfg.Branch, err)
		fmt.Fprintln(os.Stderr, failureMessage)
		return 1
	}

	log.Printf("Evaluated %s/%s %s@%s: hasPreviousFailure=%v (%s)",
		cfg.Owner, cfg.Repo, cfg.Workflow, cfg.Branch,
		result.HasPreviousFailure, result.Reason)

	// Declaring a failure is a successful evaluation; only a publication
	// error makes the process fail from here on.
	if err := output.NewWriter().SetBool("has_previous_failure", result.HasPreviousFailure); err != nil {
		log.Printf("Error publishing output: %v", err)
		fmt.Fprintln(os.Stderr, failureMessage)
		return 1
	}

	return 0
}
