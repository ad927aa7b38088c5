package preflight

import (
	"context"

	"vidqueue/internal/config"
	"vidqueue/internal/credentials"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Inputs carries the runtime collaborators some checks need. Nil fields skip
// the corresponding check.
type Inputs struct {
	SaveDir     string
	Credentials credentials.Source
	AI          Prober
}

// RunAll executes every applicable preflight check.
func RunAll(ctx context.Context, cfg *config.Config, in Inputs) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(ctx, cfg) {
		results = append(results, fromDependency(status))
	}

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	if in.SaveDir != "" {
		results = append(results, CheckDirectoryAccess("Save directory", in.SaveDir))
		results = append(results, CheckDiskSpace(ctx, "Save directory space", in.SaveDir, MinFreeBytes))
	}
	if in.Credentials != nil {
		results = append(results, CheckCredentialStore(ctx, in.Credentials))
	}
	if in.AI != nil {
		results = append(results, CheckAI(ctx, in.AI))
	}
	return results
}

// Failed counts results that did not pass.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
