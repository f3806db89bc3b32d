package preflight

import (
	"fmt"

	"mkvsubs/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll checks every directory the pipeline touches.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	roots := cfg.SearchDirectories()
	for i, root := range roots {
		results = append(results, CheckDirectoryReadable(fmt.Sprintf("Search directory %d", i+1), root))
	}
	if len(roots) == 0 {
		results = append(results, Result{Name: "Search directories", Detail: "none configured (add one with: mkvsubs dirs add <dir>)"})
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
