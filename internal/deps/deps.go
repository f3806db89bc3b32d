package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"mkvsubs/internal/toolexec"
)

// Requirement defines an external dependency mkvsubs relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// MediaRequirements lists the tools the analysis and extraction pipeline invokes.
func MediaRequirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Lists subtitle tracks and attachments"},
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Extracts subtitle tracks and attachments"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ProbeVersions fills Version for every available status by running
// "<binary> -version". Failures are recorded in Detail and never change
// availability.
func ProbeVersions(ctx context.Context, runner toolexec.Runner, statuses []Status) []Status {
	if runner == nil {
		runner = toolexec.NewCommandRunner(toolexec.WithMergedStdout())
	}
	out := make([]Status, len(statuses))
	copy(out, statuses)
	for i := range out {
		if !out[i].Available {
			continue
		}
		binary := out[i].Path
		if binary == "" {
			binary = out[i].Command
		}
		result, err := runner.Run(ctx, toolexec.Command{Binary: binary, Args: []string{"-version"}})
		if err != nil {
			out[i].Detail = fmt.Sprintf("version check failed: %v", err)
			continue
		}
		out[i].Version = ParseVersion(result.Diagnostic)
	}
	return out
}

// ParseVersion extracts the version token from "ffmpeg version 6.1.1-3ubuntu5 Copyright ...".
func ParseVersion(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		for i := 0; i+2 < len(fields); i++ {
			if fields[i+1] == "version" {
				return fields[i+2]
			}
		}
	}
	return ""
}
