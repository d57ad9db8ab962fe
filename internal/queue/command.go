package queue

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandInspector counts active jobs by running a probe command that emits
// one line per job (lpstat -o style). It exists for print services that are
// easier to reach through their CLI than over IPP.
type CommandInspector struct {
	argv []string
}

// NewCommandInspector creates an inspector running the given argv.
func NewCommandInspector(argv []string) *CommandInspector {
	return &CommandInspector{argv: argv}
}

// ActiveJobs implements Inspector.
func (c *CommandInspector) ActiveJobs(ctx context.Context) (int, error) {
	if len(c.argv) == 0 {
		return 0, fmt.Errorf("no probe command configured")
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe command %q: %w", strings.Join(c.argv, " "), err)
	}

	return countLines(string(out)), nil
}

// countLines counts non-blank lines, one per job.
func countLines(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
