package pipeline

import (
	"bytes"
	"context"
	"log"
	"os/exec"
	"strings"

	"repo_agent/internal/common"
)

// runGate executes the optional verification command inside the workspace.
// A gate whose executable cannot be resolved is skipped, not failed: the
// absence of an optional tool must not sink the change. A resolvable gate
// that exits non-zero aborts the pipeline with the fixed diagnostic carried
// by common.ErrGateFailed.
func runGate(ctx context.Context, jobID, dir, command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}

	if _, err := exec.LookPath(fields[0]); err != nil {
		log.Printf("WARN: job %s: gate command %q not found, skipping gate", jobID, fields[0])
		return nil
	}

	log.Printf("INFO: job %s: running gate command: %s", jobID, command)
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		log.Printf("ERROR: job %s: gate command failed: %v\n%s", jobID, err, out.String())
		return common.ErrGateFailed
	}
	return nil
}
