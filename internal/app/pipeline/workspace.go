package pipeline

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"repo_agent/internal/common"
)

// changeNoteFile is the tracked file the reference change is appended to.
// Real deployments substitute arbitrary patch application for this step.
const changeNoteFile = "README.md"

// provisionWorkspace creates the isolated working directory for one job.
func provisionWorkspace(root, jobID string) (string, error) {
	dir := filepath.Join(root, "repo_"+jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.Errorf("%w: creating workspace %s: %v", common.ErrWorkspace, dir, err)
	}
	return dir, nil
}

func removeWorkspace(jobID, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Printf("WARN: job %s: failed to remove workspace %s: %v", jobID, dir, err)
	}
}

// appendChangeNote appends a timestamped note describing the change to the
// documentation file in the workspace.
func appendChangeNote(dir, description string) error {
	path := filepath.Join(dir, changeNoteFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return common.Errorf("%w: opening %s: %v", common.ErrWorkspace, path, err)
	}
	defer f.Close()

	note := fmt.Sprintf("\n\n# Agent Change (%s): %s\n",
		time.Now().UTC().Format(time.RFC3339), description)
	if _, err := f.WriteString(note); err != nil {
		return common.Errorf("%w: appending to %s: %v", common.ErrWorkspace, path, err)
	}
	return nil
}
