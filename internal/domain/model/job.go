package model

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"

	// JobStatusUnknown is never stored; it is reported for ids the store
	// has no record of.
	JobStatusUnknown = "unknown"
)

// Job is one tracked execution of the change pipeline. The id is the map key
// in the persisted snapshot, so it is not repeated inside the record.
type Job struct {
	Status string  `json:"status"`
	Result *string `json:"result,omitempty"`
}

// Terminal reports whether the job has reached a final state. Terminal
// records are never transitioned again.
func (j Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ChangeRequest is the caller's description of the change to propose.
// Immutable once accepted; the pipeline works from its own copy.
type ChangeRequest struct {
	Description string `json:"description"`
	RepoURL     string `json:"repo_url"`
	BaseBranch  string `json:"base_branch,omitempty"`
	GateCommand string `json:"gate_command,omitempty"`
}

const DefaultBaseBranch = "main"
