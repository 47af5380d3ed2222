package mirror

// MaterializationStatus is the terminal state of one branch materialization.
type MaterializationStatus string

const (
	// MaterializationDone means the branch folder was created and checked out.
	MaterializationDone MaterializationStatus = "done"
	// MaterializationSkipped means the branch folder already existed.
	MaterializationSkipped MaterializationStatus = "skipped"
	// MaterializationFailed means an attempt was made and abandoned; no folder was left behind.
	MaterializationFailed MaterializationStatus = "failed"
)

// MaterializationOutcome records what happened to one branch.
type MaterializationOutcome struct {
	BranchName string
	FolderName string
	TargetPath string
	Status     MaterializationStatus
	Error      error
}

// MirrorReport summarizes a single Mirror call.
type MirrorReport struct {
	RemoteURL      string
	RepositoryPath string
	Outcomes       []MaterializationOutcome
	// Failure holds the repository-level error that ended the run before or between branches.
	Failure error
	// NoBranchesMaterialized is set when the listing was empty or the policy selected nothing.
	NoBranchesMaterialized bool
}

// DoneCount reports how many branches were materialized.
func (report MirrorReport) DoneCount() int {
	return report.countStatus(MaterializationDone)
}

// SkippedCount reports how many branches already had a folder.
func (report MirrorReport) SkippedCount() int {
	return report.countStatus(MaterializationSkipped)
}

// FailedCount reports how many branches failed.
func (report MirrorReport) FailedCount() int {
	return report.countStatus(MaterializationFailed)
}

// HasFailures reports whether the repository setup or any branch failed.
func (report MirrorReport) HasFailures() bool {
	return report.Failure != nil || report.FailedCount() > 0
}

func (report MirrorReport) countStatus(status MaterializationStatus) int {
	count := 0
	for _, outcome := range report.Outcomes {
		if outcome.Status == status {
			count++
		}
	}
	return count
}
