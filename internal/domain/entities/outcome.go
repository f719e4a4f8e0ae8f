package entities

// OutcomeKind is the terminal state of one orchestrated update run.
type OutcomeKind string

const (
	// OutcomePublished means the updates passed the build/test step and a
	// pull request was opened.
	OutcomePublished OutcomeKind = "published"

	// OutcomeIssueFiled means the rollback budget was spent and an issue
	// carrying the final failing transcript was filed instead.
	OutcomeIssueFiled OutcomeKind = "issue_filed"

	// OutcomeUpToDate means the push reported no file changes; nothing was
	// opened. This is a normal short-circuit, not a failure.
	OutcomeUpToDate OutcomeKind = "up_to_date"
)

// RunOutcome reports how one update run ended.
type RunOutcome struct {
	Kind        OutcomeKind
	PullRequest *PullRequest // set when Kind == OutcomePublished
	IssueURL    string       // set when Kind == OutcomeIssueFiled
	Attempts    int          // rollback cycles consumed
	RolledBack  []string     // packages reverted to their old major line
	Retained    []string     // packages still at their updated versions
	Summary     string
}

// BuildResult is what the external build/test runner reports for one command.
type BuildResult struct {
	Command    string
	ExitCode   int
	StdoutTail string
	StderrTail string
	TimedOut   bool
}

// Succeeded reports whether the command completed with exit code zero.
// A timed-out run never succeeds.
func (it BuildResult) Succeeded() bool {
	return !it.TimedOut && it.ExitCode == 0
}

// Transcript merges the captured output tails for diagnosis and reporting.
func (it BuildResult) Transcript() string {
	if it.StderrTail == "" {
		return it.StdoutTail
	}
	if it.StdoutTail == "" {
		return it.StderrTail
	}
	return it.StdoutTail + "\n" + it.StderrTail
}

// BuildCommands holds the commands detected for a working tree.
type BuildCommands struct {
	PackageManager string
	Install        string
	Build          string
	Test           string
}
