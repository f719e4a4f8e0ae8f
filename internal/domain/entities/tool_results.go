package entities

// Tool-server responses are untyped JSON on the wire. They are decoded at the
// session boundary into the closed set of variants below, so nothing past
// that boundary inspects raw maps.

// PullRequestResult is the decoded payload of a create-pull-request call.
type PullRequestResult struct {
	Number int    `json:"number"`
	URL    string `json:"html_url"`
	Title  string `json:"title"`
	State  string `json:"state"`
}

// IssueResult is the decoded payload of a create-issue call.
type IssueResult struct {
	Number int    `json:"number"`
	URL    string `json:"html_url"`
	Title  string `json:"title"`
}

// BranchResult is the decoded payload of a create-branch call.
type BranchResult struct {
	Ref string `json:"ref"`
}

// PushResult is the decoded payload of a push-files call. FilesChanged of
// zero means the batch was identical to the branch tip; the orchestration
// treats that as "already up to date".
type PushResult struct {
	CommitSHA    string `json:"sha"`
	FilesChanged int    `json:"files_changed"`
}
