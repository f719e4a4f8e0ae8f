package entities

// DependencyUpdate represents a single outdated dependency and the version
// it should be moved to.
type DependencyUpdate struct {
	Name           string `json:"name"`
	CurrentVersion string `json:"current"`
	LatestVersion  string `json:"latest"`
	Location       string `json:"location,omitempty"` // manifest section or file path
}

// UpdateCategory classifies the size of a version delta.
type UpdateCategory string

const (
	CategoryMajor UpdateCategory = "major"
	CategoryMinor UpdateCategory = "minor"
	CategoryPatch UpdateCategory = "patch"
)

// CategorizedUpdates groups updates by their version-delta category.
// The three slices always partition the input: every update lands in
// exactly one of them.
type CategorizedUpdates struct {
	Major []DependencyUpdate
	Minor []DependencyUpdate
	Patch []DependencyUpdate
}

// Total returns the number of updates across all categories.
func (it CategorizedUpdates) Total() int {
	return len(it.Major) + len(it.Minor) + len(it.Patch)
}

// ManifestPatchResult is the immutable outcome of one patch or rollback
// operation over a manifest text.
type ManifestPatchResult struct {
	UpdatedText    string
	AppliedUpdates []DependencyUpdate
	Total          int
}
