package manifest

import (
	"strings"

	"golang.org/x/mod/semver"
)

// LatestWithinMajor returns the highest candidate version whose major
// component equals the major of the given version, or the empty string when
// no candidate qualifies. Used to pick a rollback target that stays inside
// the old major line.
func LatestWithinMajor(candidates []string, version string) string {
	major := semver.Major(normalizeVersion(version))
	if major == "" {
		return ""
	}

	best := ""
	for _, candidate := range candidates {
		normalized := normalizeVersion(candidate)
		if !semver.IsValid(normalized) || semver.Major(normalized) != major {
			continue
		}
		if best == "" || semver.Compare(normalized, normalizeVersion(best)) > 0 {
			best = candidate
		}
	}

	return best
}

// IsNewerVersion reports whether candidate is strictly newer than current,
// falling back to a lexical comparison when either is not valid semver.
func IsNewerVersion(current, candidate string) bool {
	cur := normalizeVersion(current)
	cand := normalizeVersion(candidate)
	if semver.IsValid(cur) && semver.IsValid(cand) {
		return semver.Compare(cand, cur) > 0
	}
	return candidate > current
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(bareVersion(version))
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
