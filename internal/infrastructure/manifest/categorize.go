package manifest

import (
	"strconv"
	"strings"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// Categorize splits updates into major, minor, and patch buckets by
// comparing the first differing numeric component of the two versions after
// stripping any leading range operator. Every update lands in exactly one
// bucket. Ambiguous, unparsable, or single-component versions are filed
// under minor, never patch.
func Categorize(updates []entities.DependencyUpdate) entities.CategorizedUpdates {
	var result entities.CategorizedUpdates

	for _, update := range updates {
		switch categorizeOne(update.CurrentVersion, update.LatestVersion) {
		case entities.CategoryMajor:
			result.Major = append(result.Major, update)
		case entities.CategoryMinor:
			result.Minor = append(result.Minor, update)
		case entities.CategoryPatch:
			result.Patch = append(result.Patch, update)
		}
	}

	return result
}

func categorizeOne(current, latest string) entities.UpdateCategory {
	currentParts := strings.Split(bareVersion(current), ".")
	latestParts := strings.Split(bareVersion(latest), ".")

	currentMajor, okCur := numericComponent(currentParts, 0)
	latestMajor, okLat := numericComponent(latestParts, 0)
	if !okCur || !okLat {
		return entities.CategoryMinor
	}
	if currentMajor != latestMajor {
		return entities.CategoryMajor
	}

	currentMinor, okCur := numericComponent(currentParts, 1)
	latestMinor, okLat := numericComponent(latestParts, 1)
	if !okCur || !okLat {
		return entities.CategoryMinor // too short to call it a patch
	}
	if currentMinor != latestMinor {
		return entities.CategoryMinor
	}

	return entities.CategoryPatch
}

// numericComponent returns the idx-th dot component as a number; ok is
// false when the component is missing, empty, or not numeric.
func numericComponent(parts []string, idx int) (int, bool) {
	if idx >= len(parts) {
		return 0, false
	}
	component := strings.TrimSpace(parts[idx])
	if component == "" {
		return 0, false
	}
	value, err := strconv.Atoi(component)
	if err != nil {
		return 0, false
	}
	return value, true
}
