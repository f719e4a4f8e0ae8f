package manifest

import (
	"regexp"
	"strings"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// cargoEntryPattern matches a `name = "version"` assignment line.
var cargoEntryPattern = regexp.MustCompile(
	`^(\s*)([a-zA-Z0-9_-]+)\s*=\s*["']([^"']+)["']\s*$`,
)

// cargoTomlCodec patches the section-delimited manifest: [section] headers
// gate which quoted version assignments are eligible. Only sections whose
// name contains "dependencies" are patched; any leading ^ or ~ on the
// existing range is preserved.
type cargoTomlCodec struct{}

// NewCargoTomlCodec creates the codec for Cargo.toml manifests.
func NewCargoTomlCodec() Codec { return &cargoTomlCodec{} }

func (it *cargoTomlCodec) Name() string { return FormatCargoToml }

func (it *cargoTomlCodec) ApplyUpdates(
	text string,
	updates []entities.DependencyUpdate,
) (entities.ManifestPatchResult, error) {
	byName := make(map[string]entities.DependencyUpdate, len(updates))
	for _, update := range updates {
		byName[strings.ToLower(update.Name)] = update
	}

	lines := strings.Split(text, "\n")
	var applied []entities.DependencyUpdate
	inDependencies := false

	for i, line := range lines {
		if isSectionHeader(line) {
			inDependencies = strings.Contains(strings.ToLower(line), "dependencies")
			continue
		}
		if !inDependencies || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		match := cargoEntryPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		indent, name, current := match[1], match[2], match[3]

		update, found := byName[strings.ToLower(name)]
		if !found {
			continue
		}

		operator, _ := splitOperator(current)
		newVersion := operator + bareVersion(update.LatestVersion)
		if current == newVersion {
			continue
		}

		lines[i] = indent + name + ` = "` + newVersion + `"`
		applied = append(applied, entities.DependencyUpdate{
			Name:           name,
			CurrentVersion: current,
			LatestVersion:  newVersion,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    strings.Join(lines, "\n"),
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

func (it *cargoTomlCodec) RollbackPackage(
	text, packageName, targetVersion string,
) (entities.ManifestPatchResult, error) {
	entryPattern := regexp.MustCompile(
		`^(\s*)(` + regexp.QuoteMeta(packageName) + `)\s*=\s*["']([^"']+)["']\s*$`,
	)

	lines := strings.Split(text, "\n")
	var applied []entities.DependencyUpdate
	inDependencies := false

	for i, line := range lines {
		if isSectionHeader(line) {
			inDependencies = strings.Contains(strings.ToLower(line), "dependencies")
			continue
		}
		if !inDependencies {
			continue
		}

		match := entryPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		indent, name, current := match[1], match[2], match[3]

		operator, _ := splitOperator(current)
		newVersion := operator + bareVersion(targetVersion)
		if current == newVersion {
			continue
		}

		lines[i] = indent + name + ` = "` + newVersion + `"`
		applied = append(applied, entities.DependencyUpdate{
			Name:           name,
			CurrentVersion: current,
			LatestVersion:  newVersion,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    strings.Join(lines, "\n"),
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "[")
}
