package manifest

import (
	"strings"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// versionSeparators are the pin operators recognized on requirement lines.
// Two-character operators only; a bare name carries no version to patch.
var versionSeparators = []string{"==", ">=", "<="}

// requirementsCodec patches the line-oriented manifest: one name<op>version
// entry per line. Comments and blank lines pass through verbatim, and name
// matching is case-insensitive.
type requirementsCodec struct{}

// NewRequirementsCodec creates the codec for requirements.txt manifests.
func NewRequirementsCodec() Codec { return &requirementsCodec{} }

func (it *requirementsCodec) Name() string { return FormatRequirements }

func (it *requirementsCodec) ApplyUpdates(
	text string,
	updates []entities.DependencyUpdate,
) (entities.ManifestPatchResult, error) {
	byName := make(map[string]entities.DependencyUpdate, len(updates))
	for _, update := range updates {
		byName[strings.ToLower(update.Name)] = update
	}

	lines := strings.Split(text, "\n")
	var applied []entities.DependencyUpdate

	for i, line := range lines {
		name, op, version, ok := parseRequirementLine(line)
		if !ok {
			continue
		}

		update, found := byName[strings.ToLower(name)]
		if !found {
			continue
		}

		newVersion := bareVersion(update.LatestVersion)
		if version == newVersion {
			continue
		}

		lines[i] = name + op + newVersion
		applied = append(applied, entities.DependencyUpdate{
			Name:           name,
			CurrentVersion: version,
			LatestVersion:  newVersion,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    strings.Join(lines, "\n"),
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

func (it *requirementsCodec) RollbackPackage(
	text, packageName, targetVersion string,
) (entities.ManifestPatchResult, error) {
	lines := strings.Split(text, "\n")
	var applied []entities.DependencyUpdate

	target := bareVersion(targetVersion)
	for i, line := range lines {
		name, op, version, ok := parseRequirementLine(line)
		if !ok {
			continue
		}
		if !strings.EqualFold(name, packageName) || version == target {
			continue
		}

		lines[i] = name + op + target
		applied = append(applied, entities.DependencyUpdate{
			Name:           name,
			CurrentVersion: version,
			LatestVersion:  target,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    strings.Join(lines, "\n"),
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

// parseRequirementLine splits a requirement entry into name, operator, and
// version. Comments, blank lines, and entries without a pin operator are
// reported as non-patchable.
func parseRequirementLine(line string) (string, string, string, bool) {
	stripped := strings.TrimSpace(line)
	if stripped == "" || strings.HasPrefix(stripped, "#") {
		return "", "", "", false
	}

	for _, op := range versionSeparators {
		if idx := strings.Index(stripped, op); idx > 0 {
			name := strings.TrimSpace(stripped[:idx])
			version := strings.TrimSpace(stripped[idx+len(op):])
			return name, op, version, true
		}
	}

	return "", "", "", false // bare name, nothing to patch
}
