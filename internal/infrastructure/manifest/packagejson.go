package manifest

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// dependencySections are the package.json mappings eligible for patching.
var dependencySections = []string{"dependencies", "devDependencies", "peerDependencies"}

// packageJSONCodec patches the structured nested manifest (JSON). The
// document is parsed only to learn which sections hold which package; the
// rewrite itself is a textual substitution of the version string, so every
// byte outside the patched values survives unchanged.
type packageJSONCodec struct{}

// NewPackageJSONCodec creates the codec for package.json manifests.
func NewPackageJSONCodec() Codec { return &packageJSONCodec{} }

func (it *packageJSONCodec) Name() string { return FormatPackageJSON }

func (it *packageJSONCodec) ApplyUpdates(
	text string,
	updates []entities.DependencyUpdate,
) (entities.ManifestPatchResult, error) {
	sections, err := parseSections(text)
	if err != nil {
		return entities.ManifestPatchResult{}, err
	}

	updated := text
	var applied []entities.DependencyUpdate

	for _, section := range dependencySections {
		deps, ok := sections[section]
		if !ok {
			continue
		}
		for _, update := range updates {
			oldValue, found := deps[update.Name]
			if !found {
				continue
			}

			operator, _ := splitOperator(oldValue)
			newValue := operator + bareVersion(update.LatestVersion)
			if oldValue == newValue {
				continue
			}

			patched, changed := replaceEntryInSection(updated, section, update.Name, oldValue, newValue)
			if !changed {
				continue
			}
			updated = patched
			applied = append(applied, entities.DependencyUpdate{
				Name:           update.Name,
				CurrentVersion: oldValue,
				LatestVersion:  newValue,
				Location:       section,
			})
		}
	}

	return entities.ManifestPatchResult{
		UpdatedText:    updated,
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

func (it *packageJSONCodec) RollbackPackage(
	text, packageName, targetVersion string,
) (entities.ManifestPatchResult, error) {
	sections, err := parseSections(text)
	if err != nil {
		return entities.ManifestPatchResult{}, err
	}

	updated := text
	var applied []entities.DependencyUpdate

	// Exact name match in every section, operator preserved.
	for _, section := range dependencySections {
		deps, ok := sections[section]
		if !ok {
			continue
		}
		oldValue, found := deps[packageName]
		if !found {
			continue
		}

		operator, _ := splitOperator(oldValue)
		newValue := operator + bareVersion(targetVersion)
		if oldValue == newValue {
			continue
		}

		patched, changed := replaceEntryInSection(updated, section, packageName, oldValue, newValue)
		if !changed {
			continue
		}
		updated = patched
		applied = append(applied, entities.DependencyUpdate{
			Name:           packageName,
			CurrentVersion: oldValue,
			LatestVersion:  newValue,
			Location:       section,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    updated,
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

// parseSections unmarshals only the dependency sections into name -> range
// maps. The rest of the document is never materialized.
func parseSections(text string) (map[string]map[string]string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}

	sections := make(map[string]map[string]string)
	for _, name := range dependencySections {
		raw, ok := doc[name]
		if !ok {
			continue
		}
		var deps map[string]string
		if err := json.Unmarshal(raw, &deps); err != nil {
			continue // section is not a plain name -> version mapping
		}
		sections[name] = deps
	}
	return sections, nil
}

// replaceEntryInSection substitutes `"name": "oldValue"` with the new value,
// scoped to the byte span of the given section so a package listed in
// several sections is only touched where intended.
func replaceEntryInSection(text, section, name, oldValue, newValue string) (string, bool) {
	start, end, ok := sectionSpan(text, section)
	if !ok {
		return text, false
	}

	pattern := regexp.MustCompile(
		`("` + regexp.QuoteMeta(name) + `"\s*:\s*")` + regexp.QuoteMeta(oldValue) + `(")`,
	)
	span := text[start:end]
	loc := pattern.FindStringSubmatchIndex(span)
	if loc == nil {
		return text, false
	}

	replaced := span[:loc[0]] + pattern.ReplaceAllString(span[loc[0]:loc[1]], "${1}"+newValue+"${2}") + span[loc[1]:]
	return text[:start] + replaced + text[end:], true
}

// sectionSpan returns the byte range of the object literal belonging to the
// given top-level section key, located by brace counting from the key.
func sectionSpan(text, section string) (int, int, bool) {
	keyPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(section) + `"\s*:\s*\{`)
	loc := keyPattern.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := loc[1] - 1; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return loc[1] - 1, i + 1, true
				}
			}
		}
	}
	return 0, 0, false
}
