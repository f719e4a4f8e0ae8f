package manifest

import (
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// terraformCodec patches Terraform module blocks whose git sources pin a
// version through a ?ref= query. The file is parsed with HCL to find the
// blocks; the rewrite is a scoped textual substitution of the ref value, so
// formatting and comments survive untouched.
type terraformCodec struct{}

// NewTerraformCodec creates the codec for Terraform manifests.
func NewTerraformCodec() Codec { return &terraformCodec{} }

func (it *terraformCodec) Name() string { return FormatTerraform }

func (it *terraformCodec) ApplyUpdates(
	text string,
	updates []entities.DependencyUpdate,
) (entities.ManifestPatchResult, error) {
	modules := scanModules(text)

	updated := text
	var applied []entities.DependencyUpdate

	for _, update := range updates {
		module, ok := modules[update.Name]
		if !ok {
			continue
		}

		newVersion := bareVersion(update.LatestVersion)
		if module.version == newVersion {
			continue
		}

		patched := replaceModuleRef(updated, module, newVersion)
		if patched == updated {
			continue
		}
		updated = patched
		applied = append(applied, entities.DependencyUpdate{
			Name:           update.Name,
			CurrentVersion: module.version,
			LatestVersion:  newVersion,
		})
	}

	return entities.ManifestPatchResult{
		UpdatedText:    updated,
		AppliedUpdates: applied,
		Total:          len(applied),
	}, nil
}

func (it *terraformCodec) RollbackPackage(
	text, packageName, targetVersion string,
) (entities.ManifestPatchResult, error) {
	modules := scanModules(text)

	module, ok := modules[packageName]
	target := bareVersion(targetVersion)
	if !ok || module.version == target {
		return entities.ManifestPatchResult{UpdatedText: text}, nil
	}

	updated := replaceModuleRef(text, module, target)
	if updated == text {
		return entities.ManifestPatchResult{UpdatedText: text}, nil
	}

	applied := []entities.DependencyUpdate{{
		Name:           packageName,
		CurrentVersion: module.version,
		LatestVersion:  target,
	}}
	return entities.ManifestPatchResult{
		UpdatedText:    updated,
		AppliedUpdates: applied,
		Total:          1,
	}, nil
}

// moduleDep is one module block with a version-pinned git source.
type moduleDep struct {
	name    string
	source  string // without the ref query
	version string
}

// scanModules parses module blocks and collects git sources carrying a
// ?ref= version pin, keyed by module label. Falls back to a regex scan when
// the content is not valid HCL.
func scanModules(text string) map[string]moduleDep {
	parser := hclparse.NewParser()

	file, diags := parser.ParseHCL([]byte(text), "manifest.tf")
	if diags.HasErrors() || file.Body == nil {
		return scanModulesWithRegex(text)
	}

	bodyContent, _, partialDiags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if partialDiags.HasErrors() {
		return scanModulesWithRegex(text)
	}

	modules := make(map[string]moduleDep)
	for _, block := range bodyContent.Blocks {
		if block.Type != "module" || len(block.Labels) == 0 {
			continue
		}

		attrs, _ := block.Body.JustAttributes()
		sourceAttr, hasSource := attrs["source"]
		if !hasSource {
			continue
		}

		sourceVal, sourceDiags := sourceAttr.Expr.Value(&hcl.EvalContext{})
		if sourceDiags.HasErrors() || sourceVal.Type() != cty.String {
			continue
		}

		source := sourceVal.AsString()
		version := extractRefVersion(source)
		if version == "" {
			continue
		}

		name := block.Labels[0]
		modules[name] = moduleDep{
			name:    name,
			source:  removeRefFromSource(source),
			version: version,
		}
	}

	return modules
}

var moduleBlockPattern = regexp.MustCompile(
	`(?s)module\s+"([^"]+)"\s*\{[^}]*source\s*=\s*"([^"]+)"`,
)

func scanModulesWithRegex(text string) map[string]moduleDep {
	modules := make(map[string]moduleDep)
	for _, match := range moduleBlockPattern.FindAllStringSubmatch(text, -1) {
		name, source := match[1], match[2]
		version := extractRefVersion(source)
		if version == "" {
			continue
		}
		modules[name] = moduleDep{
			name:    name,
			source:  removeRefFromSource(source),
			version: version,
		}
	}
	return modules
}

var refPattern = regexp.MustCompile(`\?ref=([^&\s"]+)`)

func extractRefVersion(source string) string {
	if matches := refPattern.FindStringSubmatch(source); len(matches) > 1 {
		return matches[1]
	}
	return ""
}

func removeRefFromSource(source string) string {
	return refPattern.ReplaceAllString(source, "")
}

// replaceModuleRef rewrites the ref version of one module's source. The
// exact source string is tried first; a module-scoped regex handles
// formatting variations.
func replaceModuleRef(text string, module moduleDep, newVersion string) string {
	oldSource := module.source + "?ref=" + module.version
	newSource := module.source + "?ref=" + newVersion
	if strings.Contains(text, oldSource) {
		return strings.Replace(text, oldSource, newSource, 1)
	}

	pattern := regexp.MustCompile(
		`(module\s+"` + regexp.QuoteMeta(module.name) +
			`"\s*\{[^}]*source\s*=\s*"[^"]*\?ref=)` +
			regexp.QuoteMeta(module.version) + `([^"]*")`,
	)
	return pattern.ReplaceAllString(text, "${1}"+newVersion+"${2}")
}
