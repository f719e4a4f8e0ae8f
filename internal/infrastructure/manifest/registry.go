// Package manifest implements format-aware parsing and patching of
// dependency manifests. Every operation is a pure function of its inputs:
// exact bytes in, exact bytes out aside from the patched version values.
package manifest

import (
	"fmt"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

const (
	FormatPackageJSON  = "package.json"
	FormatRequirements = "requirements.txt"
	FormatCargoToml    = "Cargo.toml"
	FormatTerraform    = "terraform"
)

// Codec implements the patch capability set for one manifest dialect.
type Codec interface {
	// Name returns the format tag this codec is registered under.
	Name() string

	// ApplyUpdates rewrites the version of every update whose name exists in
	// the manifest, preserving any leading range operator found on the
	// existing entry. Non-matching content passes through unchanged.
	ApplyUpdates(text string, updates []entities.DependencyUpdate) (entities.ManifestPatchResult, error)

	// RollbackPackage rewrites a single package's entry to the target
	// version, leaving all other entries untouched.
	RollbackPackage(text, packageName, targetVersion string) (entities.ManifestPatchResult, error)
}

// Registry maps a format tag to its codec, selected once at the call
// boundary.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// NewDefaultRegistry creates a registry with every supported dialect.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPackageJSONCodec())
	r.Register(NewRequirementsCodec())
	r.Register(NewCargoTomlCodec())
	r.Register(NewTerraformCodec())
	return r
}

// Register adds a codec under its name.
func (r *Registry) Register(c Codec) {
	r.codecs[c.Name()] = c
}

// Get returns the codec for the given format tag.
func (r *Registry) Get(format string) (Codec, error) {
	codec, ok := r.codecs[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrUnsupportedFormat, format)
	}
	return codec, nil
}

// Names returns the list of registered format tags.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	return names
}

// ApplyUpdates dispatches to the codec registered for format.
func (r *Registry) ApplyUpdates(
	text string,
	updates []entities.DependencyUpdate,
	format string,
) (entities.ManifestPatchResult, error) {
	codec, err := r.Get(format)
	if err != nil {
		return entities.ManifestPatchResult{}, err
	}
	return codec.ApplyUpdates(text, updates)
}

// RollbackPackage dispatches to the codec registered for format.
func (r *Registry) RollbackPackage(
	text, packageName, format, targetVersion string,
) (entities.ManifestPatchResult, error) {
	codec, err := r.Get(format)
	if err != nil {
		return entities.ManifestPatchResult{}, err
	}
	return codec.RollbackPackage(text, packageName, targetVersion)
}
