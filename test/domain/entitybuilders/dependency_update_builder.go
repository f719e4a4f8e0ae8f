//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// DependencyUpdateBuilder helps create test dependency updates with a fluent interface.
type DependencyUpdateBuilder struct {
	*testkit.BaseBuilder
	name       string
	currentVer string
	latestVer  string
	location   string
}

// NewDependencyUpdateBuilder creates a new builder with sensible defaults.
func NewDependencyUpdateBuilder() *DependencyUpdateBuilder {
	return &DependencyUpdateBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		name:        "test-package",
		currentVer:  "1.0.0",
		latestVer:   "1.1.0",
		location:    "dependencies",
	}
}

// WithName sets the package name.
func (b *DependencyUpdateBuilder) WithName(name string) *DependencyUpdateBuilder {
	b.name = name
	return b
}

// WithCurrentVer sets the current version.
func (b *DependencyUpdateBuilder) WithCurrentVer(version string) *DependencyUpdateBuilder {
	b.currentVer = version
	return b
}

// WithLatestVer sets the latest version.
func (b *DependencyUpdateBuilder) WithLatestVer(version string) *DependencyUpdateBuilder {
	b.latestVer = version
	return b
}

// WithLocation sets the manifest section or file path.
func (b *DependencyUpdateBuilder) WithLocation(location string) *DependencyUpdateBuilder {
	b.location = location
	return b
}

// Build creates the update (satisfies testkit.Builder interface).
func (b *DependencyUpdateBuilder) Build() interface{} {
	return b.BuildDependencyUpdate()
}

// BuildDependencyUpdate creates the update with a concrete return type.
func (b *DependencyUpdateBuilder) BuildDependencyUpdate() entities.DependencyUpdate {
	return entities.DependencyUpdate{
		Name:           b.name,
		CurrentVersion: b.currentVer,
		LatestVersion:  b.latestVer,
		Location:       b.location,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *DependencyUpdateBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.name = "test-package"
	b.currentVer = "1.0.0"
	b.latestVer = "1.1.0"
	b.location = "dependencies"
	return b
}

// Clone creates a deep copy of the DependencyUpdateBuilder.
func (b *DependencyUpdateBuilder) Clone() testkit.Builder {
	return &DependencyUpdateBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		name:        b.name,
		currentVer:  b.currentVer,
		latestVer:   b.latestVer,
		location:    b.location,
	}
}
