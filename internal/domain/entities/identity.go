package entities

import (
	"fmt"
	"strings"
)

// RepositoryIdentity is the normalized (owner, name) pair used as the cache
// key and as the addressing unit for tool-server operations. Normalization
// is case-preserving; the .git suffix and any trailing slash are stripped.
type RepositoryIdentity struct {
	Owner string
	Name  string
}

// ParseRepositoryIdentity derives the identity from an owner/name string, an
// HTTPS URL, or an SSH remote reference.
func ParseRepositoryIdentity(ref string) (RepositoryIdentity, error) {
	cleaned := strings.TrimSpace(ref)
	cleaned = strings.TrimSuffix(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".git")

	// git@host:owner/name becomes owner/name.
	if at := strings.Index(cleaned, "@"); at >= 0 && strings.Contains(cleaned, ":") && !strings.Contains(cleaned, "://") {
		cleaned = cleaned[strings.Index(cleaned, ":")+1:]
	}
	// scheme://host/owner/name becomes host/owner/name.
	if idx := strings.Index(cleaned, "://"); idx >= 0 {
		cleaned = cleaned[idx+3:]
	}

	segments := strings.Split(strings.Trim(cleaned, "/"), "/")
	if len(segments) < 2 {
		return RepositoryIdentity{}, fmt.Errorf("cannot derive owner/name from %q", ref)
	}

	owner := segments[len(segments)-2]
	name := segments[len(segments)-1]
	if owner == "" || name == "" {
		return RepositoryIdentity{}, fmt.Errorf("cannot derive owner/name from %q", ref)
	}

	return RepositoryIdentity{Owner: owner, Name: name}, nil
}

// String renders the identity as owner/name.
func (it RepositoryIdentity) String() string {
	return it.Owner + "/" + it.Name
}

// FileStem renders the identity as a filesystem-safe stem.
func (it RepositoryIdentity) FileStem() string {
	return it.Owner + "_" + it.Name
}
