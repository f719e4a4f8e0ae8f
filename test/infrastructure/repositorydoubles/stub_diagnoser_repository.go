//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
	"github.com/rios0rios0/smartupdate/internal/domain/repositories"
)

// StubDiagnoserRepository implements repositories.DiagnoserRepository with
// scripted suspects. Each SuspectPackage call consumes the next entry of
// Suspects; once exhausted the last entry repeats.
type StubDiagnoserRepository struct {
	Suspects []string
	Err      error
	// spy: transcripts received, in order
	Transcripts []string

	next int
}

var _ repositories.DiagnoserRepository = (*StubDiagnoserRepository)(nil)

func (it *StubDiagnoserRepository) SuspectPackage(
	_ context.Context, transcript string, _ []entities.DependencyUpdate,
) (string, error) {
	it.Transcripts = append(it.Transcripts, transcript)
	if it.Err != nil {
		return "", it.Err
	}
	if len(it.Suspects) == 0 {
		return "", nil
	}
	suspect := it.Suspects[it.next]
	if it.next < len(it.Suspects)-1 {
		it.next++
	}
	return suspect, nil
}
