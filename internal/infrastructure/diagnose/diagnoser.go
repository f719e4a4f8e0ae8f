// Package diagnose picks the probable culprit of a failed build from its
// transcript.
package diagnose

import (
	"context"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

// TranscriptDiagnoser matches candidate package names against the build
// transcript and blames the one mentioned most. Empty means no candidate
// was implicated.
type TranscriptDiagnoser struct{}

// NewTranscriptDiagnoser creates the transcript-scanning diagnoser.
func NewTranscriptDiagnoser() *TranscriptDiagnoser { return &TranscriptDiagnoser{} }

// SuspectPackage returns the candidate with the most transcript mentions,
// ties broken by candidate order.
func (it *TranscriptDiagnoser) SuspectPackage(
	_ context.Context,
	transcript string,
	candidates []entities.DependencyUpdate,
) (string, error) {
	lowered := strings.ToLower(transcript)

	suspect := ""
	best := 0
	for _, candidate := range candidates {
		if candidate.Name == "" {
			continue
		}
		count := strings.Count(lowered, strings.ToLower(candidate.Name))
		if count > best {
			best = count
			suspect = candidate.Name
		}
	}

	if suspect != "" {
		logger.Infof("Diagnosed '%s' as the probable cause (%d mentions)", suspect, best)
	}
	return suspect, nil
}
