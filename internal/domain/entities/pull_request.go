package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// PullRequest is re-exported from gitforge.
type PullRequest = gitforgeEntities.PullRequest

// PullRequestInput is re-exported from gitforge.
type PullRequestInput = gitforgeEntities.PullRequestInput

// BranchInput is re-exported from gitforge.
type BranchInput = gitforgeEntities.BranchInput

// FileChange is re-exported from gitforge.
type FileChange = gitforgeEntities.FileChange
