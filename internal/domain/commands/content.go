package commands

import (
	"fmt"
	"strings"

	"github.com/rios0rios0/smartupdate/internal/domain/entities"
)

func commitMessage(categorized entities.CategorizedUpdates) string {
	total := categorized.Total()
	if total == 1 {
		update := firstUpdate(categorized)
		return fmt.Sprintf(
			"chore(deps): update %s from %s to %s",
			update.Name, update.CurrentVersion, update.LatestVersion,
		)
	}
	return fmt.Sprintf("chore(deps): update %d dependencies", total)
}

func pullRequestTitle(categorized entities.CategorizedUpdates) string {
	if categorized.Total() == 1 {
		update := firstUpdate(categorized)
		return fmt.Sprintf("chore(deps): update %s to %s", update.Name, update.LatestVersion)
	}
	return fmt.Sprintf("chore(deps): update %d dependencies", categorized.Total())
}

func pullRequestBody(
	categorized entities.CategorizedUpdates,
	commands entities.BuildCommands,
	rolledBack []string,
) string {
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	sb.WriteString("This PR updates the following dependencies:\n\n")

	writeSection(&sb, "Major", categorized.Major, true)
	writeSection(&sb, "Minor", categorized.Minor, false)
	writeSection(&sb, "Patch", categorized.Patch, false)

	if len(rolledBack) > 0 {
		sb.WriteString("## Rolled back\n\n")
		sb.WriteString("These packages broke the build at their latest version and were kept back:\n\n")
		for _, name := range rolledBack {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Testing\n\n")
	sb.WriteString(fmt.Sprintf("Verified with `%s`", commands.Test))
	if commands.Install != "" {
		sb.WriteString(fmt.Sprintf(" after `%s`", commands.Install))
	}
	sb.WriteString(".\n\n---\n")
	sb.WriteString(fmt.Sprintf("*%d updates applied automatically by smartupdate*\n", categorized.Total()))
	return sb.String()
}

func writeSection(sb *strings.Builder, heading string, updates []entities.DependencyUpdate, flag bool) {
	if len(updates) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("### %s\n\n", heading))
	for _, update := range updates {
		line := fmt.Sprintf("- %s: %s -> %s", update.Name, update.CurrentVersion, update.LatestVersion)
		if flag {
			line += " **(major)**"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

func issueTitle(identity entities.RepositoryIdentity) string {
	return fmt.Sprintf("Automated dependency update failed for %s", identity.String())
}

func issueBody(
	result entities.BuildResult,
	retained []entities.DependencyUpdate,
	rolledBack []string,
) string {
	var sb strings.Builder
	sb.WriteString("The automated dependency update could not produce a passing build.\n\n")

	if len(retained) > 0 {
		sb.WriteString("## Pending updates\n\n")
		for _, update := range retained {
			sb.WriteString(fmt.Sprintf("- %s: %s -> %s\n", update.Name, update.CurrentVersion, update.LatestVersion))
		}
		sb.WriteString("\n")
	}
	if len(rolledBack) > 0 {
		sb.WriteString("## Already rolled back\n\n")
		for _, name := range rolledBack {
			sb.WriteString(fmt.Sprintf("- %s\n", name))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("## Last failing command\n\n`%s`", result.Command))
	if result.TimedOut {
		sb.WriteString(" (timed out)")
	}
	sb.WriteString("\n\n## Transcript\n\n```\n")
	sb.WriteString(result.Transcript())
	sb.WriteString("\n```\n")
	return sb.String()
}

func firstUpdate(categorized entities.CategorizedUpdates) entities.DependencyUpdate {
	for _, bucket := range [][]entities.DependencyUpdate{categorized.Major, categorized.Minor, categorized.Patch} {
		if len(bucket) > 0 {
			return bucket[0]
		}
	}
	return entities.DependencyUpdate{}
}
