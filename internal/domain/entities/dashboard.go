package entities

import (
	"fmt"
	"strings"
)

const (
	// tableSeparator is the alignment row under the dashboard header;
	// rendered rows are spliced in right below it.
	tableSeparator = "|:---:|:---:|:---:|:---:|:---:|:---:|:---:|"

	badgeBaseURL = "https://img.shields.io/github"
)

// RenderDashboard rebuilds the module status table inside a README.
// Everything up to and including the separator row is preserved; the
// rows below it are replaced with one row per module, ordered by level.
// The level column is only printed on the first row of each level, the
// way the original dashboard grouped modules.
//
// If the README has no separator row the content is returned unchanged.
func RenderDashboard(readme, organization string, modules []Module) string {
	lines := strings.Split(readme, "\n")

	sepIdx := -1
	for i, line := range lines {
		if strings.Contains(line, tableSeparator) {
			sepIdx = i
			break
		}
	}
	if sepIdx < 0 {
		return readme
	}

	var out strings.Builder
	for _, line := range lines[:sepIdx+1] {
		out.WriteString(line)
		out.WriteString("\n")
	}

	currentLevel := 0
	for _, module := range modules {
		levelCell := ""
		if module.Level != currentLevel {
			levelCell = fmt.Sprintf("%d", module.Level)
			currentLevel = module.Level
		}
		out.WriteString(dashboardRow(levelCell, organization, module))
		out.WriteString("\n")
	}

	return out.String()
}

// dashboardRow renders a single table row:
// level | name | release badge | build badge | last commit | issues | PRs.
func dashboardRow(levelCell, org string, module Module) string {
	repoURL := fmt.Sprintf("https://github.com/%s/%s", org, module.Name)
	short := shortName(module.Name)

	return fmt.Sprintf(
		"|%s|[%s](%s)| [![GitHub Release](%s/release/%s/%s.svg?label=)](%s/releases)| "+
			"[![Build](%s/workflows/Build/badge.svg)](%s/actions?query=workflow%%3ABuild)| "+
			"[![GitHub Last Commit](%s/last-commit/%s/%s.svg?label=)](%s/commits/master)| "+
			"[![GitHub Issues](%s/issues/%s/%s.svg?label=)](%s/issues)| "+
			"[![GitHub Pull Requests](%s/issues-pr/%s/%s.svg?label=)](%s/pulls)|",
		levelCell,
		short, repoURL,
		badgeBaseURL, org, module.Name, repoURL,
		repoURL, repoURL,
		badgeBaseURL, org, module.Name, repoURL,
		badgeBaseURL, org, module.Name, repoURL,
		badgeBaseURL, org, module.Name, repoURL,
	)
}

// shortName strips the org-wide prefix from a module name for display,
// e.g. "module-platform-io" renders as "io".
func shortName(name string) string {
	if idx := strings.LastIndex(name, "-"); idx >= 0 && idx+1 < len(name) {
		return name[idx+1:]
	}
	return name
}
