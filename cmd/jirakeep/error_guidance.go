package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"jirakeep/internal/jira"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *jira.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			lines = append(lines, "hint: verify JIRA_USERNAME and JIRA_API_TOKEN; API tokens are managed at id.atlassian.com.")
		case apiErr.Status == http.StatusNotFound:
			lines = append(lines, "hint: check the issue key and that your user can browse the project.")
		case apiErr.Status >= 500:
			lines = append(lines, "hint: Jira returned an internal error; retry once it recovers.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check connectivity or increase JIRAKEEP_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines, "hint: ensure the base URL points at a reachable Jira instance.")
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
