package main

import (
	"errors"

	"jirakeep/internal/jira"
	"jirakeep/internal/rota"
)

// Exit codes, one per fatal condition. The non-obvious values (2, 4, 5, 10)
// predate this tool and are kept stable for scripts that wrap it.
const (
	exitConfig          = 1
	exitNotFound        = 2
	exitSprintNotFound  = 4
	exitUnexpectedCount = 5
	exitWriteFailed     = 10
)

func exitCodeFor(err error) int {
	var writeErr *jira.WriteError
	if errors.As(err, &writeErr) {
		return exitWriteFailed
	}
	var startErr *rota.StartSprintNotFoundError
	if errors.As(err, &startErr) {
		return exitSprintNotFound
	}
	var countErr *rota.UnexpectedCountError
	if errors.As(err, &countErr) {
		return exitUnexpectedCount
	}
	if jira.IsNotFound(err) {
		return exitNotFound
	}
	return exitConfig
}
