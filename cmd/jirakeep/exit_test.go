package main

import (
	"errors"
	"fmt"
	"testing"

	"jirakeep/internal/jira"
	"jirakeep/internal/rota"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "config error",
			err:  errors.New("an issue key is required"),
			want: exitConfig,
		},
		{
			name: "not found",
			err:  fmt.Errorf("fetch root issue MAAS-1: %w", &jira.APIError{Status: 404}),
			want: exitNotFound,
		},
		{
			name: "start sprint not found",
			err:  &rota.StartSprintNotFoundError{Name: "Pulse 99"},
			want: exitSprintNotFound,
		},
		{
			name: "unexpected duty count",
			err:  &rota.UnexpectedCountError{Sprint: "Pulse 7", Count: 3, Slots: 2},
			want: exitUnexpectedCount,
		},
		{
			name: "write failure",
			err:  &jira.WriteError{Err: &jira.APIError{Status: 400}},
			want: exitWriteFailed,
		},
		{
			name: "write failure beats not found",
			err:  &jira.WriteError{Err: &jira.APIError{Status: 404}},
			want: exitWriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Fatalf("expected exit code %d, got %d", tt.want, got)
			}
		})
	}
}
