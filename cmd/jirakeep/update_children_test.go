package main

import (
	"testing"

	"jirakeep/internal/reconcile"
)

func TestBuildPolicies(t *testing.T) {
	policies, err := buildPolicies([]string{"labels", "components"}, []string{"versions"})
	if err != nil {
		t.Fatalf("build policies: %v", err)
	}
	if len(policies) != 3 {
		t.Fatalf("expected 3 policies, got %d", len(policies))
	}
	if policies[reconcile.FieldLabels] != reconcile.PolicyUnion {
		t.Fatal("expected labels to be unioned")
	}
	if policies[reconcile.FieldVersions] != reconcile.PolicyOverwrite {
		t.Fatal("expected versions to be overwritten")
	}
}

func TestBuildPoliciesOverwriteWins(t *testing.T) {
	policies, err := buildPolicies([]string{"labels"}, []string{"labels"})
	if err != nil {
		t.Fatalf("build policies: %v", err)
	}
	if policies[reconcile.FieldLabels] != reconcile.PolicyOverwrite {
		t.Fatal("expected overwrite to win over append for the same field")
	}
}

func TestBuildPoliciesRejectsUnknownField(t *testing.T) {
	if _, err := buildPolicies([]string{"priority"}, nil); err == nil {
		t.Fatal("expected error for unknown append field")
	}
	if _, err := buildPolicies(nil, []string{"status"}); err == nil {
		t.Fatal("expected error for unknown overwrite field")
	}
}
