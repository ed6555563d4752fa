package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestClientSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(User{DisplayName: "Jane"})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "jane@example.com", "secret")
	user, err := client.Myself(context.Background())
	if err != nil {
		t.Fatalf("myself: %v", err)
	}
	if user.DisplayName != "Jane" {
		t.Fatalf("expected display name Jane, got %q", user.DisplayName)
	}
	if gotUser != "jane@example.com" || gotPass != "secret" {
		t.Fatalf("expected basic auth credentials, got %q/%q", gotUser, gotPass)
	}
}

func TestSearchPaginates(t *testing.T) {
	total := 120
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/api/2/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		maxResults, _ := strconv.Atoi(r.URL.Query().Get("maxResults"))

		page := searchResponse{StartAt: startAt, MaxResults: maxResults, Total: total}
		for i := startAt; i < total && i < startAt+maxResults; i++ {
			page.Issues = append(page.Issues, Issue{Key: fmt.Sprintf("PROJ-%d", i+1)})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "t")

	t.Run("collects all pages", func(t *testing.T) {
		issues, err := client.Search(context.Background(), "project = PROJ", 500)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(issues) != total {
			t.Fatalf("expected %d issues, got %d", total, len(issues))
		}
		if issues[0].Key != "PROJ-1" || issues[total-1].Key != fmt.Sprintf("PROJ-%d", total) {
			t.Fatalf("unexpected issue order: first %s last %s", issues[0].Key, issues[total-1].Key)
		}
	})

	t.Run("respects max", func(t *testing.T) {
		issues, err := client.Search(context.Background(), "project = PROJ", 70)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(issues) != 70 {
			t.Fatalf("expected 70 issues, got %d", len(issues))
		}
	})
}

func TestIssueNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errorMessages": []string{"Issue does not exist or you do not have permission to see it."},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "t")
	_, err := client.Issue(context.Background(), "PROJ-404")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || len(apiErr.Messages) != 1 {
		t.Fatalf("expected decoded error message, got %v", err)
	}
}

func TestTransitionTo(t *testing.T) {
	var transitioned string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"transitions": [
				{"id": "61", "to": {"name": "Done"}},
				{"id": "71", "to": {"name": "Rejected"}}
			]}`))
		case http.MethodPost:
			var payload struct {
				Transition struct {
					ID string `json:"id"`
				} `json:"transition"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			transitioned = payload.Transition.ID
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "t")

	t.Run("resolves by status name", func(t *testing.T) {
		if err := client.TransitionTo(context.Background(), "PROJ-1", "rejected"); err != nil {
			t.Fatalf("transition: %v", err)
		}
		if transitioned != "71" {
			t.Fatalf("expected transition id 71, got %q", transitioned)
		}
	})

	t.Run("unknown status is a write error", func(t *testing.T) {
		err := client.TransitionTo(context.Background(), "PROJ-1", "Shipped")
		if err == nil {
			t.Fatal("expected error")
		}
		var writeErr *WriteError
		if !errors.As(err, &writeErr) {
			t.Fatalf("expected write error, got %v", err)
		}
	})
}

func TestSprintsPaginates(t *testing.T) {
	pages := [][]Sprint{
		{{ID: 1, Name: "Pulse 1"}, {ID: 2, Name: "Pulse 2"}},
		{{ID: 3, Name: "Pulse 3"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != "active,future" {
			t.Fatalf("unexpected state filter %q", r.URL.Query().Get("state"))
		}
		startAt, _ := strconv.Atoi(r.URL.Query().Get("startAt"))
		resp := sprintsResponse{Values: pages[0], IsLast: false}
		if startAt >= len(pages[0]) {
			resp = sprintsResponse{Values: pages[1], IsLast: true}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "t")
	sprints, err := client.Sprints(context.Background(), 42, "active,future")
	if err != nil {
		t.Fatalf("sprints: %v", err)
	}
	if len(sprints) != 3 {
		t.Fatalf("expected 3 sprints, got %d", len(sprints))
	}
	if sprints[2].Name != "Pulse 3" {
		t.Fatalf("expected Pulse 3 last, got %q", sprints[2].Name)
	}
}

func TestMutationsWrapWriteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": map[string]string{"summary": "Summary is required."},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "u", "t")
	ctx := context.Background()

	calls := []struct {
		name string
		call func() error
	}{
		{"create", func() error {
			_, err := client.CreateIssue(ctx, CreateFields{})
			return err
		}},
		{"update", func() error {
			return client.UpdateFields(ctx, "PROJ-1", map[string]any{"labels": []string{}})
		}},
		{"assign", func() error { return client.Assign(ctx, "PROJ-1", "jane@example.com") }},
		{"comment", func() error { return client.AddComment(ctx, "PROJ-1", "hello") }},
	}

	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("expected error")
			}
			var writeErr *WriteError
			if !errors.As(err, &writeErr) {
				t.Fatalf("expected write error, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected wrapped api error, got %v", err)
			}
		})
	}
}

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}
