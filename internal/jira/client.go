package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "JIRAKEEP_HTTP_TIMEOUT"

	searchPageSize = 50

	// DefaultMaxResults caps search pagination unless the caller asks for
	// fewer results.
	DefaultMaxResults = 500
)

// Client is an HTTP client for the Jira REST v2 and Agile 1.0 APIs. Every
// request carries basic auth with the configured username and API token.
type Client struct {
	baseURL  string
	username string
	token    string
	http     *http.Client
}

// NewClient creates a new Jira client.
func NewClient(baseURL, username, token string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		token:    token,
		http:     &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Myself returns the authenticated user. Used to verify credentials.
func (c *Client) Myself(ctx context.Context) (User, error) {
	var resp User
	err := c.do(ctx, http.MethodGet, "/rest/api/2/myself", nil, nil, &resp)
	return resp, err
}

// Issue fetches a single issue by key.
func (c *Client) Issue(ctx context.Context, key string) (Issue, error) {
	var resp Issue
	err := c.do(ctx, http.MethodGet, "/rest/api/2/issue/"+url.PathEscape(key), nil, nil, &resp)
	return resp, err
}

// Search runs a JQL query, paginating until max issues are collected or the
// result set is exhausted.
func (c *Client) Search(ctx context.Context, jql string, max int) ([]Issue, error) {
	if max <= 0 {
		max = DefaultMaxResults
	}

	var issues []Issue
	for {
		pageSize := searchPageSize
		if remaining := max - len(issues); remaining < pageSize {
			pageSize = remaining
		}

		query := url.Values{}
		query.Set("jql", jql)
		query.Set("startAt", strconv.Itoa(len(issues)))
		query.Set("maxResults", strconv.Itoa(pageSize))

		var page searchResponse
		if err := c.do(ctx, http.MethodGet, "/rest/api/2/search", query, nil, &page); err != nil {
			return nil, err
		}
		issues = append(issues, page.Issues...)

		if len(page.Issues) == 0 || len(issues) >= max || len(issues) >= page.Total {
			return issues, nil
		}
	}
}

// CreateIssue creates an issue and returns its key and id.
func (c *Client) CreateIssue(ctx context.Context, fields CreateFields) (CreatedIssue, error) {
	var resp CreatedIssue
	payload := map[string]any{"fields": fields}
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue", nil, payload, &resp); err != nil {
		return resp, &WriteError{Err: fmt.Errorf("create issue: %w", err)}
	}
	return resp, nil
}

// UpdateFields patches issue fields. The payload carries only the given
// keys; anything else is left untouched.
func (c *Client) UpdateFields(ctx context.Context, key string, fields map[string]any) error {
	payload := map[string]any{"fields": fields}
	if err := c.do(ctx, http.MethodPut, "/rest/api/2/issue/"+url.PathEscape(key), nil, payload, nil); err != nil {
		return &WriteError{Err: fmt.Errorf("update %s: %w", key, err)}
	}
	return nil
}

// Assign sets the issue assignee.
func (c *Client) Assign(ctx context.Context, key, assignee string) error {
	payload := map[string]string{"name": assignee}
	if err := c.do(ctx, http.MethodPut, "/rest/api/2/issue/"+url.PathEscape(key)+"/assignee", nil, payload, nil); err != nil {
		return &WriteError{Err: fmt.Errorf("assign %s to %s: %w", key, assignee, err)}
	}
	return nil
}

// AddComment adds a comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	payload := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue/"+url.PathEscape(key)+"/comment", nil, payload, nil); err != nil {
		return &WriteError{Err: fmt.Errorf("comment on %s: %w", key, err)}
	}
	return nil
}

// Transitions returns the transitions available on an issue, keyed by the
// lowercased name of the target status.
func (c *Client) Transitions(ctx context.Context, key string) (map[string]string, error) {
	var resp transitionsResponse
	if err := c.do(ctx, http.MethodGet, "/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(resp.Transitions))
	for _, transition := range resp.Transitions {
		out[strings.ToLower(transition.To.Name)] = transition.ID
	}
	return out, nil
}

// TransitionTo moves an issue to the named status. The transition id is
// looked up by target status name first; a status the workflow cannot reach
// from the issue's current state is an error.
func (c *Client) TransitionTo(ctx context.Context, key, status string) error {
	transitions, err := c.Transitions(ctx, key)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("transition %s: %w", key, err)}
	}
	id, ok := transitions[strings.ToLower(status)]
	if !ok {
		return &WriteError{Err: fmt.Errorf("transition %s: no transition to status %q available", key, status)}
	}
	payload := map[string]any{"transition": map[string]string{"id": id}}
	if err := c.do(ctx, http.MethodPost, "/rest/api/2/issue/"+url.PathEscape(key)+"/transitions", nil, payload, nil); err != nil {
		return &WriteError{Err: fmt.Errorf("transition %s to %q: %w", key, status, err)}
	}
	return nil
}

// Sprints lists the sprints of a board filtered by state (comma-separated,
// e.g. "active,future"), in board order.
func (c *Client) Sprints(ctx context.Context, boardID int, states string) ([]Sprint, error) {
	var sprints []Sprint
	for {
		query := url.Values{}
		query.Set("state", states)
		query.Set("startAt", strconv.Itoa(len(sprints)))

		var page sprintsResponse
		path := fmt.Sprintf("/rest/agile/1.0/board/%d/sprint", boardID)
		if err := c.do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
			return nil, err
		}
		sprints = append(sprints, page.Values...)

		if page.IsLast || len(page.Values) == 0 {
			return sprints, nil
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.username, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		apiErr.Messages = append(apiErr.Messages, errResp.ErrorMessages...)
		fields := make([]string, 0, len(errResp.Errors))
		for field, message := range errResp.Errors {
			fields = append(fields, fmt.Sprintf("%s: %s", field, message))
		}
		sort.Strings(fields)
		apiErr.Messages = append(apiErr.Messages, fields...)
	}

	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
