package jira

import (
	"fmt"
	"time"
)

// Issue is a Jira issue as returned by the REST v2 API.
type Issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields Fields `json:"fields"`
}

// Fields is the subset of issue fields this tool reads or patches.
type Fields struct {
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status,omitempty"`
	IssueType   IssueType   `json:"issuetype,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	Components  []Component `json:"components,omitempty"`
	FixVersions []Version   `json:"fixVersions,omitempty"`
	Parent      *IssueRef   `json:"parent,omitempty"`
	Updated     string      `json:"updated,omitempty"`
}

// Status is an issue workflow status.
type Status struct {
	Name string `json:"name"`
}

// IssueType names an issue type ("Task", "Epic", ...).
type IssueType struct {
	Name string `json:"name"`
}

// Component is a project component, identified by name.
type Component struct {
	Name string `json:"name"`
}

// Version is a fix version, identified by name.
type Version struct {
	Name string `json:"name"`
}

// IssueRef points at another issue by id or key.
type IssueRef struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key,omitempty"`
}

// ProjectRef points at a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// User is the authenticated Jira user.
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// CreateFields is the field payload for creating an issue.
type CreateFields struct {
	Project     ProjectRef `json:"project"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	IssueType   IssueType  `json:"issuetype"`
	Parent      *IssueRef  `json:"parent,omitempty"`
}

// CreatedIssue is the response to an issue creation.
type CreatedIssue struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Sprint is a board sprint as returned by the Agile 1.0 API. Dates stay
// strings on the wire; Jira emits several timestamp flavors.
type Sprint struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Start parses the sprint's start instant.
func (s Sprint) Start() (time.Time, error) {
	return parseSprintTime(s.StartDate)
}

// End parses the sprint's end instant.
func (s Sprint) End() (time.Time, error) {
	return parseSprintTime(s.EndDate)
}

type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

type sprintsResponse struct {
	IsLast bool     `json:"isLast"`
	Values []Sprint `json:"values"`
}

type transitionsResponse struct {
	Transitions []struct {
		ID string `json:"id"`
		To struct {
			Name string `json:"name"`
		} `json:"to"`
	} `json:"transitions"`
}

// sprintTimeLayouts covers the timestamp formats Jira Cloud and Server
// emit for sprint dates.
var sprintTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

func parseSprintTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty sprint date")
	}
	for _, layout := range sprintTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported sprint date format %q", raw)
}
