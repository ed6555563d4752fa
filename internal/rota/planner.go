// Package rota maps a round-robin queue of people onto sprint duty slots
// under an epic.
package rota

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"jirakeep/internal/jira"
)

const (
	// Sprints shorter than this support a single duty slot; everything
	// longer is a standard two-week sprint with two slots.
	standardSprintMinDays = 8

	// Sprints start at midnight; the duty week starts the next morning.
	weekOneOffset = 24 * time.Hour
	weekTwoOffset = 8 * 24 * time.Hour

	sprintStates = "active,future"

	sprintNumberVar = "sprint_number"
)

// SprintName expands a sprint name template for the given sprint number.
// The template references the number as ${sprint_number}.
func SprintName(template string, number int) string {
	return os.Expand(template, func(name string) string {
		if name == sprintNumberVar {
			return strconv.Itoa(number)
		}
		return ""
	})
}

// ValidateTemplate rejects templates that never mention the sprint number;
// expanding one would name the same sprint for every index.
func ValidateTemplate(template string) error {
	if !strings.Contains(template, "${"+sprintNumberVar+"}") {
		return fmt.Errorf("sprint template must contain ${%s}", sprintNumberVar)
	}
	return nil
}

// StartSprintNotFoundError reports that the configured starting sprint is
// not among the board's active or future sprints.
type StartSprintNotFoundError struct {
	Name string
}

func (e *StartSprintNotFoundError) Error() string {
	return fmt.Sprintf("sprint %q is not a current or future sprint", e.Name)
}

// UnexpectedCountError guards against a sprint holding more duty issues
// than it has slots; that points at a wrong starting number or epic.
type UnexpectedCountError struct {
	Sprint string
	Count  int
	Slots  int
}

func (e *UnexpectedCountError) Error() string {
	return fmt.Sprintf("found %d existing duty issues in sprint %q, expected at most %d", e.Count, e.Sprint, e.Slots)
}

// Tracker is the slice of the Jira client the planner needs.
type Tracker interface {
	Issue(ctx context.Context, key string) (jira.Issue, error)
	Search(ctx context.Context, jql string, max int) ([]jira.Issue, error)
	CreateIssue(ctx context.Context, fields jira.CreateFields) (jira.CreatedIssue, error)
	Assign(ctx context.Context, key, assignee string) error
	UpdateFields(ctx context.Context, key string, fields map[string]any) error
	Sprints(ctx context.Context, boardID int, states string) ([]jira.Sprint, error)
}

// Params configures a planner run.
type Params struct {
	Project        string
	BoardID        int
	EpicKey        string
	SprintTemplate string
	SprintStart    int
	Queue          []string
}

// Assignment binds one assignee to one duty slot.
type Assignment struct {
	SprintID   int    `json:"sprint_id"`
	SprintName string `json:"sprint_name"`
	Week       int    `json:"week"`
	StartDate  string `json:"start_date"`
	Assignee   string `json:"assignee"`
	Summary    string `json:"summary"`

	fields jira.CreateFields
}

// RunPlan is the outcome of the read-only planning pass.
type RunPlan struct {
	Epic        jira.Issue   `json:"epic"`
	Assignments []Assignment `json:"assignments"`
	// Skipped lists sprints that already hold all their duty issues.
	Skipped []string `json:"skipped,omitempty"`
	// Unassigned lists queue members left over after the sprints ran out.
	Unassigned []string `json:"unassigned,omitempty"`
}

// Planner schedules duty issues for one rotation type.
type Planner struct {
	tracker    Tracker
	duty       Duty
	maxResults int
}

// New creates a planner for the given duty.
func New(tracker Tracker, duty Duty, maxResults int) *Planner {
	return &Planner{tracker: tracker, duty: duty, maxResults: maxResults}
}

// slot is one assignable week within a sprint.
type slot struct {
	sprint jira.Sprint
	week   int
	start  time.Time
}

// sprintSlots derives the assignable weeks from the sprint's duration.
func sprintSlots(sprint jira.Sprint) ([]slot, error) {
	start, err := sprint.Start()
	if err != nil {
		return nil, fmt.Errorf("sprint %q start date: %w", sprint.Name, err)
	}
	end, err := sprint.End()
	if err != nil {
		return nil, fmt.Errorf("sprint %q end date: %w", sprint.Name, err)
	}

	slots := []slot{{sprint: sprint, week: 1, start: start.Add(weekOneOffset)}}
	if end.Sub(start) >= standardSprintMinDays*24*time.Hour {
		slots = append(slots, slot{sprint: sprint, week: 2, start: start.Add(weekTwoOffset)})
	}
	return slots, nil
}

// Plan resolves the epic and the board's upcoming sprints and maps the
// assignee queue onto open duty slots. Only read calls are made; the plan
// is applied separately.
//
// The scan starts at the sprint named by the template and the starting
// number. From there sprints are consumed in board order; a sprint that
// already holds all its duty issues is skipped, one that holds some gets
// only its remaining slots. Once the queue is exhausted planning stops;
// once the sprints are exhausted the rest of the queue is reported as
// unassigned.
func (p *Planner) Plan(ctx context.Context, params Params) (*RunPlan, error) {
	epic, err := p.tracker.Issue(ctx, params.EpicKey)
	if err != nil {
		return nil, fmt.Errorf("fetch epic %s: %w", params.EpicKey, err)
	}

	sprints, err := p.tracker.Sprints(ctx, params.BoardID, sprintStates)
	if err != nil {
		return nil, fmt.Errorf("list sprints of board %d: %w", params.BoardID, err)
	}

	startName := SprintName(params.SprintTemplate, params.SprintStart)
	startIdx := -1
	for i, sprint := range sprints {
		if sprint.Name == startName {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, &StartSprintNotFoundError{Name: startName}
	}

	plan := &RunPlan{Epic: epic}
	queue := params.Queue

	for _, sprint := range sprints[startIdx:] {
		if len(queue) == 0 {
			break
		}

		slots, err := sprintSlots(sprint)
		if err != nil {
			return nil, err
		}

		existing, err := p.countDutyIssues(ctx, params.Project, epic.Key, sprint)
		if err != nil {
			return nil, err
		}
		if existing > len(slots) {
			return nil, &UnexpectedCountError{Sprint: sprint.Name, Count: existing, Slots: len(slots)}
		}
		if existing == len(slots) {
			slog.Debug("sprint fully populated, skipping", "sprint", sprint.Name, "existing", existing)
			plan.Skipped = append(plan.Skipped, sprint.Name)
			continue
		}

		// existing issues occupy the leading weeks; only the tail is open
		for _, open := range slots[existing:] {
			if len(queue) == 0 {
				break
			}
			assignee := queue[0]
			queue = queue[1:]

			date := open.start.Format("2006-01-02")
			fields := jira.CreateFields{
				Project:     jira.ProjectRef{Key: params.Project},
				Summary:     p.duty.Summary(sprint.Name, open.week, date),
				Description: p.duty.Description(date),
				IssueType:   jira.IssueType{Name: "Task"},
				Parent:      &jira.IssueRef{ID: epic.ID},
			}
			plan.Assignments = append(plan.Assignments, Assignment{
				SprintID:   sprint.ID,
				SprintName: sprint.Name,
				Week:       open.week,
				StartDate:  date,
				Assignee:   assignee,
				Summary:    fields.Summary,
				fields:     fields,
			})
		}
	}

	plan.Unassigned = queue
	return plan, nil
}

// Apply creates, assigns, and schedules every planned issue in order. The
// first write failure aborts the run; issues created before it remain.
func (p *Planner) Apply(ctx context.Context, plan *RunPlan, sprintField string, report func(Assignment, jira.CreatedIssue)) error {
	for _, assignment := range plan.Assignments {
		created, err := p.tracker.CreateIssue(ctx, assignment.fields)
		if err != nil {
			return err
		}
		if err := p.tracker.Assign(ctx, created.Key, assignment.Assignee); err != nil {
			return err
		}
		if err := p.tracker.UpdateFields(ctx, created.Key, map[string]any{sprintField: assignment.SprintID}); err != nil {
			return err
		}
		slog.Debug("created duty issue",
			"key", created.Key,
			"assignee", assignment.Assignee,
			"sprint", assignment.SprintName,
			"week", assignment.Week,
		)
		if report != nil {
			report(assignment, created)
		}
	}
	return nil
}

func (p *Planner) countDutyIssues(ctx context.Context, project, epicKey string, sprint jira.Sprint) (int, error) {
	jql := fmt.Sprintf("project = %q AND sprint = %d AND parent = %s", project, sprint.ID, epicKey)
	issues, err := p.tracker.Search(ctx, jql, p.maxResults)
	if err != nil {
		return 0, fmt.Errorf("count duty issues in sprint %q: %w", sprint.Name, err)
	}
	return len(issues), nil
}
