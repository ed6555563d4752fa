// Package reconcile propagates field values from a root issue down its
// recursively discovered child tree.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"jirakeep/internal/jira"
)

// Policy selects how a child's field is reconciled against the root.
type Policy int

const (
	// PolicyUnion sets the child's field to the union of the root's and the
	// child's own values.
	PolicyUnion Policy = iota
	// PolicyOverwrite replaces the child's field with the root's values,
	// dropping anything the root does not carry.
	PolicyOverwrite
)

func (p Policy) String() string {
	if p == PolicyOverwrite {
		return "overwrite"
	}
	return "union"
}

// Field identifies a reconcilable issue field.
type Field string

const (
	FieldComponents Field = "components"
	FieldLabels     Field = "labels"
	FieldVersions   Field = "versions"
)

// orderedFields fixes the field order in plans and output.
var orderedFields = []Field{FieldComponents, FieldLabels, FieldVersions}

// ParseField validates a user-supplied field name.
func ParseField(raw string) (Field, error) {
	switch Field(raw) {
	case FieldComponents, FieldLabels, FieldVersions:
		return Field(raw), nil
	default:
		return "", fmt.Errorf("unknown field %q (expected components, labels, or versions)", raw)
	}
}

// Tracker is the slice of the Jira client the reconciler needs.
type Tracker interface {
	Issue(ctx context.Context, key string) (jira.Issue, error)
	Search(ctx context.Context, jql string, max int) ([]jira.Issue, error)
	UpdateFields(ctx context.Context, key string, fields map[string]any) error
}

// FieldChange is one field's as-is/to-be delta for a child issue. Values
// are name sets; order is normalized for stable output.
type FieldChange struct {
	Field Field    `json:"field"`
	AsIs  []string `json:"as_is"`
	ToBe  []string `json:"to_be"`
}

// Plan collects the field changes for one child issue. Plans are computed
// from a read-only walk and mutate nothing until applied.
type Plan struct {
	Key     string        `json:"key"`
	Summary string        `json:"summary"`
	Changes []FieldChange `json:"changes"`
}

// Reconciler walks an issue's descendants and reconciles configured fields
// against the root issue's values.
type Reconciler struct {
	tracker    Tracker
	maxResults int
}

// New creates a reconciler. maxResults bounds each child query.
func New(tracker Tracker, maxResults int) *Reconciler {
	return &Reconciler{tracker: tracker, maxResults: maxResults}
}

// Plans fetches the root issue, discovers every descendant, and computes
// the per-child reconciliation plan. No mutating call is made.
func (r *Reconciler) Plans(ctx context.Context, rootKey string, policies map[Field]Policy) ([]Plan, error) {
	root, err := r.tracker.Issue(ctx, rootKey)
	if err != nil {
		return nil, fmt.Errorf("fetch root issue %s: %w", rootKey, err)
	}

	children, err := r.descendants(ctx, root)
	if err != nil {
		return nil, err
	}

	plans := make([]Plan, 0, len(children))
	for _, child := range children {
		plans = append(plans, BuildPlan(root, child, policies))
	}
	return plans, nil
}

// Apply applies previously computed plans, one field update per child.
// A failed update aborts immediately; children updated before the failure
// stay updated.
func (r *Reconciler) Apply(ctx context.Context, plans []Plan) error {
	for _, plan := range plans {
		fields := make(map[string]any, len(plan.Changes))
		for _, change := range plan.Changes {
			switch change.Field {
			case FieldLabels:
				fields["labels"] = change.ToBe
			case FieldComponents:
				fields["components"] = namedRefs(change.ToBe)
			case FieldVersions:
				// the update endpoint wants fixVersions, not versions
				fields["fixVersions"] = namedRefs(change.ToBe)
			}
		}
		if err := r.tracker.UpdateFields(ctx, plan.Key, fields); err != nil {
			return err
		}
		slog.Debug("updated child issue", "key", plan.Key, "fields", len(fields))
	}
	return nil
}

// descendants gathers every descendant of root breadth-first, one child
// query per node. The visited set guards against revisiting keys should the
// tracker report inconsistent parent links.
func (r *Reconciler) descendants(ctx context.Context, root jira.Issue) ([]jira.Issue, error) {
	visited := map[string]struct{}{root.Key: {}}
	var all []jira.Issue

	queue := []string{root.Key}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := r.tracker.Search(ctx, fmt.Sprintf("parent = %s", parent), r.maxResults)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", parent, err)
		}
		for _, child := range children {
			if _, seen := visited[child.Key]; seen {
				continue
			}
			visited[child.Key] = struct{}{}
			all = append(all, child)
			queue = append(queue, child.Key)
		}
	}
	return all, nil
}

// BuildPlan computes the reconciliation delta for one child. Fields without
// a policy are left out of the plan entirely.
func BuildPlan(root, child jira.Issue, policies map[Field]Policy) Plan {
	plan := Plan{Key: child.Key, Summary: child.Fields.Summary}
	for _, field := range orderedFields {
		policy, ok := policies[field]
		if !ok {
			continue
		}

		rootValues := fieldNames(root, field)
		toBe := rootValues
		if policy == PolicyUnion {
			toBe = union(rootValues, fieldNames(child, field))
		}

		plan.Changes = append(plan.Changes, FieldChange{
			Field: field,
			AsIs:  sortedCopy(fieldNames(child, field)),
			ToBe:  sortedCopy(toBe),
		})
	}
	return plan
}

// fieldNames projects a field's values onto plain names; components and
// versions compare by name, never by object identity.
func fieldNames(issue jira.Issue, field Field) []string {
	switch field {
	case FieldComponents:
		out := make([]string, 0, len(issue.Fields.Components))
		for _, component := range issue.Fields.Components {
			out = append(out, component.Name)
		}
		return out
	case FieldLabels:
		return issue.Fields.Labels
	case FieldVersions:
		out := make([]string, 0, len(issue.Fields.FixVersions))
		for _, version := range issue.Fields.FixVersions {
			out = append(out, version.Name)
		}
		return out
	}
	return nil
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, values := range [][]string{a, b} {
		for _, value := range values {
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

func sortedCopy(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

func namedRefs(names []string) []map[string]string {
	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{"name": name})
	}
	return out
}
