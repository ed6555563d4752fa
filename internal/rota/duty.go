package rota

import "fmt"

// Duty describes one rotation type. Summary and Description are strategy
// functions so the scheduling logic stays independent of the issue text.
type Duty struct {
	Name        string
	Summary     func(sprintName string, week int, startDate string) string
	Description func(startDate string) string
}

// Vanguard is the support vanguard rotation: one person fields incoming
// support requests per week.
func Vanguard() Duty {
	return Duty{
		Name: "support vanguard",
		Summary: func(sprintName string, week int, startDate string) string {
			return fmt.Sprintf("Support Vanguard for %s week %d (%s)", sprintName, week, startDate)
		},
		Description: func(startDate string) string {
			return fmt.Sprintf("Provide support Vanguard for the week from %s.\n\n"+
				"See https://discourse.maas.io/t/the-support-vanguard/4658 for more details.", startDate)
		},
	}
}

// ShowAndTell is the show and tell rotation: one person presents per week.
func ShowAndTell() Duty {
	return Duty{
		Name: "show and tell",
		Summary: func(sprintName string, week int, startDate string) string {
			return fmt.Sprintf("Show and Tell for %s week %d (%s)", sprintName, week, startDate)
		},
		Description: func(startDate string) string {
			return fmt.Sprintf("It is your turn for a show and tell in the week from %s.\n\n"+
				"See https://discourse.maas.io/t/show-and-tell/4620 for more details.\n\n"+
				"Please add a comment to this issue whether you have a topic you would like to present in public or not.", startDate)
		},
	}
}
