package domain

import "fmt"

// Action identifies a user-initiated operation. The identifier is attached to
// the control that triggers it, so dispatch never depends on visible labels.
type Action string

const (
	ActionCreateCampaign Action = "create-campaign"
	ActionUploadResume   Action = "upload-resume"
	ActionFindJobs       Action = "find-jobs"
	ActionOpenSettings   Action = "open-settings"
)

// Actions lists every action in the order the dashboard shows them.
var Actions = []Action{
	ActionCreateCampaign,
	ActionUploadResume,
	ActionFindJobs,
	ActionOpenSettings,
}

// ParseAction converts an identifier into an Action.
func ParseAction(id string) (Action, error) {
	for _, a := range Actions {
		if string(a) == id {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, id)
}

// Label is the default button caption for the action.
func (a Action) Label() string {
	switch a {
	case ActionCreateCampaign:
		return "New Campaign"
	case ActionUploadResume:
		return "Upload Resume"
	case ActionFindJobs:
		return "Find Jobs"
	case ActionOpenSettings:
		return "Settings"
	}
	return string(a)
}
