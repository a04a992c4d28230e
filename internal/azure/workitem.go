package azure

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// WorkItem is an immutable snapshot of one successful fetch. A newer fetch
// for the same id replaces it wholesale.
type WorkItem struct {
	ID         uint64
	Title      string
	Type       WorkItemType
	State      WorkItemState
	AssignedTo string
	URL        string
	Tags       []string

	// RichTextFields holds the HTML fields present on the item
	// (Description, Acceptance Criteria, ...) in a fixed order.
	RichTextFields []RichTextField
}

// RichTextField is a named HTML field from a work item.
type RichTextField struct {
	Name  string
	Value string
}

// WorkItemType is the normalized work item type.
type WorkItemType string

const (
	TypeBug                WorkItemType = "Bug"
	TypeProductBacklogItem WorkItemType = "Product Backlog Item"
	TypeUserStory          WorkItemType = "User Story"
	TypeTask               WorkItemType = "Task"
	TypeFeature            WorkItemType = "Feature"
	TypeEpic               WorkItemType = "Epic"
)

// ParseWorkItemType normalizes a type string from the API. Unknown types are
// kept verbatim.
func ParseWorkItemType(s string) WorkItemType {
	switch strings.ToLower(s) {
	case "bug":
		return TypeBug
	case "product backlog item":
		return TypeProductBacklogItem
	case "user story":
		return TypeUserStory
	case "task":
		return TypeTask
	case "feature":
		return TypeFeature
	case "epic":
		return TypeEpic
	default:
		return WorkItemType(s)
	}
}

// Icon returns the display icon for the type.
func (t WorkItemType) Icon() string {
	switch t {
	case TypeBug:
		return "🐞"
	case TypeProductBacklogItem:
		return "📘"
	case TypeUserStory:
		return "📖"
	case TypeTask:
		return "📒"
	case TypeFeature:
		return "🏆"
	case TypeEpic:
		return "👑"
	default:
		return "📄"
	}
}

// WorkItemState is the normalized work item state.
type WorkItemState string

const (
	StateNew       WorkItemState = "New"
	StateApproved  WorkItemState = "Approved"
	StateCommitted WorkItemState = "Committed"
	StateActive    WorkItemState = "Active"
	StateResolved  WorkItemState = "Resolved"
	StateClosed    WorkItemState = "Closed"
	StateRemoved   WorkItemState = "Removed"
	StateDone      WorkItemState = "Done"
)

// ParseWorkItemState normalizes a state string from the API. Unknown states
// are kept verbatim.
func ParseWorkItemState(s string) WorkItemState {
	switch strings.ToLower(s) {
	case "new":
		return StateNew
	case "approved":
		return StateApproved
	case "committed":
		return StateCommitted
	case "active":
		return StateActive
	case "resolved":
		return StateResolved
	case "closed":
		return StateClosed
	case "removed":
		return StateRemoved
	case "done":
		return StateDone
	default:
		return WorkItemState(s)
	}
}

// Icon returns the display icon for the state.
func (s WorkItemState) Icon() string {
	switch s {
	case StateNew:
		return "🆕"
	case StateApproved:
		return "👍"
	case StateCommitted:
		return "🎯"
	case StateActive:
		return "🔵"
	case StateResolved:
		return "☑️"
	case StateClosed:
		return "✔️"
	case StateRemoved:
		return "🗑️"
	case StateDone:
		return "✅"
	default:
		return "⚪"
	}
}

// richTextFields are the HTML fields we extract, in display order.
var richTextFields = []struct {
	apiName     string
	displayName string
}{
	{"System.Description", "Description"},
	{"Microsoft.VSTS.Common.AcceptanceCriteria", "Acceptance Criteria"},
	{"Microsoft.VSTS.TCM.ReproSteps", "Repro Steps"},
	{"Microsoft.VSTS.TCM.SystemInfo", "System Info"},
	{"Microsoft.VSTS.Common.Resolution", "Resolution"},
	{"Microsoft.VSTS.Build.FoundIn", "Found In"},
	{"Microsoft.VSTS.Build.IntegrationBuild", "Integration Build"},
}

// workItemResponse mirrors the work item REST payload.
type workItemResponse struct {
	Fields map[string]json.RawMessage `json:"fields"`
	Links  struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

// parseWorkItem builds a WorkItem from a raw API response body.
func parseWorkItem(data []byte, id uint64) (*WorkItem, error) {
	var resp workItemResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse work item %d: %w", id, err)
	}
	if resp.Fields == nil {
		return nil, fmt.Errorf("work item %d: missing 'fields' in response", id)
	}

	title, ok := stringField(resp.Fields, "System.Title")
	if !ok {
		return nil, fmt.Errorf("work item %d: missing 'System.Title' field", id)
	}
	typeStr, ok := stringField(resp.Fields, "System.WorkItemType")
	if !ok {
		return nil, fmt.Errorf("work item %d: missing 'System.WorkItemType' field", id)
	}
	stateStr, ok := stringField(resp.Fields, "System.State")
	if !ok {
		return nil, fmt.Errorf("work item %d: missing 'System.State' field", id)
	}

	wi := &WorkItem{
		ID:    id,
		Title: title,
		Type:  ParseWorkItemType(typeStr),
		State: ParseWorkItemState(stateStr),
		URL:   resp.Links.HTML.Href,
	}

	// AssignedTo is an identity object; we only want the display name.
	if raw, exists := resp.Fields["System.AssignedTo"]; exists {
		var identity struct {
			DisplayName string `json:"displayName"`
		}
		if err := json.Unmarshal(raw, &identity); err == nil {
			wi.AssignedTo = identity.DisplayName
		}
	}

	// Tags come as a single semicolon-separated string.
	if tags, exists := stringField(resp.Fields, "System.Tags"); exists {
		for _, tag := range strings.Split(tags, ";") {
			if tag = strings.TrimSpace(tag); tag != "" {
				wi.Tags = append(wi.Tags, tag)
			}
		}
	}

	for _, f := range richTextFields {
		if value, exists := stringField(resp.Fields, f.apiName); exists && strings.TrimSpace(value) != "" {
			wi.RichTextFields = append(wi.RichTextFields, RichTextField{
				Name:  f.displayName,
				Value: value,
			})
		}
	}

	return wi, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, exists := fields[name]
	if !exists {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
