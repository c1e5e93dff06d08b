package settings

import (
	"errors"
	"fmt"

	"github.com/mrusme/taskflow/store"
	"go.uber.org/zap"
)

type Category string

const (
	CategoryProductivity  Category = "productivity"
	CategoryCommunication Category = "communication"
	CategoryCalendar      Category = "calendar"
)

var ErrUnknownIntegration = errors.New("unknown integration")

type Integration struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	AuthURL     string   `json:"authUrl,omitempty"`
	Connected   bool     `json:"connected"`
}

// Catalog lists the integrations the app knows about, disconnected.
var Catalog = []Integration{
	{ID: "google-calendar", Name: "Google Calendar", Description: "Sync your tasks with Google Calendar", Category: CategoryCalendar, AuthURL: "https://accounts.google.com/o/oauth2/auth"},
	{ID: "outlook", Name: "Outlook", Description: "Connect with your Outlook calendar", Category: CategoryCalendar, AuthURL: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize"},
	{ID: "trello", Name: "Trello", Description: "Import boards and cards from Trello", Category: CategoryProductivity, AuthURL: "https://trello.com/1/authorize"},
	{ID: "slack", Name: "Slack", Description: "Get notifications in your Slack channels", Category: CategoryCommunication, AuthURL: "https://slack.com/oauth/v2/authorize"},
	{ID: "github", Name: "GitHub", Description: "Link tasks to GitHub issues", Category: CategoryProductivity, AuthURL: "https://github.com/login/oauth/authorize"},
	{ID: "google-drive", Name: "Google Drive", Description: "Attach files from Google Drive", Category: CategoryProductivity, AuthURL: "https://accounts.google.com/o/oauth2/auth"},
	{ID: "notion", Name: "Notion", Description: "Sync with your Notion workspace", Category: CategoryProductivity, AuthURL: "https://api.notion.com/v1/oauth/authorize"},
	{ID: "time-doctor", Name: "Time Doctor", Description: "Track time spent on tasks", Category: CategoryProductivity, AuthURL: "https://webapi.timedoctor.com/oauth/authorize"},
}

type connection struct {
	ID        string `json:"id"`
	Connected bool   `json:"connected"`
}

// Integrations returns the catalog with the persisted connection states.
// Filtering by category is optional.
func (s *Settings) Integrations(category Category) []Integration {
	var saved []connection
	if _, err := store.GetJSON(s.st, store.KeyIntegrations, &saved); err != nil {
		s.log.Error("failed to load integrations", zap.Error(err))
	}
	connected := map[string]bool{}
	for _, c := range saved {
		connected[c.ID] = c.Connected
	}

	var out []Integration
	for _, in := range Catalog {
		if category != "" && in.Category != category {
			continue
		}
		in.Connected = connected[in.ID]
		out = append(out, in)
	}
	return out
}

// Connect marks an integration as connected and returns it. The caller
// sends the user to its AuthURL.
func (s *Settings) Connect(id string) (Integration, error) {
	return s.setConnected(id, true)
}

func (s *Settings) Disconnect(id string) (Integration, error) {
	return s.setConnected(id, false)
}

func (s *Settings) setConnected(id string, on bool) (Integration, error) {
	all := s.Integrations("")
	var found *Integration
	conns := make([]connection, 0, len(all))
	for i := range all {
		if all[i].ID == id {
			all[i].Connected = on
			found = &all[i]
		}
		conns = append(conns, connection{ID: all[i].ID, Connected: all[i].Connected})
	}
	if found == nil {
		return Integration{}, fmt.Errorf("%w: %s", ErrUnknownIntegration, id)
	}
	if err := store.SetJSON(s.st, store.KeyIntegrations, conns); err != nil {
		return Integration{}, err
	}
	return *found, nil
}
