package models

// Theme is the dashboard colour scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Settings holds user preferences for the dashboard
type Settings struct {
	Theme              Theme   `json:"theme"`
	AutoConnect        bool    `json:"autoConnect"`
	ShowSystemMessages bool    `json:"showSystemMessages"`
	MaxTokens          int     `json:"maxTokens"`
	Temperature        float64 `json:"temperature"`
}

// DefaultSettings returns the settings a new session starts with
func DefaultSettings() Settings {
	return Settings{
		Theme:              ThemeDark,
		AutoConnect:        false,
		ShowSystemMessages: true,
		MaxTokens:          4096,
		Temperature:        0.7,
	}
}

// SettingsUpdate is a partial update merged into Settings
type SettingsUpdate struct {
	Theme              *Theme   `json:"theme,omitempty" binding:"omitempty,oneof=dark light"`
	AutoConnect        *bool    `json:"autoConnect,omitempty"`
	ShowSystemMessages *bool    `json:"showSystemMessages,omitempty"`
	MaxTokens          *int     `json:"maxTokens,omitempty" binding:"omitempty,min=1,max=200000"`
	Temperature        *float64 `json:"temperature,omitempty" binding:"omitempty,min=0,max=2"`
}

// Apply merges the update into s and returns the result
func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.AutoConnect != nil {
		s.AutoConnect = *u.AutoConnect
	}
	if u.ShowSystemMessages != nil {
		s.ShowSystemMessages = *u.ShowSystemMessages
	}
	if u.MaxTokens != nil {
		s.MaxTokens = *u.MaxTokens
	}
	if u.Temperature != nil {
		s.Temperature = *u.Temperature
	}
	return s
}

// AppState is the whole dashboard session state.
// It lives in memory for the life of the process and is never persisted.
type AppState struct {
	Servers        []ServerDescriptor `json:"servers"`
	ActiveServerId *string            `json:"activeServerId"`
	Messages       []ChatMessage      `json:"messages"`
	IsProcessing   bool               `json:"isProcessing"`
	Credential     string             `json:"-"`
	Settings       Settings           `json:"settings"`
}

// Clone returns a deep copy of the state
func (s AppState) Clone() AppState {
	out := s
	if s.Servers != nil {
		out.Servers = make([]ServerDescriptor, len(s.Servers))
		for i, server := range s.Servers {
			out.Servers[i] = server.Clone()
		}
	}
	if s.ActiveServerId != nil {
		id := *s.ActiveServerId
		out.ActiveServerId = &id
	}
	if s.Messages != nil {
		out.Messages = make([]ChatMessage, len(s.Messages))
		for i, msg := range s.Messages {
			out.Messages[i] = msg.Clone()
		}
	}
	return out
}
