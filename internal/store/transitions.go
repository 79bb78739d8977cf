package store

import (
	"time"

	"github.com/imyashkale/mcpdashboard/internal/models"
)

// Transition maps one state snapshot to the next
type Transition func(models.AppState) models.AppState

// InitialState returns a fresh session: no servers, the seeded welcome
// message and default settings.
func InitialState(now time.Time) models.AppState {
	return models.AppState{
		Servers:  []models.ServerDescriptor{},
		Messages: []models.ChatMessage{models.NewWelcomeMessage(now)},
		Settings: models.DefaultSettings(),
	}
}

// The functions below never modify their input; each works on a clone.

// AddServer appends a descriptor. The caller guarantees a fresh id.
func AddServer(state models.AppState, server models.ServerDescriptor) models.AppState {
	next := state.Clone()
	next.Servers = append(next.Servers, server.Clone())
	return next
}

// UpdateServer merges update into the descriptor with the given id.
// An unknown id leaves the state unchanged.
func UpdateServer(state models.AppState, id string, update models.ServerUpdate) models.AppState {
	next := state.Clone()
	for i := range next.Servers {
		if next.Servers[i].Id == id {
			next.Servers[i] = update.Apply(next.Servers[i])
			return next
		}
	}
	return next
}

// RemoveServer deletes the descriptor with the given id and clears the
// active server if it pointed at it.
func RemoveServer(state models.AppState, id string) models.AppState {
	next := state.Clone()
	kept := next.Servers[:0]
	for _, server := range next.Servers {
		if server.Id != id {
			kept = append(kept, server)
		}
	}
	next.Servers = kept
	if next.ActiveServerId != nil && *next.ActiveServerId == id {
		next.ActiveServerId = nil
	}
	return next
}

// SetActiveServer sets or clears (nil) the active server id
func SetActiveServer(state models.AppState, id *string) models.AppState {
	next := state.Clone()
	if id == nil {
		next.ActiveServerId = nil
		return next
	}
	v := *id
	next.ActiveServerId = &v
	return next
}

// AddMessage appends a message to the transcript
func AddMessage(state models.AppState, msg models.ChatMessage) models.AppState {
	next := state.Clone()
	next.Messages = append(next.Messages, msg.Clone())
	return next
}

// ClearMessages resets the transcript to the single welcome message
func ClearMessages(state models.AppState, seededAt time.Time) models.AppState {
	next := state.Clone()
	next.Messages = []models.ChatMessage{models.NewWelcomeMessage(seededAt)}
	return next
}

// SetProcessing sets the in-flight chat flag
func SetProcessing(state models.AppState, processing bool) models.AppState {
	next := state.Clone()
	next.IsProcessing = processing
	return next
}

// SetCredential stores the credential; "" means unset
func SetCredential(state models.AppState, credential string) models.AppState {
	next := state.Clone()
	next.Credential = credential
	return next
}

// UpdateSettings merges update into the settings
func UpdateSettings(state models.AppState, update models.SettingsUpdate) models.AppState {
	next := state.Clone()
	next.Settings = update.Apply(next.Settings)
	return next
}
