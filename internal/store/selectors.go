package store

import "github.com/imyashkale/mcpdashboard/internal/models"

// FindServer returns the descriptor with the given id
func FindServer(state models.AppState, id string) (models.ServerDescriptor, bool) {
	for _, server := range state.Servers {
		if server.Id == id {
			return server, true
		}
	}
	return models.ServerDescriptor{}, false
}

// ConnectedServers returns servers whose status is connected
func ConnectedServers(state models.AppState) []models.ServerDescriptor {
	connected := make([]models.ServerDescriptor, 0)
	for _, server := range state.Servers {
		if server.Status == models.StatusConnected {
			connected = append(connected, server)
		}
	}
	return connected
}

// TotalTools counts tools across all servers
func TotalTools(state models.AppState) int {
	total := 0
	for _, server := range state.Servers {
		total += len(server.Tools)
	}
	return total
}

// VisibleMessages returns the transcript as the chat view shows it,
// hiding system messages when the user turned them off.
func VisibleMessages(state models.AppState) []models.ChatMessage {
	if state.Settings.ShowSystemMessages {
		return state.Messages
	}
	visible := make([]models.ChatMessage, 0, len(state.Messages))
	for _, msg := range state.Messages {
		if msg.Role != models.RoleSystem {
			visible = append(visible, msg)
		}
	}
	return visible
}

// HasCredential reports whether a credential is set
func HasCredential(state models.AppState) bool {
	return state.Credential != ""
}

// Overview computes the stats panel counters
func Overview(state models.AppState) models.Overview {
	return models.Overview{
		Servers:   len(state.Servers),
		Connected: len(ConnectedServers(state)),
		Tools:     TotalTools(state),
		Messages:  len(state.Messages),
	}
}

// View builds the snapshot sent to the view
func View(state models.AppState) models.StateResponse {
	return models.StateResponse{
		Servers:        state.Servers,
		ActiveServerId: state.ActiveServerId,
		Messages:       VisibleMessages(state),
		IsProcessing:   state.IsProcessing,
		HasCredential:  HasCredential(state),
		Settings:       state.Settings,
		Overview:       Overview(state),
	}
}
