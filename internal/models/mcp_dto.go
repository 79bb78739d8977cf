package models

import "strings"

// CreateServerRequest represents the add-server form submission
type CreateServerRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Path        string          `json:"path" binding:"required"`
	Type        ServerType      `json:"type" binding:"required,oneof=node python jar docker"`
	Metadata    *ServerMetadata `json:"metadata"`
}

// ToDomain converts the form into a new disconnected ServerDescriptor
func (req *CreateServerRequest) ToDomain(id string) ServerDescriptor {
	server := ServerDescriptor{
		Id:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Path:        strings.TrimSpace(req.Path),
		Type:        req.Type,
		Status:      StatusDisconnected,
		Tools:       []ToolDescriptor{},
	}
	if req.Metadata != nil {
		md := *req.Metadata
		server.Metadata = &md
	}
	return server
}

// SetActiveServerRequest selects the active server; a null id clears it
type SetActiveServerRequest struct {
	Id *string `json:"id"`
}

// ServerListResponse represents the response structure for listing servers
type ServerListResponse struct {
	Servers []ServerDescriptor `json:"servers"`
	Total   int                `json:"total"`
}

// CatalogResponse lists preset server templates
type CatalogResponse struct {
	Servers []CreateServerRequest `json:"servers"`
	Total   int                   `json:"total"`
}

// RemoteServersResponse is the backend's view of connected servers
type RemoteServersResponse struct {
	Servers []string `json:"servers"`
}

// RemoteToolsResponse is the backend's view of available tools
type RemoteToolsResponse struct {
	Tools []ToolDescriptor `json:"tools"`
}
