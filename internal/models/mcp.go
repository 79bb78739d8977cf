package models

import "time"

// ServerType identifies how the backend launches an MCP server
type ServerType string

const (
	ServerTypeNode   ServerType = "node"   // node script
	ServerTypePython ServerType = "python" // python script
	ServerTypeJar    ServerType = "jar"    // jar archive
	ServerTypeDocker ServerType = "docker" // container image
)

// ServerTypes lists every accepted server type in display order
var ServerTypes = []ServerType{ServerTypeNode, ServerTypePython, ServerTypeJar, ServerTypeDocker}

// Valid reports whether t is one of the known server types
func (t ServerType) Valid() bool {
	for _, known := range ServerTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ServerStatus is the connection state of a server descriptor.
// Exactly one status holds at any time.
type ServerStatus string

const (
	StatusDisconnected ServerStatus = "disconnected"
	StatusConnecting   ServerStatus = "connecting"
	StatusConnected    ServerStatus = "connected"
	StatusError        ServerStatus = "error"
)

// ServerMetadata carries optional descriptive fields for a server
type ServerMetadata struct {
	Version      string   `json:"version,omitempty" yaml:"version"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities"`
	Author       string   `json:"author,omitempty" yaml:"author"`
}

// ServerDescriptor represents an MCP server registered in the dashboard.
// Tools is non-empty only while Status is connected, and ErrorMessage is
// set only while Status is error.
type ServerDescriptor struct {
	Id            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Path          string           `json:"path"`
	Type          ServerType       `json:"type"`
	Status        ServerStatus     `json:"status"`
	Tools         []ToolDescriptor `json:"tools"`
	LastConnected *time.Time       `json:"lastConnected,omitempty"`
	ErrorMessage  string           `json:"errorMessage,omitempty"`
	Metadata      *ServerMetadata  `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the descriptor
func (s ServerDescriptor) Clone() ServerDescriptor {
	out := s
	out.Tools = cloneTools(s.Tools)
	if s.LastConnected != nil {
		t := *s.LastConnected
		out.LastConnected = &t
	}
	if s.Metadata != nil {
		m := *s.Metadata
		if s.Metadata.Capabilities != nil {
			m.Capabilities = append([]string(nil), s.Metadata.Capabilities...)
		}
		out.Metadata = &m
	}
	return out
}

// ToolNames returns the names of the server's tools in order
func (s ServerDescriptor) ToolNames() []string {
	names := make([]string, 0, len(s.Tools))
	for _, tool := range s.Tools {
		names = append(names, tool.Name)
	}
	return names
}

// InputSchema describes the parameters a tool accepts
type InputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required,omitempty"`
}

// ToolDescriptor represents a tool exposed by a connected MCP server.
// Name is unique within the owning server's tool set.
type ToolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
	ServerId    string      `json:"serverId,omitempty"`
}

func cloneTools(tools []ToolDescriptor) []ToolDescriptor {
	if tools == nil {
		return nil
	}
	out := make([]ToolDescriptor, len(tools))
	for i, tool := range tools {
		out[i] = tool
		if tool.InputSchema.Properties != nil {
			props := make(map[string]interface{}, len(tool.InputSchema.Properties))
			for k, v := range tool.InputSchema.Properties {
				props[k] = v
			}
			out[i].InputSchema.Properties = props
		}
		if tool.InputSchema.Required != nil {
			out[i].InputSchema.Required = append([]string(nil), tool.InputSchema.Required...)
		}
	}
	return out
}

// ServerUpdate is a partial update merged into a ServerDescriptor.
// Nil fields are left untouched; a non-nil Tools slice replaces the tool
// set (an empty slice clears it) and a pointer to "" clears ErrorMessage.
type ServerUpdate struct {
	Name          *string
	Description   *string
	Path          *string
	Type          *ServerType
	Status        *ServerStatus
	Tools         []ToolDescriptor
	LastConnected *time.Time
	ErrorMessage  *string
	Metadata      *ServerMetadata
}

// Apply merges the update into s and returns the result
func (u ServerUpdate) Apply(s ServerDescriptor) ServerDescriptor {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Path != nil {
		s.Path = *u.Path
	}
	if u.Type != nil {
		s.Type = *u.Type
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	if u.Tools != nil {
		s.Tools = cloneTools(u.Tools)
	}
	if u.LastConnected != nil {
		t := *u.LastConnected
		s.LastConnected = &t
	}
	if u.ErrorMessage != nil {
		s.ErrorMessage = *u.ErrorMessage
	}
	if u.Metadata != nil {
		m := *u.Metadata
		s.Metadata = &m
	}
	return s
}
