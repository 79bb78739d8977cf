package models

import "time"

// MessageRole tags who produced a chat message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
	RoleTool      MessageRole = "tool"
)

// MessageMetadata carries optional accounting for a chat message
type MessageMetadata struct {
	Tokens         int      `json:"tokens,omitempty"`
	ProcessingTime int64    `json:"processingTime"` // milliseconds
	ToolsUsed      []string `json:"toolsUsed,omitempty"`
}

// ChatMessage is a single immutable transcript entry.
// ToolName is only meaningful when Role is tool.
type ChatMessage struct {
	Id        string           `json:"id"`
	Role      MessageRole      `json:"type"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	ToolName  string           `json:"toolName,omitempty"`
	ServerId  string           `json:"serverId,omitempty"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the message
func (m ChatMessage) Clone() ChatMessage {
	out := m
	if m.Metadata != nil {
		md := *m.Metadata
		if m.Metadata.ToolsUsed != nil {
			md.ToolsUsed = append([]string(nil), m.Metadata.ToolsUsed...)
		}
		out.Metadata = &md
	}
	return out
}

// WelcomeMessageID is the id of the seeded transcript entry
const WelcomeMessageID = "1"

// WelcomeMessageContent is the fixed text of the seeded transcript entry
const WelcomeMessageContent = "Welcome to MCP Enterprise. Connect to your Model Context Protocol servers to get started."

// NewWelcomeMessage builds the seeded system message
func NewWelcomeMessage(at time.Time) ChatMessage {
	return ChatMessage{
		Id:        WelcomeMessageID,
		Role:      RoleSystem,
		Content:   WelcomeMessageContent,
		Timestamp: at,
	}
}
