// Package transcript provides the domain model for the conversation history
// the agent reasons over.
package transcript

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleTool, RoleSystem:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Kind distinguishes turns that only carry text from turns that invoked tools.
type Kind string

const (
	// KindPlain is a turn with text only.
	KindPlain Kind = "plain"
	// KindActed is an assistant turn carrying at least one tool call.
	KindActed Kind = "acted"
)

// ToolCall is a structured tool invocation attached to an acted turn.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Turn is one entry in the transcript.
//
// A turn is either Plain(text) or Acted(text, calls). The call sequence of an
// acted turn is copied on construction and on access, so it cannot change
// once the turn has been appended to a store.
type Turn struct {
	ID         string
	Role       Role
	Content    string
	ToolCallID string
	CreatedAt  time.Time

	kind  Kind
	calls []ToolCall
}

// NewPlain creates a text-only turn.
func NewPlain(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
		kind:      KindPlain,
	}
}

// NewActed creates an assistant turn carrying tool calls.
// With no calls the result is a plain assistant turn.
func NewActed(content string, calls ...ToolCall) Turn {
	if len(calls) == 0 {
		return NewPlain(RoleAssistant, content)
	}
	t := NewPlain(RoleAssistant, content)
	t.kind = KindActed
	t.calls = append([]ToolCall(nil), calls...)
	return t
}

// NewToolResult creates a tool-originated turn answering the given call.
func NewToolResult(callID, content string) Turn {
	t := NewPlain(RoleTool, content)
	t.ToolCallID = callID
	return t
}

// Kind returns the turn variant.
func (t Turn) Kind() Kind {
	if t.kind == "" {
		return KindPlain
	}
	return t.kind
}

// Acted reports whether the turn carries tool calls.
func (t Turn) Acted() bool {
	return t.kind == KindActed && len(t.calls) > 0
}

// ToolCalls returns a copy of the turn's tool calls.
func (t Turn) ToolCalls() []ToolCall {
	if len(t.calls) == 0 {
		return nil
	}
	return append([]ToolCall(nil), t.calls...)
}

// ToolNames returns the names of the invoked tools in call order.
func (t Turn) ToolNames() []string {
	names := make([]string, 0, len(t.calls))
	for _, c := range t.calls {
		names = append(names, c.Name)
	}
	return names
}

// IsIdleAssistant reports whether the turn is an assistant turn that did not act.
func (t Turn) IsIdleAssistant() bool {
	return t.Role == RoleAssistant && !t.Acted()
}

// WithID returns a copy of the turn with the given ID.
func (t Turn) WithID(id string) Turn {
	t.ID = id
	return t
}

// turnJSON is the persisted form of a turn.
type turnJSON struct {
	ID         string     `json:"id,omitempty"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MarshalJSON implements json.Marshaler.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal(turnJSON{
		ID:         t.ID,
		Role:       t.Role,
		Content:    t.Content,
		ToolCalls:  t.calls,
		ToolCallID: t.ToolCallID,
		CreatedAt:  t.CreatedAt,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var raw turnJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var turn Turn
	if raw.Role == RoleAssistant && len(raw.ToolCalls) > 0 {
		turn = NewActed(raw.Content, raw.ToolCalls...)
	} else {
		turn = NewPlain(raw.Role, raw.Content)
	}
	turn.ID = raw.ID
	turn.ToolCallID = raw.ToolCallID
	turn.CreatedAt = raw.CreatedAt

	*t = turn
	return nil
}
