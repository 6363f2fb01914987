// Package message defines the conversation items exchanged with a
// Responses-style completion service and the tombstoning history arena the
// run loop keeps them in.
package message

import (
	"encoding/json"
	"strings"
)

// Type tags the variant a Message carries.
type Type string

const (
	TypeMessage            Type = "message"
	TypeFunctionCall       Type = "function_call"
	TypeFunctionCallOutput Type = "function_call_output"
	TypeReasoning          Type = "reasoning"
)

// Role is the author of a message-typed item.
type Role string

const (
	RoleSystem    Role = "system"
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is one typed content fragment (input_text, output_text, summary_text, ...).
type Part struct {
	Type        string          `json:"type"`
	Text        string          `json:"text"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
}

// Message is a single conversation item. Which fields are meaningful depends
// on Type:
//   - message (or empty Type): Role plus Content or Parts
//   - function_call: Name, Arguments, CallID
//   - function_call_output: CallID, Output
//   - reasoning: ID, Summary, EncryptedContent
//
// Sender records the agent that produced the item. It is bookkeeping and is
// stripped before a request is sent.
type Message struct {
	Type             Type
	ID               string
	Role             Role
	Status           string
	Content          string
	Parts            []Part
	Name             string
	Arguments        string
	CallID           string
	Output           string
	Summary          []Part
	EncryptedContent string
	Sender           string
}

// User returns a user-authored text message.
func User(text string) Message { return Message{Role: RoleUser, Content: text} }

// System returns a system text message.
func System(text string) Message { return Message{Role: RoleSystem, Content: text} }

// AssistantText returns an assistant output message with a single output_text part.
func AssistantText(text string) Message {
	return Message{
		Type:  TypeMessage,
		Role:  RoleAssistant,
		Parts: []Part{{Type: "output_text", Text: text}},
	}
}

// FunctionCall returns a model-issued tool call.
func FunctionCall(callID, name, arguments string) Message {
	return Message{Type: TypeFunctionCall, CallID: callID, Name: name, Arguments: arguments}
}

// FunctionCallOutput returns the result of a tool call.
func FunctionCallOutput(callID, output string) Message {
	return Message{Type: TypeFunctionCallOutput, CallID: callID, Output: output}
}

// Reasoning returns a reasoning item with optional summary text.
func Reasoning(id string, summary ...string) Message {
	m := Message{Type: TypeReasoning, ID: id}
	for _, s := range summary {
		m.Summary = append(m.Summary, Part{Type: "summary_text", Text: s})
	}
	return m
}

func (m Message) IsFunctionCall() bool       { return m.Type == TypeFunctionCall }
func (m Message) IsFunctionCallOutput() bool { return m.Type == TypeFunctionCallOutput }
func (m Message) IsReasoning() bool          { return m.Type == TypeReasoning }

// IsUser reports whether the item is a user-authored message.
func (m Message) IsUser() bool {
	return (m.Type == "" || m.Type == TypeMessage) && m.Role == RoleUser
}

// Text returns the plain text of a message-typed item: Content when set,
// otherwise the concatenated text parts.
func (m Message) Text() string {
	if m.Content != "" || len(m.Parts) == 0 {
		return m.Content
	}
	var b strings.Builder
	for _, p := range m.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// Clone returns a copy that shares no slices with m.
func (m Message) Clone() Message {
	if m.Parts != nil {
		m.Parts = append([]Part(nil), m.Parts...)
	}
	if m.Summary != nil {
		m.Summary = append([]Part(nil), m.Summary...)
	}
	return m
}

// WithoutSender returns a copy with the Sender bookkeeping field cleared.
func (m Message) WithoutSender() Message {
	m.Sender = ""
	return m
}

// MarshalJSON encodes the Responses API item shape. Fields required by the
// item type (arguments, output, summary, annotations) are always present.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 8)
	put := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	put("type", string(m.Type))
	put("id", m.ID)
	put("status", m.Status)
	put("sender", m.Sender)

	switch m.Type {
	case TypeFunctionCall:
		put("name", m.Name)
		put("call_id", m.CallID)
		out["arguments"] = m.Arguments
	case TypeFunctionCallOutput:
		put("call_id", m.CallID)
		out["output"] = m.Output
	case TypeReasoning:
		summary := m.Summary
		if summary == nil {
			summary = []Part{}
		}
		out["summary"] = summary
		put("encrypted_content", m.EncryptedContent)
	default:
		put("role", string(m.Role))
		if m.Parts != nil {
			parts := make([]Part, len(m.Parts))
			for i, p := range m.Parts {
				if p.Type == "output_text" && len(p.Annotations) == 0 {
					p.Annotations = json.RawMessage("[]")
				}
				parts[i] = p
			}
			out["content"] = parts
		} else {
			out["content"] = m.Content
		}
	}
	return json.Marshal(out)
}

type wireMessage struct {
	Type             Type            `json:"type"`
	ID               string          `json:"id"`
	Role             Role            `json:"role"`
	Status           string          `json:"status"`
	Content          json.RawMessage `json:"content"`
	Name             string          `json:"name"`
	Arguments        string          `json:"arguments"`
	CallID           string          `json:"call_id"`
	Output           json.RawMessage `json:"output"`
	Summary          []Part          `json:"summary"`
	EncryptedContent string          `json:"encrypted_content"`
	Sender           string          `json:"sender"`
}

// UnmarshalJSON accepts both string and part-list content, and string or
// structured function_call_output payloads.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = Message{
		Type:             w.Type,
		ID:               w.ID,
		Role:             w.Role,
		Status:           w.Status,
		Name:             w.Name,
		Arguments:        w.Arguments,
		CallID:           w.CallID,
		Summary:          w.Summary,
		EncryptedContent: w.EncryptedContent,
		Sender:           w.Sender,
	}
	if len(w.Content) > 0 && string(w.Content) != "null" {
		if w.Content[0] == '"' {
			if err := json.Unmarshal(w.Content, &m.Content); err != nil {
				return err
			}
		} else if err := json.Unmarshal(w.Content, &m.Parts); err != nil {
			return err
		}
	}
	if len(w.Output) > 0 && string(w.Output) != "null" {
		if w.Output[0] == '"' {
			if err := json.Unmarshal(w.Output, &m.Output); err != nil {
				return err
			}
		} else {
			m.Output = string(w.Output)
		}
	}
	return nil
}
