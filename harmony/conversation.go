// Package harmony builds Harmony-format conversations from extracted
// OpenAI call parameters and renders them back to source text.
//
// The Harmony conversation model differs from the OpenAI chat model in
// three ways this package has to bridge: the "system" role is reserved
// for a synthesized model-identity block, source system instructions move
// to a distinct "developer" role, and responses are routed over named
// channels (analysis, commentary, final) with an optional tool recipient.
package harmony

import (
	"fmt"
	"strings"

	"github.com/richinex/harmonize/model"
)

// Roles of a Harmony conversation.
const (
	RoleSystem    = "system"
	RoleDeveloper = "developer"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Channels a response message can be routed on.
const (
	ChannelAnalysis   = "analysis"
	ChannelCommentary = "commentary"
	ChannelFinal      = "final"
)

// Identity constants baked into every synthesized system message.
const (
	ModelIdentity     = "You are ChatGPT, a large language model trained by OpenAI."
	KnowledgeCutoff   = "2024-06"
	ConversationStart = "2025-06-28"
)

// RequiredChannels is the literal channel list of the system message.
var RequiredChannels = []string{ChannelAnalysis, ChannelCommentary, ChannelFinal}

// Message is a single Harmony conversation turn.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Recipient string `json:"recipient,omitempty"`
	Channel   string `json:"channel,omitempty"`
}

// Conversation is an ordered Harmony message list. Message 0 is always
// the synthesized system identity message.
type Conversation struct {
	Messages []Message             `json:"messages"`
	Model    string                `json:"model"`
	Effort   model.ReasoningEffort `json:"reasoning_effort"`
}

// SystemContent renders the identity block for the given effort level.
func SystemContent(effort model.ReasoningEffort) string {
	return fmt.Sprintf(`%s
Knowledge cutoff: %s
Current date: %s
Reasoning: %s
# Valid channels: %s. Channel must be included for every message.
Calls to these tools must go to the commentary channel: 'functions'.`,
		ModelIdentity, KnowledgeCutoff, ConversationStart, effort,
		strings.Join(RequiredChannels, ", "))
}

// Validate checks the structural invariants a conversation must satisfy
// before code synthesis proceeds. It returns a list of human-readable
// problems; an empty list means the conversation is valid.
func Validate(conv Conversation) []string {
	var errs []string
	if len(conv.Messages) == 0 {
		return []string{"conversation has no messages"}
	}
	hasSystem := false
	for i, msg := range conv.Messages {
		if msg.Role == "" {
			errs = append(errs, fmt.Sprintf("message %d missing role", i))
		}
		if msg.Content == "" {
			errs = append(errs, fmt.Sprintf("message %d missing content", i))
		}
		if msg.Role == RoleSystem {
			hasSystem = true
		}
	}
	if !hasSystem {
		errs = append(errs, "missing required system message")
	}
	return errs
}

// Render produces the Harmony token text for a conversation, ending with
// an open assistant turn so a completion can be sampled.
func Render(conv Conversation) string {
	var b strings.Builder
	for _, msg := range conv.Messages {
		b.WriteString("<|start|>")
		b.WriteString(msg.Role)
		if msg.Recipient != "" {
			b.WriteString(" to=")
			b.WriteString(msg.Recipient)
		}
		if msg.Channel != "" {
			b.WriteString("<|channel|>")
			b.WriteString(msg.Channel)
		}
		b.WriteString("<|message|>")
		b.WriteString(msg.Content)
		b.WriteString("<|end|>\n")
	}
	b.WriteString("<|start|>assistant\n")
	return b.String()
}

// ParseResponse is the inverse of Render over completion text: it
// extracts the messages a model produced, with their channel and
// recipient tags. Malformed segments are skipped.
func ParseResponse(text string) []Message {
	var messages []Message
	for _, segment := range strings.Split(text, "<|start|>")[1:] {
		if end := strings.Index(segment, "<|end|>"); end >= 0 {
			segment = segment[:end]
		}
		header, content, ok := strings.Cut(segment, "<|message|>")
		if !ok {
			continue
		}
		msg := Message{Content: content}
		if h, channel, ok := strings.Cut(header, "<|channel|>"); ok {
			header = h
			msg.Channel = strings.TrimSpace(channel)
		}
		if role, recipient, ok := strings.Cut(header, " to="); ok {
			msg.Role = strings.TrimSpace(role)
			msg.Recipient = strings.TrimSpace(recipient)
		} else {
			msg.Role = strings.TrimSpace(header)
		}
		if msg.Role == "" {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// FinalContent returns the content of the first final-channel message,
// or ok=false when generation produced none.
func FinalContent(messages []Message) (string, bool) {
	for _, msg := range messages {
		if msg.Channel == ChannelFinal {
			return msg.Content, true
		}
	}
	return "", false
}

// ToolCall returns the first commentary-channel message carrying a
// non-empty recipient, which is how Harmony routes a tool invocation.
func ToolCall(messages []Message) (Message, bool) {
	for _, msg := range messages {
		if msg.Channel == ChannelCommentary && msg.Recipient != "" {
			return msg, true
		}
	}
	return Message{}, false
}
