package harmony

import (
	"fmt"
	"strings"

	"github.com/richinex/harmonize/model"
)

// InstructionsHeader prefixes remapped system instructions in the
// developer message.
const InstructionsHeader = "# Instructions"

// ToolsHeader prefixes the embedded tool definitions in the developer
// message.
const ToolsHeader = "# Tools"

// Builder maps extracted call parameters into Harmony conversations.
// It is deterministic and performs no I/O.
type Builder struct {
	model  string
	effort model.ReasoningEffort
}

// NewBuilder creates a builder targeting the given local model and
// reasoning effort.
func NewBuilder(targetModel string, effort model.ReasoningEffort) *Builder {
	return &Builder{model: targetModel, effort: effort}
}

// Build converts a call's parameter mapping and tool schemas into a
// Harmony conversation. Completion-style calls become a two-message
// conversation (identity plus the prompt verbatim); chat-style calls get
// their roles remapped with the system turn becoming developer
// instructions. Placeholder values flow through as display text.
func (b *Builder) Build(params map[string]model.Value, tools []model.ToolSchema, kind model.CallKind) Conversation {
	conv := Conversation{
		Model:  b.model,
		Effort: b.effort,
		Messages: []Message{
			{Role: RoleSystem, Content: SystemContent(b.effort)},
		},
	}

	if kind == model.CallCompletion {
		prompt := ""
		if v, ok := params["prompt"]; ok {
			prompt = v.Text()
		}
		conv.Messages = append(conv.Messages, Message{Role: RoleUser, Content: prompt})
		return conv
	}

	developerIdx := -1
	for _, msg := range sourceMessages(params) {
		switch msg.role {
		case "system":
			// The target format reserves "system" for the identity
			// block; source instructions become a developer turn.
			conv.Messages = append(conv.Messages, Message{
				Role:    RoleDeveloper,
				Content: fmt.Sprintf("%s\n%s", InstructionsHeader, msg.content),
			})
			if developerIdx < 0 {
				developerIdx = len(conv.Messages) - 1
			}
		case "assistant":
			conv.Messages = append(conv.Messages, Message{Role: RoleAssistant, Content: msg.content})
		default:
			conv.Messages = append(conv.Messages, Message{Role: RoleUser, Content: msg.content})
		}
	}

	if len(tools) > 0 {
		if developerIdx < 0 {
			conv.Messages = append(conv.Messages[:1], append([]Message{{
				Role:    RoleDeveloper,
				Content: fmt.Sprintf("%s\n", InstructionsHeader),
			}}, conv.Messages[1:]...)...)
			developerIdx = 1
		}
		conv.Messages[developerIdx].Content += "\n" + ToolsSection(tools)
	}
	return conv
}

type sourceMessage struct {
	role    string
	content string
}

// sourceMessages flattens the extracted "messages" parameter. A
// non-sequence value (a placeholder for a dynamically built list) is
// carried as a single user turn so conversion stays best effort.
func sourceMessages(params map[string]model.Value) []sourceMessage {
	v, ok := params["messages"]
	if !ok {
		return nil
	}
	items, ok := v.Seq()
	if !ok {
		return []sourceMessage{{role: "user", content: v.Text()}}
	}
	var out []sourceMessage
	for _, item := range items {
		m, ok := item.Map()
		if !ok {
			out = append(out, sourceMessage{role: "user", content: item.Text()})
			continue
		}
		msg := sourceMessage{role: "user"}
		if role, ok := m["role"].Str(); ok && role != "" {
			msg.role = role
		}
		msg.content = m["content"].Text()
		out = append(out, msg)
	}
	return out
}

// ToolsSection renders tool schemas as the embedded interface-definition
// block of a developer message. Each property becomes a typed field,
// optional iff absent from the schema's required set, with its
// description as an inline comment.
func ToolsSection(tools []model.ToolSchema) string {
	var b strings.Builder
	b.WriteString(ToolsHeader)
	b.WriteString("\n## functions\nnamespace functions {\n")
	for _, tool := range tools {
		if tool.Description != "" {
			fmt.Fprintf(&b, "// %s\n", tool.Description)
		}
		fmt.Fprintf(&b, "type %s = %s\n\n", tool.Name, toolSignature(tool))
	}
	b.WriteString("} // namespace functions")
	return b.String()
}

func toolSignature(tool model.ToolSchema) string {
	if len(tool.Properties) == 0 {
		return "() => any;"
	}
	var b strings.Builder
	b.WriteString("(_: {\n")
	for _, prop := range tool.Properties {
		if prop.Description != "" {
			fmt.Fprintf(&b, "// %s\n", prop.Description)
		}
		optional := "?"
		if prop.Required {
			optional = ""
		}
		fmt.Fprintf(&b, "%s%s: %s,\n", prop.Name, optional, prop.Type)
	}
	b.WriteString("}) => any;")
	return b.String()
}

// Instructions extracts the instruction text of a developer message,
// stripping the header and any embedded tools block.
func Instructions(developerContent string) string {
	content := developerContent
	if _, after, ok := strings.Cut(content, InstructionsHeader); ok {
		content = after
	}
	if before, _, ok := strings.Cut(content, "\n"+ToolsHeader); ok {
		content = before
	}
	return strings.TrimSpace(content)
}
