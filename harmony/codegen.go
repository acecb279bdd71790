package harmony

import (
	"fmt"
	"sort"
	"strings"

	"github.com/richinex/harmonize/model"
)

// DefaultMaxToolTurns bounds the generated tool-call continuation loop.
// The upstream protocol leaves the loop unbounded; a tool call that
// never resolves to a final-channel message would otherwise spin
// forever, so the generated code fails closed after this many turns.
const DefaultMaxToolTurns = 8

// Codegen renders a built conversation back into runnable Python source
// implementing the call against a local Harmony backend.
type Codegen struct {
	Model        string
	Backend      string
	Effort       model.ReasoningEffort
	MaxToolTurns int
}

// NewCodegen creates a synthesizer for the given target model and
// backend identifiers.
func NewCodegen(targetModel, backend string, effort model.ReasoningEffort) *Codegen {
	return &Codegen{
		Model:        targetModel,
		Backend:      backend,
		Effort:       effort,
		MaxToolTurns: DefaultMaxToolTurns,
	}
}

// fluentCall is one link of a chained builder expression in the
// generated code. The internal representation is a plain ordered list;
// only the rendered text looks fluent.
type fluentCall struct {
	method string
	arg    string
}

func renderFluent(receiver string, calls []fluentCall) string {
	var b strings.Builder
	b.WriteString("(\n    ")
	b.WriteString(receiver)
	for _, call := range calls {
		fmt.Fprintf(&b, "\n    .%s(%s)", call.method, call.arg)
	}
	b.WriteString("\n)")
	return b.String()
}

// Generate renders the full converted call for a validated conversation.
// Tool-bearing records additionally get the bounded continuation loop.
func (g *Codegen) Generate(conv Conversation, rec model.CallRecord) string {
	var b strings.Builder

	b.WriteString("# Converted from an OpenAI API call to the Harmony format.\n")
	b.WriteString(g.imports(len(rec.Tools) > 0))
	b.WriteString("\n\nencoding = load_harmony_encoding(HarmonyEncodingName.HARMONY_GPT_OSS)\n")

	b.WriteString("\nsystem_content = ")
	b.WriteString(renderFluent("SystemContent.new()", g.systemCalls()))
	b.WriteString("\n")

	if dev, ok := developerMessage(conv); ok {
		b.WriteString("\ndeveloper_content = ")
		b.WriteString(renderFluent("DeveloperContent.new()", g.developerCalls(dev, rec.Tools)))
		b.WriteString("\n")
	}

	b.WriteString("\nconversation = Conversation.from_messages([\n")
	for _, msg := range conv.Messages {
		b.WriteString("    ")
		b.WriteString(messageExpr(msg))
		b.WriteString(",\n")
	}
	b.WriteString("])\n")

	b.WriteString("\ntokens = encoding.render_conversation_for_completion(conversation, Role.ASSISTANT)\n")
	fmt.Fprintf(&b, "\ninference = LocalInference(model=%q, backend=%q)\n", g.Model, g.Backend)
	b.WriteString("response = inference.generate_with_tokens(tokens)\n")
	b.WriteString("\nparsed = encoding.parse_messages_from_completion_tokens(response, Role.ASSISTANT)\n")

	if len(rec.Tools) > 0 {
		b.WriteString(g.continuationLoop())
	}

	b.WriteString(`
final_response = None
for msg in parsed:
    if msg.channel == "final":
        final_response = msg.content
        break

print(final_response or "No final response generated")
`)
	return b.String()
}

func (g *Codegen) imports(withTools bool) string {
	symbols := []string{
		"Conversation",
		"DeveloperContent",
		"HarmonyEncodingName",
		"Message",
		"ReasoningEffort",
		"Role",
		"SystemContent",
		"load_harmony_encoding",
	}
	if withTools {
		symbols = append(symbols, "Author", "ToolDescription")
	}
	sort.Strings(symbols)
	var b strings.Builder
	b.WriteString("from openai_harmony import (\n")
	for _, s := range symbols {
		fmt.Fprintf(&b, "    %s,\n", s)
	}
	b.WriteString(")\nfrom harmonize.inference import LocalInference")
	return b.String()
}

func (g *Codegen) systemCalls() []fluentCall {
	return []fluentCall{
		{"with_model_identity", pyString(ModelIdentity)},
		{"with_reasoning_effort", "ReasoningEffort." + strings.ToUpper(string(g.Effort))},
		{"with_conversation_start_date", pyString(ConversationStart)},
		{"with_knowledge_cutoff", pyString(KnowledgeCutoff)},
		{"with_required_channels", `["analysis", "commentary", "final"]`},
	}
}

func (g *Codegen) developerCalls(dev Message, tools []model.ToolSchema) []fluentCall {
	calls := []fluentCall{
		{"with_instructions", pyTripleString(Instructions(dev.Content))},
	}
	if len(tools) > 0 {
		calls = append(calls, fluentCall{"with_function_tools", toolDescriptions(tools)})
	}
	return calls
}

// toolDescriptions renders the tool schema list as ToolDescription
// constructor calls with their JSON-Schema parameter objects.
func toolDescriptions(tools []model.ToolSchema) string {
	var b strings.Builder
	b.WriteString("[\n")
	for _, tool := range tools {
		fmt.Fprintf(&b, "        ToolDescription.new(\n            %s,\n            %s,\n            parameters=%s,\n        ),\n",
			pyString(tool.Name), pyString(tool.Description), parameterSchema(tool))
	}
	b.WriteString("    ]")
	return b.String()
}

// parameterSchema renders a tool's parameter object as a Python dict
// literal in JSON-Schema shape.
func parameterSchema(tool model.ToolSchema) string {
	var props []string
	var required []string
	for _, p := range tool.Properties {
		fields := fmt.Sprintf("%s: {%s: %s", pyString(p.Name), pyString("type"), pyString(p.Type))
		if p.Description != "" {
			fields += fmt.Sprintf(", %s: %s", pyString("description"), pyString(p.Description))
		}
		props = append(props, fields+"}")
		if p.Required {
			required = append(required, pyString(p.Name))
		}
	}
	return fmt.Sprintf(`{"type": "object", "properties": {%s}, "required": [%s]}`,
		strings.Join(props, ", "), strings.Join(required, ", "))
}

// messageExpr renders one conversation turn as a Message constructor.
func messageExpr(msg Message) string {
	switch msg.Role {
	case RoleSystem:
		return "Message.from_role_and_content(Role.SYSTEM, system_content)"
	case RoleDeveloper:
		return "Message.from_role_and_content(Role.DEVELOPER, developer_content)"
	case RoleAssistant:
		return fmt.Sprintf("Message.from_role_and_content(Role.ASSISTANT, %s)", pyTripleString(msg.Content))
	default:
		return fmt.Sprintf("Message.from_role_and_content(Role.USER, %s)", pyTripleString(msg.Content))
	}
}

// continuationLoop emits the multi-turn tool protocol: while the model
// routes a commentary message at a tool, execute it through the
// externally supplied execute_tool hook, append the result as a tool
// turn, and re-generate. Bounded: exceeding the turn budget raises
// instead of spinning.
func (g *Codegen) continuationLoop() string {
	turns := g.MaxToolTurns
	if turns <= 0 {
		turns = DefaultMaxToolTurns
	}
	return fmt.Sprintf(`
# execute_tool(name, json_args) must be supplied by the host application.
for _ in range(%d):
    tool_call = next(
        (m for m in parsed if m.channel == "commentary" and m.recipient),
        None,
    )
    if tool_call is None:
        break
    tool_result = execute_tool(tool_call.recipient, tool_call.content)
    conversation.add_message(
        Message.from_author_and_content(
            Author.new(Role.TOOL, tool_call.recipient),
            tool_result,
        ).with_recipient("assistant").with_channel("commentary")
    )
    tokens = encoding.render_conversation_for_completion(conversation, Role.ASSISTANT)
    response = inference.generate_with_tokens(tokens)
    parsed = encoding.parse_messages_from_completion_tokens(response, Role.ASSISTANT)
else:
    raise RuntimeError("tool call loop exhausted after %d turns without a final response")
`, turns, turns)
}

// developerMessage returns the first developer turn, if any.
func developerMessage(conv Conversation) (Message, bool) {
	for _, msg := range conv.Messages {
		if msg.Role == RoleDeveloper {
			return msg, true
		}
	}
	return Message{}, false
}

// pyString renders s as a double-quoted Python string literal.
func pyString(s string) string {
	return fmt.Sprintf("%q", s)
}

// pyTripleString renders s as a triple-quoted Python string literal.
// Every backslash and double quote is escaped: a bare trailing quote or
// backslash would otherwise run into the closing delimiter and leave
// the literal unterminated.
func pyTripleString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"""` + s + `"""`
}
