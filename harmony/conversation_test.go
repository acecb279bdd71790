package harmony

import (
	"strings"
	"testing"

	"github.com/richinex/harmonize/model"
)

func TestSystemContent(t *testing.T) {
	content := SystemContent(model.ReasoningHigh)

	for _, want := range []string{
		ModelIdentity,
		"Knowledge cutoff: 2024-06",
		"Current date: 2025-06-28",
		"Reasoning: high",
		"# Valid channels: analysis, commentary, final.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("system content missing %q", want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Conversation{Messages: []Message{
		{Role: RoleSystem, Content: SystemContent(model.ReasoningMedium)},
		{Role: RoleUser, Content: "Hi"},
	}}
	if errs := Validate(valid); len(errs) != 0 {
		t.Errorf("valid conversation flagged: %v", errs)
	}

	if errs := Validate(Conversation{}); len(errs) != 1 {
		t.Errorf("empty conversation: %v", errs)
	}

	noSystem := Conversation{Messages: []Message{{Role: RoleUser, Content: "Hi"}}}
	errs := Validate(noSystem)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "system") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing system not reported: %v", errs)
	}

	emptyContent := Conversation{Messages: []Message{{Role: RoleSystem}}}
	if errs := Validate(emptyContent); len(errs) == 0 {
		t.Error("empty content not reported")
	}
}

func TestRenderAndParseRoundTrip(t *testing.T) {
	conv := Conversation{Messages: []Message{
		{Role: RoleSystem, Content: "identity"},
		{Role: RoleDeveloper, Content: "# Instructions\nBe brief."},
		{Role: RoleUser, Content: "What is 2+2?"},
	}}

	rendered := Render(conv)
	if !strings.HasSuffix(rendered, "<|start|>assistant\n") {
		t.Errorf("render must end with an open assistant turn: %q", rendered)
	}

	parsed := ParseResponse(rendered)
	// The trailing open assistant turn has no <|message|> and is skipped.
	if len(parsed) != 3 {
		t.Fatalf("parsed %d messages, want 3", len(parsed))
	}
	for i, msg := range conv.Messages {
		if parsed[i].Role != msg.Role || parsed[i].Content != msg.Content {
			t.Errorf("message %d: got %+v, want %+v", i, parsed[i], msg)
		}
	}
}

func TestParseResponseChannelsAndRecipients(t *testing.T) {
	text := "<|start|>assistant<|channel|>analysis<|message|>thinking<|end|>\n" +
		"<|start|>assistant to=functions.get_weather<|channel|>commentary<|message|>{\"location\": \"Berlin\"}<|end|>\n" +
		"<|start|>assistant<|channel|>final<|message|>It is sunny.<|end|>\n"

	parsed := ParseResponse(text)
	if len(parsed) != 3 {
		t.Fatalf("parsed %d messages, want 3", len(parsed))
	}
	if parsed[0].Channel != ChannelAnalysis {
		t.Errorf("first channel = %q", parsed[0].Channel)
	}
	if parsed[1].Recipient != "functions.get_weather" {
		t.Errorf("recipient = %q", parsed[1].Recipient)
	}

	final, ok := FinalContent(parsed)
	if !ok || final != "It is sunny." {
		t.Errorf("FinalContent = %q, %v", final, ok)
	}

	call, ok := ToolCall(parsed)
	if !ok || call.Recipient != "functions.get_weather" {
		t.Errorf("ToolCall = %+v, %v", call, ok)
	}
}

func TestFinalContentAbsent(t *testing.T) {
	parsed := ParseResponse("<|start|>assistant<|channel|>analysis<|message|>only thinking<|end|>")
	if _, ok := FinalContent(parsed); ok {
		t.Error("FinalContent reported ok with no final message")
	}
	if _, ok := ToolCall(parsed); ok {
		t.Error("ToolCall reported ok with no tool message")
	}
}
