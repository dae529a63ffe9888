package reasoner_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/reasoner"
	"github.com/felixgeelhaar/nudge/infrastructure/storage/memory"
)

type stubProvider struct {
	reply reasoner.Message
	err   error
	seen  []reasoner.CompletionRequest
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req reasoner.CompletionRequest) (reasoner.CompletionResponse, error) {
	p.seen = append(p.seen, req)
	if p.err != nil {
		return reasoner.CompletionResponse{}, p.err
	}
	return reasoner.CompletionResponse{Message: p.reply}, nil
}

func TestNewLLMEngine_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{Store: memory.NewTranscriptStore()}); !errors.Is(err, reasoner.ErrNilProvider) {
		t.Errorf("error = %v, want ErrNilProvider", err)
	}
	if _, err := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{Provider: &stubProvider{}}); !errors.Is(err, reasoner.ErrNilStore) {
		t.Errorf("error = %v, want ErrNilStore", err)
	}
}

func TestLLMEngine_RunTurn_Acted(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewTranscriptStore(transcript.NewPlain(transcript.RoleUser, "what is go?"))
	registry, _ := memory.NewToolRegistry(
		tool.NewBuilder("web_search").WithDescription("search").MustBuild(),
		tool.NewBuilder("terminate").MustBuild(),
	)

	provider := &stubProvider{reply: reasoner.Message{
		Role: "assistant",
		ToolCalls: []reasoner.ToolCall{{
			ID: "call_1", Type: "function",
			Function: reasoner.FunctionCall{Name: "web_search", Arguments: `{"query":"go"}`},
		}},
	}}

	engine, err := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{
		Provider: provider, Store: store, Registry: registry, SystemPrompt: "sys",
	})
	if err != nil {
		t.Fatal(err)
	}

	turn, acted, err := engine.RunTurn(ctx, "NEXT STEP", nil)
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if !acted || !turn.Acted() {
		t.Error("RunTurn() should report acted")
	}
	if turn.ID == "" {
		t.Error("turn should get an ID")
	}

	req := provider.seen[0]
	if req.Messages[0].Role != "system" || req.Messages[0].Content != "sys" {
		t.Errorf("first message = %+v", req.Messages[0])
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != "user" || last.Content != "NEXT STEP" {
		t.Errorf("last message = %+v, want instruction", last)
	}
	if len(req.Tools) != 2 || req.Tools[0].Function.Name != "web_search" {
		t.Errorf("Tools = %+v", req.Tools)
	}

	n, _ := store.Len(ctx)
	if n != 2 {
		t.Errorf("store Len = %d, want 2 (instruction must not be persisted)", n)
	}
}

func TestLLMEngine_RunTurn_ProviderError(t *testing.T) {
	t.Parallel()

	store := memory.NewTranscriptStore()
	boom := errors.New("boom")
	engine, _ := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{Provider: &stubProvider{err: boom}, Store: store})

	_, acted, err := engine.RunTurn(context.Background(), "x", nil)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
	if acted {
		t.Error("failed turn should not report acted")
	}
	if n, _ := store.Len(context.Background()); n != 0 {
		t.Errorf("failed turn should not be stored, Len = %d", n)
	}
}

func TestLLMEngine_HistoryLimit(t *testing.T) {
	t.Parallel()

	store := memory.NewTranscriptStore(
		transcript.NewPlain(transcript.RoleUser, "1"),
		transcript.NewPlain(transcript.RoleAssistant, "2"),
		transcript.NewPlain(transcript.RoleUser, "3"),
	)
	provider := &stubProvider{reply: reasoner.Message{Role: "assistant", Content: "thinking"}}
	engine, _ := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{Provider: provider, Store: store, History: 2})

	_, acted, err := engine.RunTurn(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if acted {
		t.Error("plain reply should not report acted")
	}
	// system + 2 history turns, empty instruction omitted
	if got := len(provider.seen[0].Messages); got != 3 {
		t.Errorf("Messages = %d, want 3", got)
	}
}

func TestLLMEngine_HistoryWindowSkipsOrphanedToolResults(t *testing.T) {
	t.Parallel()

	call := transcript.ToolCall{ID: "call_1", Name: "web_search", Arguments: json.RawMessage(`{}`)}
	store := memory.NewTranscriptStore(
		transcript.NewPlain(transcript.RoleUser, "goal"),
		transcript.NewActed("", call),
		transcript.NewToolResult("call_1", "results"),
		transcript.NewPlain(transcript.RoleAssistant, "summary"),
	)
	provider := &stubProvider{reply: reasoner.Message{Role: "assistant", Content: "ok"}}
	engine, _ := reasoner.NewLLMEngine(reasoner.LLMEngineConfig{Provider: provider, Store: store, History: 2})

	if _, _, err := engine.RunTurn(context.Background(), "next", nil); err != nil {
		t.Fatal(err)
	}

	messages := provider.seen[0].Messages
	// system + summary + instruction; the tool result lost its call
	if len(messages) != 3 {
		t.Fatalf("Messages = %d, want 3: %+v", len(messages), messages)
	}
	for _, m := range messages {
		if m.Role == "tool" {
			t.Errorf("request starts history with an orphaned tool message: %+v", messages)
		}
	}
	if messages[1].Content != "summary" {
		t.Errorf("first history message = %q, want summary", messages[1].Content)
	}
}

func TestTurnFromMessage(t *testing.T) {
	t.Parallel()

	plain := reasoner.TurnFromMessage(reasoner.Message{Role: "assistant", Content: "hi"})
	if plain.Acted() || plain.Role != transcript.RoleAssistant {
		t.Errorf("plain = %+v", plain)
	}

	acted := reasoner.TurnFromMessage(reasoner.Message{ToolCalls: []reasoner.ToolCall{
		{ID: "a", Function: reasoner.FunctionCall{Name: "x", Arguments: "not json"}},
		{ID: "b", Function: reasoner.FunctionCall{Name: "y"}},
	}})
	calls := acted.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	var s string
	if err := json.Unmarshal(calls[0].Arguments, &s); err != nil || s != "not json" {
		t.Errorf("invalid arguments should be quoted, got %s", calls[0].Arguments)
	}
	if string(calls[1].Arguments) != "{}" {
		t.Errorf("empty arguments = %s, want {}", calls[1].Arguments)
	}
}

func TestMessageFromTurn(t *testing.T) {
	t.Parallel()

	turn := transcript.NewActed("", transcript.ToolCall{ID: "c", Name: "terminate"})
	msg := reasoner.MessageFromTurn(turn)
	if msg.Role != "assistant" || len(msg.ToolCalls) != 1 || msg.ToolCalls[0].Function.Arguments != "{}" {
		t.Errorf("MessageFromTurn() = %+v", msg)
	}

	result := reasoner.MessageFromTurn(transcript.NewToolResult("c", "done"))
	if result.Role != "tool" || result.ToolCallID != "c" {
		t.Errorf("tool result message = %+v", result)
	}
}
