package reasoner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/domain/tool"
	"github.com/felixgeelhaar/nudge/domain/transcript"
	"github.com/felixgeelhaar/nudge/infrastructure/logging"
)

// DefaultSystemPrompt is sent ahead of the transcript on every turn.
const DefaultSystemPrompt = `You are an all-capable AI assistant, aimed at solving any task presented by the user. ` +
	`You have various tools at your disposal that you can call upon to efficiently complete complex requests.`

// LLMEngine runs turns against an LLM provider and records the reply in a transcript store.
type LLMEngine struct {
	provider     Provider
	store        transcript.Store
	registry     tool.Registry
	model        string
	temperature  float64
	maxTokens    int
	systemPrompt string
	history      int
}

// LLMEngineConfig configures the LLM engine.
type LLMEngineConfig struct {
	Provider     Provider
	Store        transcript.Store
	Registry     tool.Registry
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	// History caps how many stored turns are sent. Zero sends the whole transcript.
	History int
}

// NewLLMEngine creates a new LLM-backed engine.
func NewLLMEngine(config LLMEngineConfig) (*LLMEngine, error) {
	if config.Provider == nil {
		return nil, ErrNilProvider
	}
	if config.Store == nil {
		return nil, ErrNilStore
	}

	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	return &LLMEngine{
		provider:     config.Provider,
		store:        config.Store,
		registry:     config.Registry,
		model:        config.Model,
		temperature:  config.Temperature,
		maxTokens:    maxTokens,
		systemPrompt: systemPrompt,
		history:      config.History,
	}, nil
}

// RunTurn implements Engine. The instruction is sent as the final user
// message of the request and is not persisted.
func (e *LLMEngine) RunTurn(ctx context.Context, instruction string, _ []transcript.Turn) (transcript.Turn, bool, error) {
	limit := e.history
	if limit <= 0 {
		n, err := e.store.Len(ctx)
		if err != nil {
			return transcript.Turn{}, false, fmt.Errorf("failed to size transcript: %w", err)
		}
		limit = n
	}

	history, err := e.store.Recent(ctx, limit)
	if err != nil {
		return transcript.Turn{}, false, fmt.Errorf("failed to load transcript: %w", err)
	}
	history = trimOrphanedResults(history)

	req := CompletionRequest{
		Model:       e.model,
		Messages:    e.buildMessages(instruction, history),
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Tools:       e.toolDefinitions(),
	}

	logging.Debug().
		Add(logging.Component("reasoner")).
		Add(logging.Str("provider", e.provider.Name())).
		Add(logging.Int("messages", len(req.Messages))).
		Msg("requesting completion")

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return transcript.Turn{}, false, fmt.Errorf("LLM completion failed: %w", err)
	}
	if resp.Error != nil {
		return transcript.Turn{}, false, resp.Error
	}

	turn := TurnFromMessage(resp.Message).WithID(uuid.NewString())
	if err := e.store.Append(ctx, turn); err != nil {
		return transcript.Turn{}, false, fmt.Errorf("failed to record turn: %w", err)
	}

	return turn, turn.Acted(), nil
}

// trimOrphanedResults drops leading tool results whose calling assistant
// turn fell outside the window.
func trimOrphanedResults(history []transcript.Turn) []transcript.Turn {
	for len(history) > 0 && history[0].Role == transcript.RoleTool {
		history = history[1:]
	}
	return history
}

func (e *LLMEngine) buildMessages(instruction string, history []transcript.Turn) []Message {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: e.systemPrompt})
	for _, t := range history {
		messages = append(messages, MessageFromTurn(t))
	}
	if instruction != "" {
		messages = append(messages, Message{Role: "user", Content: instruction})
	}
	return messages
}

func (e *LLMEngine) toolDefinitions() []Tool {
	if e.registry == nil {
		return nil
	}
	tools := e.registry.List()
	defs := make([]Tool, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// MessageFromTurn converts a transcript turn into a chat message.
func MessageFromTurn(t transcript.Turn) Message {
	msg := Message{
		Role:       string(t.Role),
		Content:    t.Content,
		ToolCallID: t.ToolCallID,
	}
	for _, call := range t.ToolCalls() {
		args := string(call.Arguments)
		if args == "" {
			args = "{}"
		}
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: FunctionCall{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}
	return msg
}

// TurnFromMessage converts an assistant reply into a transcript turn.
// Arguments that are not valid JSON are kept as a JSON string.
func TurnFromMessage(msg Message) transcript.Turn {
	if len(msg.ToolCalls) == 0 {
		return transcript.NewPlain(transcript.RoleAssistant, msg.Content)
	}

	calls := make([]transcript.ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		args := json.RawMessage(tc.Function.Arguments)
		if len(args) == 0 {
			args = json.RawMessage(`{}`)
		} else if !json.Valid(args) {
			quoted, _ := json.Marshal(tc.Function.Arguments)
			args = quoted
		}
		calls = append(calls, transcript.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return transcript.NewActed(msg.Content, calls...)
}
