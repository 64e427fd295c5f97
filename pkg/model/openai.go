package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIConfig wires an openai-go chat-completions client into the Model
// interface. BaseURL supports OpenAI-compatible local servers (Ollama etc.),
// which is how lightweight per-handler models are usually run.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
}

type openaiModel struct {
	client      openaisdk.Client
	model       string
	maxTokens   int
	temperature *float64
}

// NewOpenAI constructs an OpenAI-backed Model.
func NewOpenAI(cfg OpenAIConfig) (Model, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(base, "/")))
	}
	mdl := strings.TrimSpace(cfg.Model)
	if mdl == "" {
		mdl = string(openaisdk.ChatModelGPT4oMini)
	}
	return &openaiModel{
		client:      openaisdk.NewClient(opts...),
		model:       mdl,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (m *openaiModel) Complete(ctx context.Context, req Request) (*Response, error) {
	mdl := m.model
	if trimmed := strings.TrimSpace(req.Model); trimmed != "" {
		mdl = trimmed
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(mdl),
		Messages: toOpenAIMessages(req.Messages, req.System),
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = m.maxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(maxTokens))
	}
	if m.temperature != nil {
		params.Temperature = openaisdk.Float(*m.temperature)
	}
	if req.Temperature != nil {
		params.Temperature = openaisdk.Float(*req.Temperature)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: no completion choices returned")
	}

	choice := resp.Choices[0]
	out := Message{Role: "assistant", Content: choice.Message.Content}
	for _, call := range choice.Message.ToolCalls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      name,
			Arguments: decodeArgumentsJSON(call.Function.Arguments),
		})
	}

	return &Response{
		Message: out,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		StopReason: string(choice.FinishReason),
	}, nil
}

func toOpenAIMessages(msgs []Message, system string) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if trimmed := strings.TrimSpace(system); trimmed != "" {
		out = append(out, openaisdk.SystemMessage(trimmed))
	}
	for _, msg := range msgs {
		switch strings.ToLower(strings.TrimSpace(msg.Role)) {
		case "system":
			out = append(out, openaisdk.SystemMessage(msg.Content))
		case "assistant":
			out = append(out, toOpenAIAssistant(msg))
		case "tool":
			for _, call := range msg.ToolCalls {
				if strings.TrimSpace(call.ID) == "" {
					continue
				}
				out = append(out, openaisdk.ToolMessage(msg.Content, call.ID))
			}
		default:
			out = append(out, openaisdk.UserMessage(msg.Content))
		}
	}
	return out
}

func toOpenAIAssistant(msg Message) openaisdk.ChatCompletionMessageParamUnion {
	assistant := openaisdk.ChatCompletionAssistantMessageParam{}
	if strings.TrimSpace(msg.Content) != "" {
		assistant.Content.OfString = openaisdk.String(msg.Content)
	}
	for _, call := range msg.ToolCalls {
		id := strings.TrimSpace(call.ID)
		name := strings.TrimSpace(call.Name)
		if id == "" || name == "" {
			continue
		}
		args, err := json.Marshal(call.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openaisdk.ChatCompletionMessageToolCallParam{
			ID: id,
			Function: openaisdk.ChatCompletionMessageToolCallFunctionParam{
				Name:      name,
				Arguments: string(args),
			},
		})
	}
	return openaisdk.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func toOpenAITools(defs []ToolDefinition) []openaisdk.ChatCompletionToolParam {
	tools := make([]openaisdk.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			continue
		}
		fn := shared.FunctionDefinitionParam{
			Name:       name,
			Parameters: shared.FunctionParameters(def.Parameters),
		}
		if strings.TrimSpace(def.Description) != "" {
			fn.Description = openaisdk.String(def.Description)
		}
		tools = append(tools, openaisdk.ChatCompletionToolParam{Function: fn})
	}
	return tools
}

func decodeArgumentsJSON(raw string) map[string]any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		return map[string]any{"raw": trimmed}
	}
	return args
}
