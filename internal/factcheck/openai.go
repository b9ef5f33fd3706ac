package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// #region types

const openAISystemPrompt = `You are a fact-checking assistant. Rate the claim with exactly one of:
True, Mostly True, Mixed, Mostly False, False, Unverifiable.
Respond as JSON: {"rating": "...", "explanation": "..."}`

// OpenAI asks a chat model for a rating. Off unless an API key is
// configured.
type OpenAI struct {
	client *openai.Client
	model  string
}

// #endregion types

// #region constructor

// NewOpenAI creates a provider. baseURL may be empty.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "LLM Fact Check" }

// #endregion constructor

// #region lookup

// Lookup returns the model's rating; "Unverifiable" counts as no match.
func (o *OpenAI) Lookup(ctx context.Context, query string) (Verdict, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Fact check this claim: " + query},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, fmt.Errorf("openai completion: no choices")
	}

	var out struct {
		Rating string `json:"rating"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)), &out); err != nil {
		return Verdict{}, fmt.Errorf("parse openai response: %w", err)
	}
	rating := strings.TrimSpace(out.Rating)
	if rating == "" || strings.EqualFold(rating, "unverifiable") {
		return Verdict{}, ErrNoMatch
	}
	return Verdict{Rating: rating, Publisher: o.model}, nil
}

// #endregion lookup
