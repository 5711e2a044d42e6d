package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = `You are a triage assistant for an emergency department.
Given a list of nurse-reported symptoms, return the most plausible urgency
assessments as a JSON array, most urgent first. Each element must have exactly
two string fields: "urgency_level" (one of CRITICAL, HIGH, MODERATE, LOW) and
"reasoning" (one short sentence). Return only the JSON array, no prose.`

// AnthropicSuggester asks an Anthropic model for ranked triage suggestions.
type AnthropicSuggester struct {
	client anthropic.Client
	model  string
}

func NewAnthropicSuggester(apiKey, model string) *AnthropicSuggester {
	return &AnthropicSuggester{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (s *AnthropicSuggester) Suggest(ctx context.Context, symptoms []string, limit int) ([]Suggestion, error) {
	if len(symptoms) == 0 {
		return nil, nil
	}

	userPrompt := fmt.Sprintf("Symptoms: %s\nReturn at most %d suggestions.",
		strings.Join(symptoms, ", "), limit)

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return parseSuggestions(block.Text, limit)
		}
	}
	return nil, fmt.Errorf("no text content in response")
}

// parseSuggestions decodes the model's JSON answer, tolerating markdown code
// fences and surrounding prose, and caps the result at limit.
func parseSuggestions(text string, limit int) ([]Suggestion, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var suggestions []Suggestion
	if err := json.Unmarshal([]byte(text[start:end+1]), &suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}

	out := suggestions[:0]
	for _, sg := range suggestions {
		if sg.UrgencyLevel == "" {
			continue
		}
		out = append(out, sg)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
