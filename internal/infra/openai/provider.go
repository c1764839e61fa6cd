package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"course-quiz-service/internal/domain"
)

// Provider generates quiz content through an OpenAI-compatible chat
// completion API. The caller owns the instance; there is no package
// level client.
type Provider struct {
	api   *openai.Client
	model string
}

// New creates a provider client. baseURL may be empty for the default
// endpoint, or point at any OpenAI-compatible gateway.
func New(baseURL, apiKey, model string) *Provider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Provider{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}
}

// Generate performs one blocking completion round trip. Transport
// errors and timeouts surface as errors; a body that parses but lacks
// the required shape surfaces as domain.ErrInvalidQuizShape.
func (p *Provider) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	if req.ResultType != domain.ResultTypeQuizMCQ {
		return domain.GenerationResult{}, fmt.Errorf("unsupported result type %q", req.ResultType)
	}

	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildQuizPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Content},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("content generation call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.GenerationResult{}, fmt.Errorf("content generation returned no choices")
	}

	return parseResult(resp.Choices[0].Message.Content)
}

func parseResult(raw string) (domain.GenerationResult, error) {
	var result domain.GenerationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return domain.GenerationResult{}, fmt.Errorf("parse generation response: %w", domain.ErrInvalidQuizShape)
	}
	return result, nil
}

// buildQuizPrompt instructs the model to return strict JSON matching
// the GenerationResult shape; the module content arrives as the user
// message.
func buildQuizPrompt(req domain.GenerationRequest) string {
	var sb strings.Builder
	sb.WriteString("You are a quiz generator for course content. ")
	sb.WriteString("The user message contains the material of one course module.\n\n")
	sb.WriteString(fmt.Sprintf("Generate exactly %d multiple-choice questions at %s difficulty, ", req.NumQuestions, req.Difficulty))
	sb.WriteString(fmt.Sprintf("each with exactly %d options.\n\n", req.NumOptions))
	sb.WriteString("Respond with ONLY a JSON object (no markdown, no code fences) in this format:\n")
	sb.WriteString(`{"title": "Quiz title", "questions": [{"prompt": "Question text?", "options": ["A", "B", "C", "D"], "correct_answer": 0, "explanation": "Why this option is correct"}]}`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("- correct_answer is the zero-based index of the correct option\n")
	sb.WriteString("- exactly one option per question is correct\n")
	sb.WriteString("- every question must be answerable from the provided material alone\n")
	sb.WriteString("- write questions and options in the language of the material\n")
	sb.WriteString("- return ONLY the JSON object, nothing else\n")
	return sb.String()
}
