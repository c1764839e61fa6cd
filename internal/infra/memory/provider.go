package memory

import (
	"context"
	"fmt"

	"course-quiz-service/internal/domain"
)

// PlaceholderProvider fabricates deterministic quiz content without any
// external call. It stands in for the real generation provider in demo
// mode and in tests that only exercise the orchestration around it.
type PlaceholderProvider struct{}

func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

func (p *PlaceholderProvider) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = 1
	}
	numOptions := req.NumOptions
	if numOptions <= 0 {
		numOptions = 4
	}

	questions := make([]domain.Question, 0, numQuestions)
	for i := 0; i < numQuestions; i++ {
		options := make([]string, 0, numOptions)
		for j := 0; j < numOptions; j++ {
			options = append(options, fmt.Sprintf("Option %c", 'A'+j))
		}
		questions = append(questions, domain.Question{
			Prompt:        fmt.Sprintf("Placeholder question %d (%s)", i+1, req.Difficulty),
			Options:       options,
			CorrectAnswer: i % numOptions,
		})
	}
	return domain.GenerationResult{Questions: questions}, nil
}
