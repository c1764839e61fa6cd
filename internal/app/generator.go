package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"course-quiz-service/internal/domain"
)

// Provider is the external content generation service. A timeout or
// transport failure surfaces as an error; a malformed body surfaces as
// domain.ErrInvalidQuizShape during validation. Neither is retried.
type Provider interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// Locker serializes the check-delete-create window per course module so
// two concurrent overwrites cannot both leave an active quiz behind.
type Locker interface {
	// Lock blocks until the key is held or ctx is done, and returns
	// the release function for the acquired key.
	Lock(ctx context.Context, key string) (func(), error)
}

// GenerateOptions tune a single module generation.
type GenerateOptions struct {
	NumQuestions int
	Difficulty   string
	Overwrite    bool
}

const (
	DefaultNumQuestions = 5
	DefaultDifficulty   = "medium"

	generationNumOptions  = 4
	generationMaxTokens   = 2000
	generationTemperature = 0.7
	minutesPerQuestion    = 2
)

// BatchRequest asks for quiz generation across a course. An empty
// ModuleCode targets every module of the course.
type BatchRequest struct {
	CourseID     string `json:"course_id"`
	ModuleCode   string `json:"module_code,omitempty"`
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty"`
	Overwrite    bool   `json:"overwrite"`
}

// BatchResult reports a batch generation outcome. Success is false only
// when every module errored: a fully skipped batch is still a success.
type BatchResult struct {
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Generated []domain.Quiz `json:"generated_quizzes"`
	Skipped   []string      `json:"skipped_modules"`
	Errors    []string      `json:"errors"`
}

// Progress statuses published while a batch runs.
const (
	ProgressGenerated = "generated"
	ProgressSkipped   = "skipped"
	ProgressError     = "error"
)

// ProgressEvent is one per-module outcome in a running generation.
type ProgressEvent struct {
	CourseID   string `json:"course_id"`
	ModuleCode string `json:"module_code"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
}

// Generator drives quiz generation: it aggregates module content,
// applies the skip/overwrite policy under a per-module lock, invokes the
// provider and persists validated output.
type Generator struct {
	aggregator *ContentAggregator
	quizzes    *QuizService
	provider   Provider
	locks      Locker

	defaultNumQuestions int
	defaultDifficulty   string

	mu          sync.Mutex
	subscribers map[string]map[chan ProgressEvent]struct{}
}

func NewGenerator(aggregator *ContentAggregator, quizzes *QuizService, provider Provider, locks Locker) *Generator {
	return &Generator{
		aggregator:          aggregator,
		quizzes:             quizzes,
		provider:            provider,
		locks:               locks,
		defaultNumQuestions: DefaultNumQuestions,
		defaultDifficulty:   DefaultDifficulty,
		subscribers:         make(map[string]map[chan ProgressEvent]struct{}),
	}
}

// ConfigureDefaults overrides the fallback question count and
// difficulty applied when a request leaves them unset. Zero or empty
// arguments keep the current value.
func (g *Generator) ConfigureDefaults(numQuestions int, difficulty string) {
	if numQuestions > 0 {
		g.defaultNumQuestions = numQuestions
	}
	if difficulty != "" {
		g.defaultDifficulty = difficulty
	}
}

func (g *Generator) applyDefaults(opts GenerateOptions) GenerateOptions {
	if opts.NumQuestions <= 0 {
		opts.NumQuestions = g.defaultNumQuestions
	}
	if opts.Difficulty == "" {
		opts.Difficulty = g.defaultDifficulty
	}
	return opts
}

// GenerateForModule generates (or regenerates) the quiz for a single
// module. It returns (nil, nil) when an active quiz already exists and
// overwrite was not requested. An unresolvable course or module is a
// hard failure; use GenerateForCourse to target every module.
func (g *Generator) GenerateForModule(ctx context.Context, courseID, moduleCode string, opts GenerateOptions) (*domain.Quiz, error) {
	if moduleCode == "" {
		return nil, domain.ErrModuleNotFound
	}
	infos, err := g.aggregator.Aggregate(ctx, courseID, moduleCode)
	if err != nil {
		return nil, err
	}
	quiz, skipped, err := g.generateModule(ctx, infos[0], opts)
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, nil
	}
	return &quiz, nil
}

// GenerateForCourse runs generation for one module or for every module
// of the course. Modules are processed sequentially and independently:
// one module's failure is recorded and the batch moves on.
func (g *Generator) GenerateForCourse(ctx context.Context, req BatchRequest) (BatchResult, error) {
	opts := GenerateOptions{
		NumQuestions: req.NumQuestions,
		Difficulty:   req.Difficulty,
		Overwrite:    req.Overwrite,
	}

	infos, err := g.aggregator.Aggregate(ctx, req.CourseID, req.ModuleCode)
	if err != nil {
		return BatchResult{Message: "Course or module not found"}, err
	}

	result := BatchResult{
		Success:   true,
		Generated: []domain.Quiz{},
		Skipped:   []string{},
		Errors:    []string{},
	}

	for _, info := range infos {
		if info.ModuleCode == "" {
			continue
		}
		quiz, skipped, err := g.generateModule(ctx, info, opts)
		switch {
		case err != nil:
			log.Printf("generate quiz for module %s: %v", info.ModuleCode, err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to generate quiz for module %s: %v", info.ModuleCode, err))
			g.publish(ProgressEvent{CourseID: req.CourseID, ModuleCode: info.ModuleCode, Status: ProgressError, Detail: err.Error()})
		case skipped:
			result.Skipped = append(result.Skipped, info.ModuleCode)
			g.publish(ProgressEvent{CourseID: req.CourseID, ModuleCode: info.ModuleCode, Status: ProgressSkipped})
		default:
			result.Generated = append(result.Generated, quiz)
			g.publish(ProgressEvent{CourseID: req.CourseID, ModuleCode: info.ModuleCode, Status: ProgressGenerated, Detail: quiz.ID})
		}
	}

	result.Message = batchMessage(req.ModuleCode != "", len(result.Generated), len(result.Skipped))
	if len(result.Generated) == 0 && len(result.Skipped) == 0 {
		result.Success = false
	}
	return result, nil
}

// generateModule runs the per-module pipeline under the module lock:
// check existing, skip or overwrite, call the provider, persist.
func (g *Generator) generateModule(ctx context.Context, info domain.ModuleContent, opts GenerateOptions) (domain.Quiz, bool, error) {
	opts = g.applyDefaults(opts)
	unlock, err := g.locks.Lock(ctx, lockKey(info.CourseID, info.ModuleCode))
	if err != nil {
		return domain.Quiz{}, false, fmt.Errorf("acquire generation lock: %w", err)
	}
	defer unlock()

	existing, err := g.quizzes.ListByCourse(ctx, info.CourseID, info.ModuleCode)
	if err != nil {
		return domain.Quiz{}, false, err
	}
	// The skip check runs before any provider call: skipping must not
	// cost a generation round trip.
	if len(existing) > 0 && !opts.Overwrite {
		return domain.Quiz{}, true, nil
	}
	for _, old := range existing {
		if err := g.quizzes.SoftDelete(ctx, old.ID); err != nil {
			return domain.Quiz{}, false, err
		}
	}

	generated, err := g.provider.Generate(ctx, domain.GenerationRequest{
		Content:      generationContent(info),
		ResultType:   domain.ResultTypeQuizMCQ,
		NumQuestions: opts.NumQuestions,
		Difficulty:   opts.Difficulty,
		NumOptions:   generationNumOptions,
		MaxTokens:    generationMaxTokens,
		Temperature:  generationTemperature,
	})
	if err != nil {
		return domain.Quiz{}, false, err
	}
	if err := validateResult(generated); err != nil {
		return domain.Quiz{}, false, err
	}

	title := generated.Title
	if title == "" {
		title = "Quiz: " + info.ModuleTitle
	}
	quiz, err := g.quizzes.Create(ctx, QuizDraft{
		CourseID:             info.CourseID,
		ModuleCode:           info.ModuleCode,
		Title:                title,
		Description:          "Auto-generated quiz for module: " + info.ModuleTitle,
		Difficulty:           opts.Difficulty,
		Questions:            generated.Questions,
		EstimatedTimeMinutes: opts.NumQuestions * minutesPerQuestion,
		GeneratedByAI:        true,
	})
	if err != nil {
		return domain.Quiz{}, false, err
	}
	return quiz, false, nil
}

// SubscribeProgress returns a channel receiving per-module outcomes for
// batches on the given course. The caller must invoke the returned
// cancel function to avoid leaks.
func (g *Generator) SubscribeProgress(courseID string) (<-chan ProgressEvent, func()) {
	ch := make(chan ProgressEvent, 16)

	g.mu.Lock()
	subs, ok := g.subscribers[courseID]
	if !ok {
		subs = make(map[chan ProgressEvent]struct{})
		g.subscribers[courseID] = subs
	}
	subs[ch] = struct{}{}
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if subs, ok := g.subscribers[courseID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(g.subscribers, courseID)
			}
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Generator) publish(event ProgressEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for ch := range g.subscribers[event.CourseID] {
		select {
		case ch <- event:
		default:
			// Drop the oldest event rather than block the batch on a
			// slow subscriber.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// generationContent wraps the aggregated blob with the module title so
// the provider sees what the content belongs to.
func generationContent(info domain.ModuleContent) string {
	title := info.ModuleTitle
	if title == "" {
		title = "Module " + info.ModuleCode
	}
	return "Module: " + title + "\n\nContent:\n" + info.AssetsContent
}

// validateResult enforces the minimal shape the orchestrator needs: a
// non-empty question list where every question has options and an
// in-range correct answer.
func validateResult(result domain.GenerationResult) error {
	if len(result.Questions) == 0 {
		return domain.ErrInvalidQuizShape
	}
	for _, q := range result.Questions {
		if q.Prompt == "" || len(q.Options) == 0 {
			return domain.ErrInvalidQuizShape
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return domain.ErrInvalidQuizShape
		}
	}
	return nil
}

func batchMessage(singleModule bool, generated, skipped int) string {
	if singleModule {
		switch {
		case generated > 0:
			return "Quiz generated successfully"
		case skipped > 0:
			return "Quiz already exists for this module. Use overwrite=true to regenerate."
		default:
			return "No quizzes were generated"
		}
	}
	switch {
	case generated > 0 && skipped > 0:
		return fmt.Sprintf("Generated %d quizzes, skipped %d existing quizzes", generated, skipped)
	case generated > 0:
		return fmt.Sprintf("Generated %d quizzes", generated)
	case skipped > 0:
		return fmt.Sprintf("Skipped %d existing quizzes. Use overwrite=true to regenerate.", skipped)
	default:
		return "No quizzes were generated"
	}
}

func lockKey(courseID, moduleCode string) string {
	return courseID + ":" + moduleCode
}
