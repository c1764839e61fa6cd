package domain

import "time"

// Course is the external catalog entity quizzes are generated from.
// It is owned by the course subsystem and read-only here.
type Course struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Modules []Module `json:"modules"`
}

// Module is a titled subdivision of a course referencing asset ids.
// Code is the stable external key used for quiz lookup.
type Module struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Title    string   `json:"title"`
	AssetIDs []string `json:"asset_ids"`
}

// Asset is an atomic text content unit referenced by modules.
type Asset struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ModuleContent is the aggregated generation input for one module:
// course/module identity plus the concatenated bodies of every asset
// the module references.
type ModuleContent struct {
	CourseID      string `json:"course_id"`
	CourseTitle   string `json:"course_title"`
	ModuleID      string `json:"module_id"`
	ModuleTitle   string `json:"module_title"`
	ModuleCode    string `json:"module_code"`
	AssetsContent string `json:"assets_content"`
}

// Question models a single MCQ with exactly one correct option index.
// Questions are immutable once embedded in a persisted quiz.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is a generated set of MCQ questions scoped to one course module.
type Quiz struct {
	ID                   string     `json:"id"`
	CourseID             string     `json:"course_id"`
	ModuleCode           string     `json:"module_code"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Difficulty           string     `json:"difficulty"`
	Questions            []Question `json:"questions"`
	TotalQuestions       int        `json:"total_questions"`
	EstimatedTimeMinutes int        `json:"estimated_time_minutes"`
	IsActive             bool       `json:"is_active"`
	GeneratedByAI        bool       `json:"generated_by_ai"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Answer is one submitted option index; answers are matched to quiz
// questions positionally.
type Answer struct {
	SelectedAnswer int `json:"selected_answer"`
}

// QuizAttempt is one user's scored submission against a quiz. Attempts
// are created in their terminal completed state and never mutated.
type QuizAttempt struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	UserID      string    `json:"user_id"`
	Answers     []Answer  `json:"answers"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  int       `json:"percentage"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	IsCompleted bool      `json:"is_completed"`
}

// AnswerKey is the compact scoring view of a quiz: the correct option
// index per question position.
type AnswerKey struct {
	QuizID  string `json:"quiz_id"`
	Correct []int  `json:"correct"`
}

// ResultType selects what the generation provider should produce.
type ResultType string

// ResultTypeQuizMCQ asks the provider for multiple-choice quiz content.
const ResultTypeQuizMCQ ResultType = "quiz_mcq"

// GenerationRequest is the contract sent to the content generation provider.
type GenerationRequest struct {
	Content      string     `json:"content"`
	ResultType   ResultType `json:"result_type"`
	NumQuestions int        `json:"num_questions"`
	Difficulty   string     `json:"difficulty"`
	NumOptions   int        `json:"num_options"`
	MaxTokens    int        `json:"max_tokens"`
	Temperature  float32    `json:"temperature"`
}

// GenerationResult is the structured provider output the orchestrator
// validates before persisting anything.
type GenerationResult struct {
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}
