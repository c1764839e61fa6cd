package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
)

// Handler exposes the quiz operations as a JSON API. It is a thin
// shell: every decision lives in the app services.
type Handler struct {
	generator  *app.Generator
	quizzes    *app.QuizService
	assessment *app.AssessmentService
}

func NewHandler(generator *app.Generator, quizzes *app.QuizService, assessment *app.AssessmentService) *Handler {
	return &Handler{generator: generator, quizzes: quizzes, assessment: assessment}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quizzes/generate", h.generate)
	mux.HandleFunc("GET /quizzes/{id}", h.getQuiz)
	mux.HandleFunc("PATCH /quizzes/{id}", h.updateQuiz)
	mux.HandleFunc("DELETE /quizzes/{id}", h.deleteQuiz)
	mux.HandleFunc("GET /courses/{id}/quizzes", h.listQuizzes)
	mux.HandleFunc("POST /attempts", h.createAttempt)
	mux.HandleFunc("GET /users/{id}/attempts", h.listAttempts)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req app.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	result, err := h.generator.GenerateForCourse(r.Context(), req)
	if err != nil {
		if isNotFound(err) {
			writeJSON(w, http.StatusNotFound, result)
			return
		}
		log.Printf("generate quizzes: %v", err)
		writeError(w, http.StatusInternalServerError, "quiz generation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.quizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListByCourse(r.Context(), r.PathValue("id"), r.URL.Query().Get("module_code"))
	if err != nil {
		log.Printf("list quizzes: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var patch app.QuizPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quiz, err := h.quizzes.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.quizError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.SoftDelete(r.Context(), r.PathValue("id")); err != nil {
		h.quizError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type attemptRequest struct {
	QuizID  string          `json:"quiz_id"`
	UserID  string          `json:"user_id"`
	Answers []domain.Answer `json:"answers"`
}

func (h *Handler) createAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuizID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "quiz_id and user_id are required")
		return
	}

	attempt, err := h.assessment.CreateAttempt(r.Context(), req.UserID, req.QuizID, req.Answers)
	if err != nil {
		h.quizError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.assessment.ListUserAttempts(r.Context(), r.PathValue("id"), r.URL.Query().Get("quiz_id"))
	if err != nil {
		log.Printf("list attempts: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) quizError(w http.ResponseWriter, err error) {
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Printf("quiz operation: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrQuizNotFound) ||
		errors.Is(err, domain.ErrCourseNotFound) ||
		errors.Is(err, domain.ErrModuleNotFound)
}

type errorPayload struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Error: message})
}
