package domain

import "errors"

var (
	// ErrCourseNotFound is returned when the referenced course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrModuleNotFound is returned when a module code does not match any module of the course.
	ErrModuleNotFound = errors.New("module not found")
	// ErrQuizNotFound indicates the quiz does not exist in the store.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuizShape indicates the provider response lacks a usable question list.
	ErrInvalidQuizShape = errors.New("invalid quiz format received from provider")
)
