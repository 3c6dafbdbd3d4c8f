package domain

import "errors"

var (
	// ErrNoQuestions is returned when a category has no usable questions.
	ErrNoQuestions = errors.New("no questions available")
	// ErrMalformedQuestion indicates a question record is missing required fields
	// or its answer does not match any option.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrSessionNotFound is returned when a quiz session ID is unknown.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned for operations on a finished session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrAlreadyAnswered is returned when the current question was already answered;
	// the first answer is final.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrAnswerRequired is returned by advance when an answer is mandatory.
	ErrAnswerRequired = errors.New("answer required before advancing")
	// ErrNothingAnswered is returned by an early finish before any answer was given.
	ErrNothingAnswered = errors.New("no questions answered yet")
	// ErrOptionNotFound indicates a submitted option is not part of the current question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrCategoryNotFound indicates the category could not be loaded.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidEmail rejects a profile save with a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
)
