package services

import "errors"

// Sentinel errors handlers map onto HTTP statuses with errors.Is. Anything
// not listed here is an internal persistence or infrastructure failure.
var (
	ErrWrongAnswerCount = errors.New("must answer exactly 20 questions")
	ErrInvalidOption    = errors.New("invalid option for question")
	ErrInvalidEnumValue = errors.New("invalid enum value")
	ErrAttemptNotFound  = errors.New("quiz attempt not found")
	ErrAttemptNotPassed = errors.New("certificate only available for passing scores")
	ErrQuestionNotFound = errors.New("question not found")
	ErrOneCorrectOption = errors.New("exactly one option must be marked as correct")
)
