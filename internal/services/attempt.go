package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/models"
)

// AttemptStore is the slice of persistence the attempt flow touches.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error
	AttemptWithAnswers(ctx context.Context, id uuid.UUID) (*models.QuizAttempt, error)
	QuestionsByID(ctx context.Context, ids []uuid.UUID) ([]models.Question, error)
	ListAttempts(ctx context.Context, district, ageGroup string) ([]models.QuizAttempt, error)
}

type AttemptService struct {
	store   AttemptStore
	scoring *ScoringService
}

func NewAttemptService(store AttemptStore, scoring *ScoringService) *AttemptService {
	return &AttemptService{store: store, scoring: scoring}
}

type AttemptInput struct {
	Name     string
	District string
	AgeGroup string
	Gender   string
	Answers  []SubmittedAnswer
}

// SubmitAttempt validates and scores a submission, then persists the
// attempt with all its answer rows atomically. Validation failures leave
// no trace in the store.
func (s *AttemptService) SubmitAttempt(ctx context.Context, in AttemptInput) (*models.QuizAttempt, error) {
	if !models.ValidAgeGroup(in.AgeGroup) {
		return nil, fmt.Errorf("%w: age group must be one of: %s", ErrInvalidEnumValue, strings.Join(models.AgeGroups, ", "))
	}
	if !models.ValidGender(in.Gender) {
		return nil, fmt.Errorf("%w: gender must be one of: %s", ErrInvalidEnumValue, strings.Join(models.Genders, ", "))
	}

	result, err := s.scoring.Score(ctx, in.Answers)
	if err != nil {
		return nil, err
	}

	attempt := models.QuizAttempt{
		Name:       in.Name,
		District:   in.District,
		AgeGroup:   in.AgeGroup,
		Gender:     in.Gender,
		Score:      result.Score,
		Percentage: result.Percentage,
		Passed:     result.Passed,
		Answers:    result.Answers,
	}
	if err := s.store.CreateAttempt(ctx, &attempt); err != nil {
		return nil, err
	}
	return &attempt, nil
}

type ReviewOption struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type ReviewQuestion struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Explanation *string   `json:"explanation,omitempty"`
}

type AnswerReview struct {
	Question       ReviewQuestion `json:"question"`
	SelectedOption *ReviewOption  `json:"selected_option"`
	CorrectOption  *ReviewOption  `json:"correct_option"`
	IsCorrect      bool           `json:"is_correct"`
}

type AttemptReview struct {
	Attempt        *models.QuizAttempt
	Results        []AnswerReview
	HasCertificate bool
}

// GetAttemptReview loads an attempt with per-question detail: what was
// selected, what was correct, and the question's explanation.
func (s *AttemptService) GetAttemptReview(ctx context.Context, id uuid.UUID) (*AttemptReview, error) {
	attempt, err := s.store.AttemptWithAnswers(ctx, id)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrAttemptNotFound
	}

	questionIDs := make([]uuid.UUID, len(attempt.Answers))
	for i, a := range attempt.Answers {
		questionIDs[i] = a.QuestionID
	}
	questions, err := s.store.QuestionsByID(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	results := make([]AnswerReview, 0, len(attempt.Answers))
	for _, a := range attempt.Answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			// Question deleted since the attempt; skip rather than fail
			// the whole review.
			continue
		}
		review := AnswerReview{
			Question:  ReviewQuestion{ID: q.ID, Text: q.Text, Explanation: q.Explanation},
			IsCorrect: a.IsCorrect,
		}
		for _, opt := range q.Options {
			if opt.ID == a.OptionID {
				review.SelectedOption = &ReviewOption{ID: opt.ID, Text: opt.Text}
			}
			if opt.IsCorrect {
				review.CorrectOption = &ReviewOption{ID: opt.ID, Text: opt.Text}
			}
		}
		results = append(results, review)
	}

	return &AttemptReview{
		Attempt:        attempt,
		Results:        results,
		HasCertificate: attempt.Certificate != nil,
	}, nil
}

func (s *AttemptService) ListAttempts(ctx context.Context, district, ageGroup string) ([]models.QuizAttempt, error) {
	return s.store.ListAttempts(ctx, district, ageGroup)
}
