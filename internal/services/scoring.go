package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/models"
)

const (
	// Every attempt answers exactly this many questions.
	RequiredAnswerCount = 20
	PassMarkPercent     = 50.0
)

type SubmittedAnswer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	OptionID   uuid.UUID `json:"option_id" binding:"required"`
}

type ScoreResult struct {
	Score      int
	Percentage float64
	Passed     bool
	// Answer rows ready to persist with the attempt; AttemptID is filled
	// in when the attempt is created.
	Answers []models.Answer
}

// OptionBank resolves submitted option ids against the stored question
// bank. Missing ids are simply absent from the returned map.
type OptionBank interface {
	OptionsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Option, error)
}

type ScoringService struct {
	bank OptionBank
}

func NewScoringService(bank OptionBank) *ScoringService {
	return &ScoringService{bank: bank}
}

// Score validates a submitted answer set and computes the result.
// Correctness comes from the stored options, never from the client. The
// whole attempt is rejected on the first mismatched pair; partial scores
// are never produced.
func (s *ScoringService) Score(ctx context.Context, submitted []SubmittedAnswer) (*ScoreResult, error) {
	if len(submitted) != RequiredAnswerCount {
		return nil, ErrWrongAnswerCount
	}

	ids := make([]uuid.UUID, len(submitted))
	for i, a := range submitted {
		ids[i] = a.OptionID
	}
	options, err := s.bank.OptionsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	answers := make([]models.Answer, 0, len(submitted))
	correct := 0
	for _, a := range submitted {
		opt, ok := options[a.OptionID]
		if !ok || opt.QuestionID != a.QuestionID {
			return nil, ErrInvalidOption
		}
		if opt.IsCorrect {
			correct++
		}
		answers = append(answers, models.Answer{
			QuestionID: a.QuestionID,
			OptionID:   a.OptionID,
			IsCorrect:  opt.IsCorrect,
		})
	}

	percentage := float64(correct) * 100 / RequiredAnswerCount
	return &ScoreResult{
		Score:      correct,
		Percentage: percentage,
		Passed:     percentage >= PassMarkPercent,
		Answers:    answers,
	}, nil
}
