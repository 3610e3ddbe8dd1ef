package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shihabhq/democracy-server/internal/models"
)

// QuestionService owns the question bank: admin CRUD plus the randomized
// sets served to quiz takers.
type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type OptionInput struct {
	Text      string `json:"text" binding:"required,max=500"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text        string
	Explanation string
	Options     []OptionInput
}

type UpdateQuestionInput struct {
	Text        *string
	Explanation *string
	IsActive    *bool
	Options     []OptionInput // nil keeps the existing options
}

func validateOptions(options []OptionInput) error {
	if len(options) < 2 {
		return errors.New("question needs at least two options")
	}
	correct := 0
	for _, o := range options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return ErrOneCorrectOption
	}
	return nil
}

func normalizeExplanation(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *QuestionService) CreateQuestion(ctx context.Context, in QuestionInput) (*models.Question, error) {
	if err := validateOptions(in.Options); err != nil {
		return nil, err
	}

	question := models.Question{
		Text:        in.Text,
		Explanation: normalizeExplanation(in.Explanation),
		IsActive:    true,
	}
	for _, o := range in.Options {
		question.Options = append(question.Options, models.Option{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id uuid.UUID, in UpdateQuestionInput) (*models.Question, error) {
	if in.Options != nil {
		if err := validateOptions(in.Options); err != nil {
			return nil, err
		}
	}

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Text != nil {
			question.Text = *in.Text
		}
		if in.Explanation != nil {
			question.Explanation = normalizeExplanation(*in.Explanation)
		}
		if in.IsActive != nil {
			question.IsActive = *in.IsActive
		}
		if err := tx.Save(&question).Error; err != nil {
			return err
		}

		if in.Options != nil {
			if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
				return err
			}
			options := make([]models.Option, len(in.Options))
			for i, o := range in.Options {
				options[i] = models.Option{QuestionID: id, Text: o.Text, IsCorrect: o.IsCorrect}
			}
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
			question.Options = options
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if in.Options == nil {
		s.db.WithContext(ctx).Where("question_id = ?", id).Find(&question.Options)
	}
	return &question, nil
}

// DeleteQuestion removes a question together with its options and any
// answers that reference it, in one transaction.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Question{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQuestionNotFound
		}
		return nil
	})
}

func (s *QuestionService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.WithContext(ctx).
		Preload("Options").
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// RandomActiveQuestions returns up to n active questions in random order,
// with each question's options shuffled.
func (s *QuestionService) RandomActiveQuestions(ctx context.Context, n int) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Options").
		Order("RANDOM()").
		Limit(n).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	for i := range questions {
		opts := questions[i].Options
		rand.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
	}
	return questions, nil
}
