package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shihabhq/democracy-server/internal/models"
)

// Store is the GORM-backed persistence layer. Services consume the narrow
// slices of it they need (OptionBank, AttemptStore, CertificateRepo) so
// tests can substitute fakes.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) OptionsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Option, error) {
	var options []models.Option
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&options).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Option, len(options))
	for _, o := range options {
		byID[o.ID] = o
	}
	return byID, nil
}

// CreateAttempt persists the attempt and its answer rows in one
// transaction; GORM cascades the association inside Create.
func (s *Store) CreateAttempt(ctx context.Context, attempt *models.QuizAttempt) error {
	return s.db.WithContext(ctx).Create(attempt).Error
}

// AttemptByID returns nil when the attempt does not exist.
func (s *Store) AttemptByID(ctx context.Context, id uuid.UUID) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := s.db.WithContext(ctx).First(&attempt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// AttemptWithAnswers returns nil when the attempt does not exist.
func (s *Store) AttemptWithAnswers(ctx context.Context, id uuid.UUID) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := s.db.WithContext(ctx).
		Preload("Answers").
		Preload("Certificate").
		First(&attempt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (s *Store) ListAttempts(ctx context.Context, district, ageGroup string) ([]models.QuizAttempt, error) {
	q := s.db.WithContext(ctx).Model(&models.QuizAttempt{}).Order("created_at DESC")
	if district != "" {
		q = q.Where("district = ?", district)
	}
	if ageGroup != "" {
		q = q.Where("age_group = ?", ageGroup)
	}
	var attempts []models.QuizAttempt
	if err := q.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *Store) QuestionsByID(ctx context.Context, ids []uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.WithContext(ctx).Preload("Options").Where("id IN ?", ids).Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CertificateByAttempt returns nil when no certificate is recorded.
func (s *Store) CertificateByAttempt(ctx context.Context, attemptID uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	err := s.db.WithContext(ctx).First(&cert, "attempt_id = ?", attemptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

// UpsertCertificate creates or replaces the certificate record for an
// attempt. Keyed on attempt_id, so concurrent duplicate generations
// converge on one row (last writer wins).
func (s *Store) UpsertCertificate(ctx context.Context, attemptID uuid.UUID, filePath string) error {
	cert := models.Certificate{AttemptID: attemptID, FilePath: filePath}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_path", "updated_at"}),
	}).Create(&cert).Error
}
