package services

import (
	"context"
	"math"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shihabhq/democracy-server/internal/models"
)

type AnalyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

type QuestionStat struct {
	QuestionID     uuid.UUID `json:"question_id"`
	Text           string    `json:"text"`
	TotalAnswers   int64     `json:"total_answers"`
	CorrectAnswers int64     `json:"correct_answers"`
	SuccessRate    float64   `json:"success_rate"`
}

type DistrictStat struct {
	District      string  `json:"district"`
	TotalAttempts int64   `json:"total_attempts"`
	PassedCount   int64   `json:"passed_count"`
	AverageScore  float64 `json:"average_score"`
}

type AgeGroupStat struct {
	AgeGroup      string  `json:"age_group"`
	TotalAttempts int64   `json:"total_attempts"`
	PassedCount   int64   `json:"passed_count"`
	AverageScore  float64 `json:"average_score"`
}

type AnalyticsSummary struct {
	TotalAttempts     int64          `json:"total_attempts"`
	PassedCount       int64          `json:"passed_count"`
	FailedCount       int64          `json:"failed_count"`
	AverageScore      float64        `json:"average_score"`
	TotalCertificates int64          `json:"total_certificates"`
	TotalAnswers      int64          `json:"total_answers"`
	ToughestQuestions []QuestionStat `json:"toughest_questions"`
	EasiestQuestions  []QuestionStat `json:"easiest_questions"`
	StatsByDistrict   []DistrictStat `json:"stats_by_district"`
	StatsByAgeGroup   []AgeGroupStat `json:"stats_by_age_group"`
}

const difficultyListSize = 10

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary aggregates attempt, answer and certificate data for the admin
// dashboard. All grouping happens in SQL; only the difficulty ranking is
// finished in memory.
func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	db := s.db.WithContext(ctx)
	out := &AnalyticsSummary{}

	if err := db.Model(&models.QuizAttempt{}).Count(&out.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.QuizAttempt{}).Where("passed = ?", true).Count(&out.PassedCount).Error; err != nil {
		return nil, err
	}
	out.FailedCount = out.TotalAttempts - out.PassedCount

	var avg float64
	if err := db.Model(&models.QuizAttempt{}).
		Select("COALESCE(AVG(percentage), 0)").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	out.AverageScore = round2(avg)

	if err := db.Model(&models.Certificate{}).Count(&out.TotalCertificates).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Answer{}).Count(&out.TotalAnswers).Error; err != nil {
		return nil, err
	}

	var stats []QuestionStat
	err := db.Model(&models.Answer{}).
		Select("answers.question_id, questions.text, COUNT(*) AS total_answers, SUM(CASE WHEN answers.is_correct THEN 1 ELSE 0 END) AS correct_answers").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Group("answers.question_id, questions.text").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	for i := range stats {
		if stats[i].TotalAnswers > 0 {
			stats[i].SuccessRate = round2(float64(stats[i].CorrectAnswers) / float64(stats[i].TotalAnswers) * 100)
		}
	}
	sort.Slice(stats, func(a, b int) bool {
		return stats[a].SuccessRate < stats[b].SuccessRate
	})
	out.ToughestQuestions = firstN(stats, difficultyListSize)
	out.EasiestQuestions = firstN(reversed(stats), difficultyListSize)

	err = db.Model(&models.QuizAttempt{}).
		Select("district, COUNT(*) AS total_attempts, SUM(CASE WHEN passed THEN 1 ELSE 0 END) AS passed_count, AVG(percentage) AS average_score").
		Group("district").
		Order("total_attempts DESC").
		Scan(&out.StatsByDistrict).Error
	if err != nil {
		return nil, err
	}
	for i := range out.StatsByDistrict {
		out.StatsByDistrict[i].AverageScore = round2(out.StatsByDistrict[i].AverageScore)
	}

	err = db.Model(&models.QuizAttempt{}).
		Select("age_group, COUNT(*) AS total_attempts, SUM(CASE WHEN passed THEN 1 ELSE 0 END) AS passed_count, AVG(percentage) AS average_score").
		Group("age_group").
		Order("age_group ASC").
		Scan(&out.StatsByAgeGroup).Error
	if err != nil {
		return nil, err
	}
	for i := range out.StatsByAgeGroup {
		out.StatsByAgeGroup[i].AverageScore = round2(out.StatsByAgeGroup[i].AverageScore)
	}

	return out, nil
}

func firstN(stats []QuestionStat, n int) []QuestionStat {
	if len(stats) > n {
		stats = stats[:n]
	}
	out := make([]QuestionStat, len(stats))
	copy(out, stats)
	return out
}

func reversed(stats []QuestionStat) []QuestionStat {
	out := make([]QuestionStat, len(stats))
	for i, s := range stats {
		out[len(stats)-1-i] = s
	}
	return out
}
