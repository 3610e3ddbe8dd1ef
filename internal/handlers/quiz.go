package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/services"
)

type QuizHandler struct {
	questionService *services.QuestionService
	attemptService  *services.AttemptService
}

func NewQuizHandler(questionService *services.QuestionService, attemptService *services.AttemptService) *QuizHandler {
	return &QuizHandler{questionService: questionService, attemptService: attemptService}
}

type QuizOption struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}

type QuizQuestion struct {
	ID      uuid.UUID    `json:"id"`
	Text    string       `json:"text"`
	Options []QuizOption `json:"options"`
}

// GetQuestions godoc
// @Summary      Get quiz questions
// @Description  Returns 20 random active questions with shuffled options; correct answers are stripped
// @Tags         quiz
// @Produce      json
// @Success      200 {array} QuizQuestion
// @Router       /api/quiz/questions [get]
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	questions, err := h.questionService.RandomActiveQuestions(c.Request.Context(), services.RequiredAnswerCount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch questions"})
		return
	}

	out := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		qq := QuizQuestion{ID: q.ID, Text: q.Text}
		for _, opt := range q.Options {
			qq.Options = append(qq.Options, QuizOption{ID: opt.ID, Text: opt.Text})
		}
		out = append(out, qq)
	}

	c.JSON(http.StatusOK, out)
}

type SubmitAttemptRequest struct {
	Name     string                     `json:"name" binding:"required,max=255"`
	District string                     `json:"district" binding:"required,max=100"`
	AgeGroup string                     `json:"age_group" binding:"required"`
	Gender   string                     `json:"gender" binding:"required"`
	Answers  []services.SubmittedAnswer `json:"answers" binding:"required"`
}

type SubmitAttemptResponse struct {
	ID         uuid.UUID `json:"id"`
	Score      int       `json:"score"`
	Percentage float64   `json:"percentage"`
	Passed     bool      `json:"passed"`
}

// SubmitAttempt godoc
// @Summary      Submit a quiz attempt
// @Tags         quiz
// @Accept       json
// @Produce      json
// @Param        request body SubmitAttemptRequest true "Submission"
// @Success      200 {object} SubmitAttemptResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/quiz/attempt [post]
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	attempt, err := h.attemptService.SubmitAttempt(c.Request.Context(), services.AttemptInput{
		Name:     req.Name,
		District: req.District,
		AgeGroup: req.AgeGroup,
		Gender:   req.Gender,
		Answers:  req.Answers,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWrongAnswerCount),
			errors.Is(err, services.ErrInvalidOption),
			errors.Is(err, services.ErrInvalidEnumValue):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to submit quiz attempt"})
		}
		return
	}

	c.JSON(http.StatusOK, SubmitAttemptResponse{
		ID:         attempt.ID,
		Score:      attempt.Score,
		Percentage: attempt.Percentage,
		Passed:     attempt.Passed,
	})
}

type AttemptReviewResponse struct {
	ID             uuid.UUID               `json:"id"`
	Name           string                  `json:"name"`
	District       string                  `json:"district"`
	AgeGroup       string                  `json:"age_group"`
	Gender         string                  `json:"gender"`
	Score          int                     `json:"score"`
	Percentage     float64                 `json:"percentage"`
	Passed         bool                    `json:"passed"`
	CreatedAt      string                  `json:"created_at"`
	Results        []services.AnswerReview `json:"results"`
	HasCertificate bool                    `json:"has_certificate"`
}

// GetAttempt godoc
// @Summary      Get attempt results
// @Description  Full review of one attempt: per-question selected vs correct option with explanations
// @Tags         quiz
// @Produce      json
// @Param        id path string true "Attempt ID"
// @Success      200 {object} AttemptReviewResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/quiz/attempt/{id} [get]
func (h *QuizHandler) GetAttempt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid attempt id"})
		return
	}

	review, err := h.attemptService.GetAttemptReview(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrAttemptNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch quiz attempt"})
		return
	}

	attempt := review.Attempt
	c.JSON(http.StatusOK, AttemptReviewResponse{
		ID:             attempt.ID,
		Name:           attempt.Name,
		District:       attempt.District,
		AgeGroup:       attempt.AgeGroup,
		Gender:         attempt.Gender,
		Score:          attempt.Score,
		Percentage:     attempt.Percentage,
		Passed:         attempt.Passed,
		CreatedAt:      attempt.CreatedAt.UTC().Format(time.RFC3339),
		Results:        review.Results,
		HasCertificate: review.HasCertificate,
	})
}
