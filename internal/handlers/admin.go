package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/services"
)

type AdminHandler struct {
	questionService *services.QuestionService
	attemptService  *services.AttemptService
}

func NewAdminHandler(questionService *services.QuestionService, attemptService *services.AttemptService) *AdminHandler {
	return &AdminHandler{questionService: questionService, attemptService: attemptService}
}

// ListAttempts godoc
// @Summary      List quiz attempts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        district query string false "Filter by district"
// @Param        age_group query string false "Filter by age group"
// @Success      200 {array} object
// @Router       /api/admin/attempts [get]
func (h *AdminHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.attemptService.ListAttempts(c.Request.Context(), c.Query("district"), c.Query("age_group"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch attempts"})
		return
	}
	c.JSON(http.StatusOK, attempts)
}

// ListQuestions godoc
// @Summary      List all questions with answers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} object
// @Router       /api/admin/questions [get]
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.ListQuestions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch questions"})
		return
	}
	c.JSON(http.StatusOK, questions)
}

type CreateQuestionRequest struct {
	Text        string                 `json:"text" binding:"required"`
	Explanation string                 `json:"explanation"`
	Options     []services.OptionInput `json:"options" binding:"required,min=2,dive"`
}

// CreateQuestion godoc
// @Summary      Create a question
// @Description  Exactly one option must be marked correct
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateQuestionRequest true "Question data"
// @Success      201 {object} object
// @Failure      400 {object} ErrorResponse
// @Router       /api/admin/questions [post]
func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), services.QuestionInput{
		Text:        req.Text,
		Explanation: req.Explanation,
		Options:     req.Options,
	})
	if err != nil {
		if errors.Is(err, services.ErrOneCorrectOption) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, question)
}

type UpdateQuestionRequest struct {
	Text        *string                `json:"text"`
	Explanation *string                `json:"explanation"`
	IsActive    *bool                  `json:"is_active"`
	Options     []services.OptionInput `json:"options"`
}

// UpdateQuestion godoc
// @Summary      Update a question
// @Description  Providing options replaces the existing option set; exactly one must be correct
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Question ID"
// @Param        request body UpdateQuestionRequest true "Fields to update"
// @Success      200 {object} object
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/admin/questions/{id} [put]
func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.questionService.UpdateQuestion(c.Request.Context(), id, services.UpdateQuestionInput{
		Text:        req.Text,
		Explanation: req.Explanation,
		IsActive:    req.IsActive,
		Options:     req.Options,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrOneCorrectOption):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update question"})
		}
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary      Delete a question
// @Description  Also removes its options and any answers referencing it
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Question ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/admin/questions/{id} [delete]
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	if err := h.questionService.DeleteQuestion(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "question deleted successfully"})
}
