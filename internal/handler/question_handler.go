package handler

import (
	"net/http"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// QuestionHandler 负责提问、问题浏览和首页接口。
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler 创建一个新的 QuestionHandler 实例。
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// AskRequest 定义了提问 API 的请求体结构。category 为空时视为 General。
type AskRequest struct {
	QuestionText string `json:"questionText" binding:"required"`
	Category     string `json:"category"`
}

// Ask 保存问题并返回 AI 回答。问答客户端失败时仍返回 201，success 为 false。
func (h *QuestionHandler) Ask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusInternalServerError, "无法获取用户信息")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Ask: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：questionText 不能为空")
		return
	}

	result, err := h.questionService.Ask(c.Request.Context(), user, req.QuestionText, req.Category)
	if err != nil {
		log.Warnf("Ask: Failed for user '%s', error: %v", user.Username, err)
		respondServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, result.Message, gin.H{
		"question": result.Question,
		"answer":   result.Answer,
		"success":  result.Outcome.Success,
		"message":  result.Message,
	})
}

// GetQuestion 返回问题详情及其全部回答。
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	question, err := h.questionService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", question)
}

// ListQuestions 分页列出全部问题。
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, size := pageParams(c)
	result, err := h.questionService.List(c.Request.Context(), page, size)
	if err != nil {
		log.Error("ListQuestions: Failed to list questions", err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", result)
}

// Home 返回最新问题与统计数据。
func (h *QuestionHandler) Home(c *gin.Context) {
	data, err := h.questionService.Home(c.Request.Context())
	if err != nil {
		log.Error("Home: Failed to load home data", err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", data)
}

// Categories 返回可选的问题分类。
func (h *QuestionHandler) Categories(c *gin.Context) {
	respond(c, http.StatusOK, "success", model.Categories())
}
