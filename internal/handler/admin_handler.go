package handler

import (
	"net/http"
	"strconv"
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// AdminHandler 负责处理所有需要管理员权限的 API 请求。
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler 创建一个新的 AdminHandler 实例。
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// parseDateRange 解析可选的 start_date / end_date 参数，end_date 包含当天。
func parseDateRange(c *gin.Context) (startTime, endTime *time.Time, ok bool) {
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid start_date format, use YYYY-MM-DD")
			return nil, nil, false
		}
		startTime = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid end_date format, use YYYY-MM-DD")
			return nil, nil, false
		}
		// Include the whole day
		t = t.Add(24*time.Hour - time.Nanosecond)
		endTime = &t
	}
	return startTime, endTime, true
}

// ListQuestions 按分类、日期和关键字过滤问题。
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	filter := model.QuestionFilter{Search: c.Query("search")}
	if s := c.Query("category"); s != "" {
		cat, err := model.ParseCategory(s)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		filter.Category = cat
	}
	if s := c.Query("userid"); s != "" {
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid user ID format")
			return
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	var ok bool
	if filter.StartTime, filter.EndTime, ok = parseDateRange(c); !ok {
		return
	}

	page, size := pageParams(c)
	result, err := h.adminService.ListQuestions(c.Request.Context(), filter, page, size)
	if err != nil {
		log.Error("Admin ListQuestions: Failed to list questions", err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", result)
}

// DeleteQuestion 删除问题及其回答。
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.adminService.DeleteQuestion(c.Request.Context(), id); err != nil {
		log.Warnf("Admin DeleteQuestion: failed for question %d, error: %v", id, err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Question deleted successfully", nil)
}

// ListAnswers 按来源和日期过滤回答。
func (h *AdminHandler) ListAnswers(c *gin.Context) {
	filter := model.AnswerFilter{Source: c.Query("source")}
	var ok bool
	if filter.StartTime, filter.EndTime, ok = parseDateRange(c); !ok {
		return
	}

	page, size := pageParams(c)
	result, err := h.adminService.ListAnswers(c.Request.Context(), filter, page, size)
	if err != nil {
		log.Error("Admin ListAnswers: Failed to list answers", err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", result)
}

// ListUsers 处理分页获取用户列表的请求。
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, size := pageParams(c)
	userList, err := h.adminService.ListUsers(page, size)
	if err != nil {
		log.Error("ListUsers: Failed to list users", err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Get users successful", userList)
}

// SetUserRoleRequest 定义了修改用户角色 API 的请求体结构。
type SetUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetUserRole 修改用户角色。
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	var req SetUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "无效的请求负载：role 不能为空")
		return
	}

	user, err := h.adminService.SetUserRole(userID, req.Role)
	if err != nil {
		log.Warnf("SetUserRole: failed for user %d, error: %v", userID, err)
		respondServiceError(c, err)
		return
	}
	log.Infof("User '%s' role set to %s", user.Username, user.Role)
	respond(c, http.StatusOK, "Role updated successfully", user)
}
