package handler

import (
	"net/http"
	"strconv"

	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler 负责处理搜索相关的 API 请求。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchQuestions 处理全文检索请求。
func (h *SearchHandler) SearchQuestions(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondError(c, http.StatusBadRequest, "Query parameter 'query' is required")
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid 'size' parameter")
		return
	}

	hits, err := h.searchService.Search(c.Request.Context(), query, c.Query("category"), size)
	if err != nil {
		log.Errorf("SearchQuestions: search failed, query: '%s', error: %v", query, err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", hits)
}

// Transcript 返回问答归档的临时下载链接。
func (h *SearchHandler) Transcript(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	url, err := h.searchService.TranscriptURL(c.Request.Context(), id)
	if err != nil {
		log.Warnf("Transcript: failed for question %d, error: %v", id, err)
		respondServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "success", gin.H{"url": url})
}
