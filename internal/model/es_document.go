package model

import "time"

// EsQuestionDocument 定义了存储在 Elasticsearch 中的问答文档结构。
type EsQuestionDocument struct {
	QuestionID   uint      `json:"question_id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Category     string    `json:"category"`
	QuestionText string    `json:"question_text"`
	AnswerText   string    `json:"answer_text"`
	Source       string    `json:"source"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuestionSearchHit 定义了返回给前端的搜索结果结构。
type QuestionSearchHit struct {
	QuestionID   uint    `json:"questionId"`
	Category     string  `json:"category"`
	QuestionText string  `json:"questionText"`
	AnswerText   string  `json:"answerText"`
	Username     string  `json:"username"`
	Score        float64 `json:"score"`
}
