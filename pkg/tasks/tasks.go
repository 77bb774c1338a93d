// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// QAIndexTask 表示一条已回答问题的事件，由消费者写入搜索索引与归档。
type QAIndexTask struct {
	QuestionID   uint      `json:"question_id"`
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Category     string    `json:"category"`
	QuestionText string    `json:"question_text"`
	AnswerText   string    `json:"answer_text"`
	Source       string    `json:"source"`
	Confidence   *float64  `json:"confidence,omitempty"`
	Success      bool      `json:"success"`
	CreatedAt    time.Time `json:"created_at"`
}
