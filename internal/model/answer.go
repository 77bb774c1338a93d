package model

import "time"

// DefaultAnswerSource 是问答客户端未给出来源时写入的来源标签。
const DefaultAnswerSource = "AI"

// Answer 对应于数据库中的 'answers' 表，记录 AI 生成的回答。
// ConfidenceScore 只有在成功回答时才有值。
type Answer struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID      uint      `gorm:"index;not null" json:"questionId"`
	AnswerText      string    `gorm:"type:text;not null" json:"answerText"`
	Source          string    `gorm:"type:varchar(50);not null;default:'AI';index" json:"source"`
	ConfidenceScore *float64  `json:"confidenceScore"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Answer) TableName() string {
	return "answers"
}

// AnswerFilter 描述回答列表的可选过滤条件。
type AnswerFilter struct {
	Source    string
	StartTime *time.Time
	EndTime   *time.Time
}

// Stats 是首页展示的统计数据。
type Stats struct {
	TotalQuestions int64 `json:"totalQuestions"`
	TotalUsers     int64 `json:"totalUsers"`
	TotalAnswers   int64 `json:"totalAnswers"`
}
