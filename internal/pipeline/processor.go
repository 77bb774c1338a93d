// Package pipeline 定义了问答索引与归档的处理流程。
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/tasks"
)

// Indexer 把问答写入全文索引。
type Indexer interface {
	IndexQuestion(ctx context.Context, doc model.EsQuestionDocument) error
}

// Archiver 保存问答归档文件。
type Archiver interface {
	PutTranscript(ctx context.Context, questionID uint, data []byte) error
}

// Transcript 是写入对象存储的问答归档内容。
type Transcript struct {
	QuestionID uint      `json:"question_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Category   string    `json:"category"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Source     string    `json:"source"`
	Confidence *float64  `json:"confidence"`
	Success    bool      `json:"success"`
	AskedAt    time.Time `json:"asked_at"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Processor 封装了问答任务处理的所有依赖和逻辑。
type Processor struct {
	indexer  Indexer
	archiver Archiver
	now      func() time.Time
}

// NewProcessor 创建一个新的 Processor 实例。indexer 或 archiver 为 nil 时对应步骤为空操作。
func NewProcessor(indexer Indexer, archiver Archiver) *Processor {
	if indexer == nil {
		indexer = NopIndexer{}
	}
	if archiver == nil {
		archiver = NopArchiver{}
	}
	return &Processor{indexer: indexer, archiver: archiver, now: time.Now}
}

// Process 是问答任务处理的主函数：先写索引，再写归档。
// 两个步骤都是幂等的，失败后重新投递不会产生重复数据。
func (p *Processor) Process(ctx context.Context, task tasks.QAIndexTask) error {
	log.Infof("[Processor] 开始处理问答任务, QuestionID: %d, UserID: %d", task.QuestionID, task.UserID)

	// 1. 写入 Elasticsearch
	doc := model.EsQuestionDocument{
		QuestionID:   task.QuestionID,
		UserID:       task.UserID,
		Username:     task.Username,
		Category:     task.Category,
		QuestionText: task.QuestionText,
		AnswerText:   task.AnswerText,
		Source:       task.Source,
		Success:      task.Success,
		CreatedAt:    task.CreatedAt,
	}
	if err := p.indexer.IndexQuestion(ctx, doc); err != nil {
		return fmt.Errorf("索引问答失败: %w", err)
	}

	// 2. 归档到对象存储
	data, err := json.MarshalIndent(Transcript{
		QuestionID: task.QuestionID,
		UserID:     task.UserID,
		Username:   task.Username,
		Category:   task.Category,
		Question:   task.QuestionText,
		Answer:     task.AnswerText,
		Source:     task.Source,
		Confidence: task.Confidence,
		Success:    task.Success,
		AskedAt:    task.CreatedAt,
		ArchivedAt: p.now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化归档失败: %w", err)
	}
	if err := p.archiver.PutTranscript(ctx, task.QuestionID, data); err != nil {
		return fmt.Errorf("写入归档失败: %w", err)
	}

	log.Infof("[Processor] 问答任务处理完成, QuestionID: %d", task.QuestionID)
	return nil
}

// NopIndexer 在未启用 Elasticsearch 时使用。
type NopIndexer struct{}

func (NopIndexer) IndexQuestion(context.Context, model.EsQuestionDocument) error { return nil }

// NopArchiver 在未启用 MinIO 时使用。
type NopArchiver struct{}

func (NopArchiver) PutTranscript(context.Context, uint, []byte) error { return nil }

// DirectPublisher 在未启用 Kafka 时直接在请求内执行处理流程。
type DirectPublisher struct {
	Processor *Processor
}

// PublishQATask 同步处理任务。
func (d DirectPublisher) PublishQATask(ctx context.Context, task tasks.QAIndexTask) error {
	return d.Processor.Process(ctx, task)
}
