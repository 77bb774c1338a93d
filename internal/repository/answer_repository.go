package repository

import (
	"context"

	"electrical-qa-go/internal/model"

	"gorm.io/gorm"
)

// AnswerRepository 定义了回答数据的持久化操作。回答只会被创建，不会单独更新或删除。
type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	ListByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error)
	List(ctx context.Context, filter model.AnswerFilter, offset, limit int) ([]model.Answer, int64, error)
	Count(ctx context.Context) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository 创建一个新的 AnswerRepository 实例。
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// Create 写入一条回答。
func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).Create(answer).Error
}

// ListByQuestion 返回某个问题的全部回答，最新的在前。
func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at DESC, id DESC").
		Find(&answers).Error
	return answers, err
}

// List 按来源与时间范围分页列出回答。
func (r *answerRepository) List(ctx context.Context, filter model.AnswerFilter, offset, limit int) ([]model.Answer, int64, error) {
	var answers []model.Answer
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Answer{})
	if filter.Source != "" {
		db = db.Where("source = ?", filter.Source)
	}
	if filter.StartTime != nil {
		db = db.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		db = db.Where("created_at <= ?", *filter.EndTime)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&answers).Error; err != nil {
		return nil, 0, err
	}
	return answers, total, nil
}

// Count 返回回答总数。
func (r *answerRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Answer{}).Count(&total).Error
	return total, err
}
