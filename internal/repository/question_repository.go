package repository

import (
	"context"

	"electrical-qa-go/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository 定义了问题数据的持久化操作。
type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	List(ctx context.Context, filter model.QuestionFilter, offset, limit int) ([]model.Question, int64, error)
	Recent(ctx context.Context, n int) ([]model.Question, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Create 写入一个新问题，ID 与时间戳由数据库生成。
func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

// FindByID 查找问题并预加载提问用户与全部回答（回答按时间倒序）。
func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		First(&q, id).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List 按过滤条件分页列出问题，最新的在前。
func (r *questionRepository) List(ctx context.Context, filter model.QuestionFilter, offset, limit int) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	db := applyQuestionFilter(r.db.WithContext(ctx).Model(&model.Question{}), filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Preload("User").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Recent 返回最新的 n 个问题。
func (r *questionRepository) Recent(ctx context.Context, n int) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(n).
		Find(&questions).Error
	return questions, err
}

// Count 返回问题总数。
func (r *questionRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Question{}).Count(&total).Error
	return total, err
}

// Delete 在同一事务中删除问题及其全部回答。
func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func applyQuestionFilter(db *gorm.DB, filter model.QuestionFilter) *gorm.DB {
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		db = db.Where("question_text LIKE ?", "%"+filter.Search+"%")
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.StartTime != nil {
		db = db.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		db = db.Where("created_at <= ?", *filter.EndTime)
	}
	return db
}
