// Package model 定义了与数据库表对应的 Go 结构体。
package model

import (
	"errors"
	"strings"
	"time"
)

// Category 是问题的分类标签，只能取固定枚举值。
type Category string

const (
	CategoryGeneral             Category = "General"
	CategoryDCMachines          Category = "DC Machines"
	CategoryACMachines          Category = "AC Machines"
	CategoryTransformers        Category = "Transformers"
	CategoryInductionMotors     Category = "Induction Motors"
	CategorySynchronousMachines Category = "Synchronous Machines"
)

// ErrInvalidCategory 表示分类不在枚举范围内。
var ErrInvalidCategory = errors.New("invalid category")

var categories = []Category{
	CategoryGeneral,
	CategoryDCMachines,
	CategoryACMachines,
	CategoryTransformers,
	CategoryInductionMotors,
	CategorySynchronousMachines,
}

// Categories 返回全部可选分类（按展示顺序）。
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory 校验并返回分类；空字符串视为 General。
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryGeneral, nil
	}
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Question 对应于数据库中的 'questions' 表，记录用户提出的电机问题。
type Question struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	QuestionText string    `gorm:"type:text;not null" json:"questionText"`
	Category     Category  `gorm:"type:varchar(100);not null;default:'General';index" json:"category"`
	Answers      []Answer  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}

// QuestionFilter 描述问题列表的可选过滤条件。
type QuestionFilter struct {
	Category  Category
	Search    string
	UserID    *uint
	StartTime *time.Time
	EndTime   *time.Time
}
