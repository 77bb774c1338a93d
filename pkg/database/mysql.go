package database

import (
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitMySQL 初始化 MySQL 数据库连接并迁移问答相关的表结构。
func InitMySQL(dsn string) *gorm.DB {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		// 唯一索引冲突统一翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	// 配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := AutoMigrate(DB); err != nil {
		log.Fatal("failed to migrate database", err)
	}

	log.Info("MySQL database connected successfully")
	return DB
}

// AutoMigrate 创建或更新 users / questions / answers 表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Question{}, &model.Answer{})
}
