// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store 封装了问答记录归档所用的存储桶。
type Store struct {
	client *minio.Client
	bucket string
}

// TranscriptObjectName 返回问题归档文件在桶中的对象名。
func TranscriptObjectName(questionID uint) string {
	return fmt.Sprintf("transcripts/%d.json", questionID)
}

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(cfg config.MinIOConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
	}

	return &Store{client: client, bucket: cfg.BucketName}, nil
}

// PutTranscript 以 JSON 形式写入一条问答归档。
func (s *Store) PutTranscript(ctx context.Context, questionID uint, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, TranscriptObjectName(questionID), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

// RemoveTranscript 删除问题的归档文件。
func (s *Store) RemoveTranscript(ctx context.Context, questionID uint) error {
	return s.client.RemoveObject(ctx, s.bucket, TranscriptObjectName(questionID), minio.RemoveObjectOptions{})
}

// TranscriptURL generates a presigned download URL for a question transcript.
func (s *Store) TranscriptURL(ctx context.Context, questionID uint, expiry time.Duration) (string, error) {
	objectName := TranscriptObjectName(questionID)
	if _, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		return "", err
	}
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}
