package service

import (
	"context"
	"strings"
	"time"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/log"

	"github.com/minio/minio-go/v7"
)

const (
	defaultSearchSize  = 10
	maxSearchSize      = 50
	transcriptURLValid = 15 * time.Minute
)

// QuestionIndex 是问答全文索引（Elasticsearch）的读删操作。
type QuestionIndex interface {
	SearchQuestions(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error)
	DeleteQuestion(ctx context.Context, questionID uint) error
}

// TranscriptStore 是问答归档（MinIO）的读删操作。
type TranscriptStore interface {
	TranscriptURL(ctx context.Context, questionID uint, expiry time.Duration) (string, error)
	RemoveTranscript(ctx context.Context, questionID uint) error
}

// SearchService 接口定义了搜索与归档下载操作。
type SearchService interface {
	Search(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error)
	TranscriptURL(ctx context.Context, questionID uint) (string, error)
}

type searchService struct {
	index QuestionIndex
	store TranscriptStore
}

// NewSearchService 创建一个新的 SearchService 实例。index 或 store 为 nil 表示对应组件未启用。
func NewSearchService(index QuestionIndex, store TranscriptStore) SearchService {
	return &searchService{index: index, store: store}
}

// Search 在已索引的问答上做全文检索。
func (s *searchService) Search(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error) {
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.QuestionSearchHit{}, nil
	}
	if strings.TrimSpace(category) != "" {
		cat, err := model.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		category = string(cat)
	}
	if size < 1 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	log.Infof("[SearchService] 开始检索, query: '%s', category: '%s', size: %d", query, category, size)
	hits, err := s.index.SearchQuestions(ctx, query, category, size)
	if err != nil {
		log.Errorf("[SearchService] 检索失败: %v", err)
		return nil, err
	}
	log.Infof("[SearchService] 检索完成, 命中 %d 条", len(hits))
	return hits, nil
}

// TranscriptURL 返回问答归档的临时下载链接。
func (s *searchService) TranscriptURL(ctx context.Context, questionID uint) (string, error) {
	if s.store == nil {
		return "", ErrArchiveUnavailable
	}
	url, err := s.store.TranscriptURL(ctx, questionID, transcriptURLValid)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrTranscriptNotFound
		}
		return "", err
	}
	return url, nil
}
