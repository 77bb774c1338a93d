// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/internal/model"
	"electrical-qa-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const questionMapping = `{
	"mappings": {
		"properties": {
			"question_id": { "type": "long" },
			"user_id": { "type": "long" },
			"username": { "type": "keyword" },
			"category": { "type": "keyword" },
			"question_text": { "type": "text", "analyzer": "english" },
			"answer_text": { "type": "text", "analyzer": "english" },
			"source": { "type": "keyword" },
			"success": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

// Client 封装了问答索引的读写操作。
type Client struct {
	es        *elasticsearch.Client
	indexName string
}

// NewClient 创建 Elasticsearch 客户端。
func NewClient(esCfg config.ElasticsearchConfig) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{es: client, indexName: esCfg.IndexName}, nil
}

// InitES 创建客户端并确保索引存在。
func InitES(esCfg config.ElasticsearchConfig) (*Client, error) {
	c, err := NewClient(esCfg)
	if err != nil {
		return nil, err
	}
	if err := c.CreateIndexIfNotExists(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (c *Client) CreateIndexIfNotExists(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.indexName}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", c.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = c.es.Indices.Create(
		c.indexName,
		c.es.Indices.Create.WithBody(strings.NewReader(questionMapping)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", c.indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", c.indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", c.indexName)
	return nil
}

// IndexQuestion 以问题 ID 为文档 ID 写入（或覆盖）一条问答文档。
func (c *Client) IndexQuestion(ctx context.Context, doc model.EsQuestionDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      c.indexName,
		DocumentID: strconv.FormatUint(uint64(doc.QuestionID), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// DeleteQuestion 删除问题对应的文档，文档不存在不视为错误。
func (c *Client) DeleteQuestion(ctx context.Context, questionID uint) error {
	req := esapi.DeleteRequest{
		Index:      c.indexName,
		DocumentID: strconv.FormatUint(uint64(questionID), 10),
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete document: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64                  `json:"_score"`
			Source model.EsQuestionDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchQuestions 在问题与回答文本上做全文检索，category 非空时按分类过滤。
func (c *Client) SearchQuestions(ctx context.Context, query, category string, size int) ([]model.QuestionSearchHit, error) {
	filters := []map[string]interface{}{}
	if category != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	}
	esQuery := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"question_text^2", "answer_text"},
					},
				},
				"filter": filters,
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.indexName),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search returned error: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]model.QuestionSearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, model.QuestionSearchHit{
			QuestionID:   h.Source.QuestionID,
			Category:     h.Source.Category,
			QuestionText: h.Source.QuestionText,
			AnswerText:   h.Source.AnswerText,
			Username:     h.Source.Username,
			Score:        h.Score,
		})
	}
	return hits, nil
}
