// Package llm provides the answer provider client used to answer electrical machines questions
// through an OpenAI-compatible chat completions API (Groq by default).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/pkg/log"
)

// Confidence 是成功回答时附带的固定置信度，并非模型给出的概率。
const Confidence = 0.95

// 失败分类，写入 Outcome.Error。
const (
	ErrNoAPIKey      = "No API key"
	ErrInvalidAPIKey = "Invalid API key"
	ErrRateLimit     = "Rate limit"
	ErrTimeout       = "Timeout"
)

const (
	msgNoAPIKey    = "Groq API key is missing. Please add GROQ_API_KEY to your .env file."
	msgInvalidKey  = "API authentication failed. Please check your Groq API key in .env file."
	msgRateLimited = "Too many requests. Please wait a moment and try again."
	msgTimeout     = "Request timed out. Please try again."
)

// Outcome 是一次问答调用的结构化结果。
// 成功时带 Source 与 Confidence，失败时 Answer 是给用户看的提示，Error 是错误分类或原始信息。
type Outcome struct {
	Success    bool     `json:"success"`
	Answer     string   `json:"answer"`
	Source     string   `json:"source,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// AnswerProvider defines the interface for anything that can answer a question.
// Implementations never return an error: every failure is reported through the Outcome.
type AnswerProvider interface {
	GetAnswer(ctx context.Context, questionText string) Outcome
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client 调用 chat completions 接口。配置在构造时注入，之后不再修改。
type Client struct {
	cfg    config.LLMConfig
	client *http.Client
}

// NewClient creates a new answer provider client from the injected LLM configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

// GetAnswer 发起一次 chat completions 请求并把响应映射为 Outcome。
// 不做重试、缓存或本地输入校验，questionText 原样作为 user 消息发送。
func (c *Client) GetAnswer(ctx context.Context, questionText string) Outcome {
	if c.cfg.APIKey == "" {
		log.Errorf("[LLMClient] 未配置 API key，跳过请求")
		return Outcome{Success: false, Answer: msgNoAPIKey, Error: ErrNoAPIKey}
	}

	log.Infof("[LLMClient] 发送问答请求, model: %s, question: %s...", c.cfg.Model, truncate(questionText, 50))

	reqBytes, err := json.Marshal(c.buildRequest(questionText))
	if err != nil {
		return c.failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(reqBytes))
	if err != nil {
		return c.failure(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Errorf("[LLMClient] 请求超时")
			return Outcome{Success: false, Answer: msgTimeout, Error: ErrTimeout}
		}
		return c.failure(err)
	}
	defer resp.Body.Close()

	log.Infof("[LLMClient] 响应状态码: %d", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK:
		answer, err := decodeAnswer(resp.Body)
		if err != nil {
			if isTimeout(err) {
				log.Errorf("[LLMClient] 读取响应超时")
				return Outcome{Success: false, Answer: msgTimeout, Error: ErrTimeout}
			}
			return c.failure(err)
		}
		log.Infof("[LLMClient] 成功获取回答, 长度: %d", len(answer))
		confidence := Confidence
		return Outcome{
			Success:    true,
			Answer:     answer,
			Source:     c.cfg.SourceLabel,
			Confidence: &confidence,
		}
	case http.StatusUnauthorized:
		log.Errorf("[LLMClient] API key 无效")
		return Outcome{Success: false, Answer: msgInvalidKey, Error: ErrInvalidAPIKey}
	case http.StatusTooManyRequests:
		log.Errorf("[LLMClient] 触发限流")
		return Outcome{Success: false, Answer: msgRateLimited, Error: ErrRateLimit}
	default:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return c.failure(err)
		}
		log.Errorf("[LLMClient] API 返回错误: %d - %s", resp.StatusCode, string(body))
		return Outcome{
			Success: false,
			Answer:  fmt.Sprintf("API Error (Status %d). Please try again.", resp.StatusCode),
			Error:   string(body),
		}
	}
}

func (c *Client) buildRequest(questionText string) chatRequest {
	return chatRequest{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "system", Content: c.cfg.Prompt.System},
			{Role: "user", Content: questionText},
		},
		Temperature: c.cfg.Generation.Temperature,
		MaxTokens:   c.cfg.Generation.MaxTokens,
		TopP:        c.cfg.Generation.TopP,
	}
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
}

// failure 处理其他所有传输或解析错误。
func (c *Client) failure(err error) Outcome {
	log.Errorf("[LLMClient] 请求异常: %v", err)
	return Outcome{
		Success: false,
		Answer:  fmt.Sprintf("Error: %s. Please check your API key and internet connection.", err.Error()),
		Error:   err.Error(),
	}
}

func decodeAnswer(body io.Reader) (string, error) {
	var parsed chatResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat response contains no choices")
	}
	content := parsed.Choices[0].Message.Content
	if content == nil {
		return "", errors.New("chat response message has no content")
	}
	return strings.TrimSpace(*content), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
