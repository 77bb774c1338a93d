// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"electrical-qa-go/internal/config"
	"electrical-qa-go/pkg/log"
	"electrical-qa-go/pkg/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
)

// maxAttempts 是同一任务处理失败后放弃重试前的最大次数。
const maxAttempts = 3

// retryBackoff 是两次重试之间的等待时间。
const retryBackoff = 2 * time.Second

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.QAIndexTask) error
}

// Producer 负责把问答事件写入 Kafka。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 初始化 Kafka 生产者。
func NewProducer(cfg config.KafkaConfig) *Producer {
	log.Info("Kafka 生产者初始化成功")
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers),
			Topic:    cfg.Topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishQATask 发送一个问答索引任务，以问题 ID 作为消息 key 保证同一问题有序。
func (p *Producer) PublishQATask(ctx context.Context, task tasks.QAIndexTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(task.QuestionID), 10)),
		Value: taskBytes,
	})
}

// Close 关闭底层 writer。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// AttemptCounter 记录同一任务的失败次数。
type AttemptCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string)
}

type redisAttempts struct {
	rdb *redis.Client
}

func (a redisAttempts) Incr(ctx context.Context, key string) (int64, error) {
	n, err := a.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = a.rdb.Expire(ctx, key, 24*time.Hour).Err()
	return n, nil
}

func (a redisAttempts) Reset(ctx context.Context, key string) {
	_ = a.rdb.Del(ctx, key).Err()
}

// messageReader 是 consume 用到的 kafka.Reader 子集。
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// StartConsumer 启动一个 Kafka 消费者处理问答任务，直到 ctx 被取消。
func StartConsumer(ctx context.Context, cfg config.KafkaConfig, processor TaskProcessor, rdb *redis.Client) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Errorf("关闭 Kafka 消费者失败: %v", err)
		}
	}()

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)
	consume(ctx, r, processor, redisAttempts{rdb: rdb}, retryBackoff)
	log.Info("Kafka 消费者已停止")
}

// consume 循环拉取并处理消息。读取失败只记录日志并退避，只有 ctx 取消才会退出。
func consume(ctx context.Context, r messageReader, processor TaskProcessor, attempts AttemptCounter, backoff time.Duration) {
	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("从 Kafka 读取消息失败，稍后重试", err)
			if !sleep(ctx, backoff) {
				return
			}
			continue
		}

		// FetchMessage 不会重新投递未提交的消息，失败时在原地退避重试
		for !handleMessage(ctx, m.Value, processor, attempts) {
			if !sleep(ctx, backoff) {
				return
			}
		}
		if err := r.CommitMessages(ctx, m); err != nil {
			log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
		}
	}
}

// sleep 等待 d，ctx 先结束时返回 false。
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// handleMessage 处理一条消息并返回是否应提交 offset。
// 失败的任务不提交以便重试，失败次数达到 maxAttempts 后提交并放弃；格式错误的消息直接提交。
func handleMessage(ctx context.Context, value []byte, processor TaskProcessor, attempts AttemptCounter) bool {
	var task tasks.QAIndexTask
	if err := json.Unmarshal(value, &task); err != nil {
		log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(value))
		return true
	}

	attemptsKey := fmt.Sprintf("kafka:attempts:%d", task.QuestionID)
	if err := processor.Process(ctx, task); err != nil {
		log.Errorf("处理问答任务失败: QuestionID=%d, Error: %v", task.QuestionID, err)
		n, incErr := attempts.Incr(ctx, attemptsKey)
		if incErr != nil {
			// Redis 异常时不提交 offset，让 Kafka 重试
			return false
		}
		if n >= maxAttempts {
			log.Errorf("问答任务多次失败(>=%d)，提交 offset 终止重试: QuestionID=%d", maxAttempts, task.QuestionID)
			attempts.Reset(ctx, attemptsKey)
			return true
		}
		return false
	}

	log.Infof("问答任务处理成功: QuestionID=%d", task.QuestionID)
	attempts.Reset(ctx, attemptsKey)
	return true
}
