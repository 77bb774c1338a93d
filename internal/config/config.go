// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSystemPrompt 是问答服务使用的"电机专家"角色设定。
const DefaultSystemPrompt = "You are an expert in electrical machines, motors, transformers, and power systems. Provide clear, accurate, technical answers with examples when helpful."

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Admin         AdminConfig         `mapstructure:"admin"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// LLMConfig 存储大语言模型相关的配置。
// APIKey 允许为空：此时问答客户端直接返回配置错误，不发起网络请求。
type LLMConfig struct {
	APIKey         string              `mapstructure:"api_key"`
	BaseURL        string              `mapstructure:"base_url"`
	Model          string              `mapstructure:"model"`
	SourceLabel    string              `mapstructure:"source_label"`
	TimeoutSeconds int                 `mapstructure:"timeout_seconds"`
	Generation     LLMGenerationConfig `mapstructure:"generation"`
	Prompt         LLMPromptConfig     `mapstructure:"prompt"`
}

// Timeout 返回一次完整请求/响应往返的超时时间。
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LLMGenerationConfig 配置生成相关参数。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 配置系统提示。
type LLMPromptConfig struct {
	System string `mapstructure:"system"`
}

// AdminConfig 描述启动时自动创建的管理员账号。
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Email    string `mapstructure:"email"`
}

// envBindings 把历史上使用的环境变量名映射到配置键。
var envBindings = map[string]string{
	"llm.api_key":        "GROQ_API_KEY",
	"database.mysql.dsn": "DB_DSN",
	"jwt.secret":         "JWT_SECRET",
	"admin.password":     "ADMIN_PASSWORD",
}

// LoadDotEnv 把 .env 文件中的变量写入进程环境，已存在的环境变量不会被覆盖。
// 文件不存在时直接返回。
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	return nil
}

// Load 从指定路径读取 YAML 配置，叠加环境变量后返回配置值。
// configPath 为空时只使用默认值和环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return &cfg, nil
}

// Init 是 Load 的入口包装，配置无法加载时直接 panic。
func Init(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("kafka.topic", "qa.answered")
	v.SetDefault("kafka.group_id", "electrical-qa-indexer")
	v.SetDefault("elasticsearch.index_name", "electrical_qa_questions")
	v.SetDefault("minio.bucket_name", "electrical-qa")

	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.source_label", "Llama 3.3 AI (Groq)")
	v.SetDefault("llm.timeout_seconds", 30)
	v.SetDefault("llm.generation.temperature", 0.7)
	v.SetDefault("llm.generation.top_p", 0.9)
	v.SetDefault("llm.generation.max_tokens", 500)
	v.SetDefault("llm.prompt.system", DefaultSystemPrompt)

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@localhost")
}
