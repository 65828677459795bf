package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个客户端宿主进程的配置项。
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Storage StorageConfig
	AI      AIConfig
	Remote  RemoteConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	api, err := loadAPIConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	remote, err := loadRemoteConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		API:     api,
		Storage: loadStorageConfig(),
		AI:      ai,
		Remote:  remote,
	}, nil
}

// ServerConfig 描述本地 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "127.0.0.1:5173"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// APIConfig describes the external CareMeal backend.
type APIConfig struct {
	BaseURL        string
	ChatTimeout    time.Duration
	AnalyzeTimeout time.Duration
	MockMinLatency time.Duration
	MockMaxLatency time.Duration
	RequestTimeout time.Duration
}

func loadAPIConfig() (APIConfig, error) {
	chatTimeout, err := parseDurationEnv("CAREMEAL_CHAT_TIMEOUT", 30*time.Second)
	if err != nil {
		return APIConfig{}, err
	}

	analyzeTimeout, err := parseDurationEnv("CAREMEAL_ANALYZE_TIMEOUT", 60*time.Second)
	if err != nil {
		return APIConfig{}, err
	}

	requestTimeout, err := parseDurationEnv("CAREMEAL_REQUEST_TIMEOUT", 15*time.Second)
	if err != nil {
		return APIConfig{}, err
	}

	minLatency, err := parseDurationEnv("CAREMEAL_MOCK_MIN_LATENCY", 3*time.Second)
	if err != nil {
		return APIConfig{}, err
	}

	maxLatency, err := parseDurationEnv("CAREMEAL_MOCK_MAX_LATENCY", 5*time.Second)
	if err != nil {
		return APIConfig{}, err
	}
	if maxLatency < minLatency {
		maxLatency = minLatency
	}

	return APIConfig{
		BaseURL:        strings.TrimRight(getEnvOrDefault("CAREMEAL_API_BASE_URL", "http://localhost:8000"), "/"),
		ChatTimeout:    chatTimeout,
		AnalyzeTimeout: analyzeTimeout,
		RequestTimeout: requestTimeout,
		MockMinLatency: minLatency,
		MockMaxLatency: maxLatency,
	}, nil
}

// StorageConfig points at the local key/value database.
type StorageConfig struct {
	Path string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{Path: getEnvOrDefault("CAREMEAL_DATA_PATH", "caremeal.db")}
}

// AIConfig 描述本地大模型兜底相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Fallback    bool
}

// Enabled 表示是否提供了必需的密钥，并且允许作为兜底使用。
func (c AIConfig) Enabled() bool {
	return c.Fallback && c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	fallback, err := parseBoolEnv("CAREMEAL_LLM_FALLBACK", true)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Fallback:    fallback,
	}, nil
}

// Remote meal store backends.
const (
	RemoteNone     = ""
	RemoteHTTP     = "http"
	RemoteDynamoDB = "dynamodb"
)

// RemoteConfig selects where meal plans are synchronised and where chat
// images are uploaded.
type RemoteConfig struct {
	MealStore      string
	Region         string
	MealTable      string
	ImageBucket    string
	ImagePublicURL string
}

// ImagesEnabled reports whether chat images go to S3 instead of staying inline.
func (c RemoteConfig) ImagesEnabled() bool {
	return c.ImageBucket != ""
}

func loadRemoteConfig() (RemoteConfig, error) {
	store := strings.ToLower(strings.TrimSpace(os.Getenv("REMOTE_MEAL_STORE")))
	switch store {
	case RemoteNone, RemoteHTTP, RemoteDynamoDB:
	default:
		return RemoteConfig{}, fmt.Errorf("invalid REMOTE_MEAL_STORE value %q", store)
	}

	region := strings.TrimSpace(os.Getenv("S3_REGION"))
	if region == "" {
		region = getEnvOrDefault("AWS_REGION", "us-east-1")
	}

	return RemoteConfig{
		MealStore:      store,
		Region:         region,
		MealTable:      getEnvOrDefault("CAREMEAL_MEAL_TABLE", "CareMeal-MealPlans"),
		ImageBucket:    strings.TrimSpace(os.Getenv("S3_BUCKET")),
		ImagePublicURL: strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")), "/"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

// parseDurationEnv accepts Go durations ("45s") or a bare number of seconds.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.Atoi(raw); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
