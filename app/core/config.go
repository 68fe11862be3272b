package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/ai/baidu"
)

const ENV_PREFIX = "BHARATLENS_"

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf, err := ParseConfig(raw)
	if err != nil {
		panic(err)
	}
	return conf
}

func ParseConfig(raw []byte) (CoreConfig, error) {
	conf := CoreConfig{}
	if err := toml.Unmarshal(raw, &conf); err != nil {
		return conf, err
	}
	conf.ApplyDefaults()
	return conf, nil
}

// LoadBaseConfigFromENV reads BHARATLENS_* variables. A .env file in the
// working directory is loaded first without overriding the process env.
func LoadBaseConfigFromENV() CoreConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	var c CoreConfig
	c.FromENV()
	c.ApplyDefaults()
	return c
}

type CoreConfig struct {
	Addr          string              `toml:"addr"`
	Log           Log                 `toml:"log"`
	Postgres      PGConfig            `toml:"postgres"`
	Redis         RedisConfig         `toml:"redis"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`
	AI            AIConfig            `toml:"ai"`
	Chat          ChatConfig          `toml:"chat"`
	Document      DocumentConfig      `toml:"document"`
	Security      Security            `toml:"security"`
}

type ObjectStorageDriver struct {
	Driver       string       `toml:"driver"`
	StaticDomain string       `toml:"static_domain"`
	S3           *S3Config    `toml:"s3"`
	Local        *LocalConfig `toml:"local"`
}

type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

type LocalConfig struct {
	Dir string `toml:"dir"`
}

type AIConfig struct {
	OpenAI     OpenAIConfig     `toml:"openai"`
	BaiduOCR   baidu.Config     `toml:"baidu_ocr"`
	Transcribe TranscribeConfig `toml:"transcribe"`
}

type OpenAIConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
	ai.ModelName
}

type TranscribeConfig struct {
	Region          string   `toml:"region"`
	AccessKey       string   `toml:"access_key"`
	SecretKey       string   `toml:"secret_key"`
	LanguageOptions []string `toml:"language_options"`
	PollInterval    Duration `toml:"poll_interval"`
	Timeout         Duration `toml:"timeout"`
	MaxConcurrency  int      `toml:"max_concurrency"`
}

type ChatConfig struct {
	HistoryWindow     int      `toml:"history_window"`
	MaxEvidenceTokens int      `toml:"max_evidence_tokens"`
	SystemPrompt      string   `toml:"system_prompt"`
	TurnTimeout       Duration `toml:"turn_timeout"`
	AbandonAfter      Duration `toml:"abandon_after"`
	TurnRatePerMinute int      `toml:"turn_rate_per_minute"`
	MaxUploadMB       int      `toml:"max_upload_mb"`
}

type DocumentConfig struct {
	Workers int `toml:"workers"`
}

type Security struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// Duration decodes TOML strings such as "5s" or "3m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (c *CoreConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":33033"
	}
	if c.ObjectStorage.Driver == "" {
		c.ObjectStorage.Driver = "local"
	}
	if c.ObjectStorage.Local == nil {
		c.ObjectStorage.Local = &LocalConfig{}
	}
	if c.ObjectStorage.Local.Dir == "" {
		c.ObjectStorage.Local.Dir = "./data/uploads"
	}

	if len(c.AI.Transcribe.LanguageOptions) == 0 {
		c.AI.Transcribe.LanguageOptions = []string{"en-IN", "hi-IN"}
	}
	setDuration(&c.AI.Transcribe.PollInterval, 5*time.Second)
	setDuration(&c.AI.Transcribe.Timeout, 120*time.Second)

	setInt(&c.Chat.HistoryWindow, 5)
	setInt(&c.Chat.MaxEvidenceTokens, 3000)
	setInt(&c.Chat.TurnRatePerMinute, 30)
	setInt(&c.Chat.MaxUploadMB, 25)
	setDuration(&c.Chat.TurnTimeout, 3*time.Minute)
	setDuration(&c.Chat.AbandonAfter, 10*time.Minute)

	setInt(&c.Document.Workers, 4)
	setDuration(&c.Security.TokenTTL, 7*24*time.Hour)
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setDuration(v *Duration, def time.Duration) {
	if v.Duration <= 0 {
		v.Duration = def
	}
}

func env(key string) string {
	return os.Getenv(ENV_PREFIX + key)
}

func envInt(key string) int {
	v, _ := strconv.Atoi(env(key))
	return v
}

func envDuration(key string) Duration {
	v, _ := time.ParseDuration(env(key))
	return Duration{v}
}

func (c *CoreConfig) FromENV() {
	c.Addr = env("ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()

	c.ObjectStorage.Driver = env("OBJECT_STORAGE_DRIVER")
	c.ObjectStorage.StaticDomain = env("OBJECT_STORAGE_STATIC_DOMAIN")
	if bucket := env("S3_BUCKET"); bucket != "" {
		c.ObjectStorage.S3 = &S3Config{
			Bucket:       bucket,
			Region:       env("S3_REGION"),
			Endpoint:     env("S3_ENDPOINT"),
			AccessKey:    env("S3_ACCESS_KEY"),
			SecretKey:    env("S3_SECRET_KEY"),
			UsePathStyle: env("S3_PATH_STYLE") == "true",
		}
	}
	if dir := env("LOCAL_STORAGE_DIR"); dir != "" {
		c.ObjectStorage.Local = &LocalConfig{Dir: dir}
	}

	c.AI.OpenAI.Token = env("OPENAI_API_KEY")
	c.AI.OpenAI.BaseURL = env("OPENAI_BASE_URL")
	c.AI.OpenAI.ChatModel = env("OPENAI_CHAT_MODEL")
	c.AI.OpenAI.VisionModel = env("OPENAI_VISION_MODEL")
	c.AI.OpenAI.TTSModel = env("OPENAI_TTS_MODEL")
	c.AI.BaiduOCR.APIURL = env("OCR_API_URL")
	c.AI.BaiduOCR.Token = env("OCR_TOKEN")

	c.AI.Transcribe.Region = env("TRANSCRIBE_REGION")
	c.AI.Transcribe.AccessKey = env("TRANSCRIBE_ACCESS_KEY")
	c.AI.Transcribe.SecretKey = env("TRANSCRIBE_SECRET_KEY")
	if langs := env("TRANSCRIBE_LANGUAGE_OPTIONS"); langs != "" {
		c.AI.Transcribe.LanguageOptions = strings.Split(langs, ",")
	}
	c.AI.Transcribe.PollInterval = envDuration("TRANSCRIBE_POLL_INTERVAL")
	c.AI.Transcribe.Timeout = envDuration("TRANSCRIBE_TIMEOUT")
	c.AI.Transcribe.MaxConcurrency = envInt("TRANSCRIBE_MAX_CONCURRENCY")

	c.Chat.HistoryWindow = envInt("CHAT_HISTORY_WINDOW")
	c.Chat.MaxEvidenceTokens = envInt("CHAT_MAX_EVIDENCE_TOKENS")
	c.Chat.SystemPrompt = env("CHAT_SYSTEM_PROMPT")
	c.Chat.TurnTimeout = envDuration("CHAT_TURN_TIMEOUT")
	c.Chat.AbandonAfter = envDuration("CHAT_ABANDON_AFTER")
	c.Chat.TurnRatePerMinute = envInt("CHAT_TURN_RATE_PER_MINUTE")
	c.Chat.MaxUploadMB = envInt("CHAT_MAX_UPLOAD_MB")

	c.Document.Workers = envInt("DOCUMENT_WORKERS")

	c.Security.JWTSecret = env("JWT_SECRET")
	c.Security.TokenTTL = envDuration("TOKEN_TTL")
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = env("POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	Cluster      bool     `toml:"cluster"`
	ClusterAddrs []string `toml:"cluster_addrs"`

	PoolSize  int    `toml:"pool_size"`
	KeyPrefix string `toml:"key_prefix"`
}

// Enabled reports whether a redis endpoint is configured. Redis is optional.
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.ClusterAddrs) > 0
}

func (r *RedisConfig) FromENV() {
	r.Addr = env("REDIS_ADDR")
	r.Password = env("REDIS_PASSWORD")
	r.DB = envInt("REDIS_DB")
	r.KeyPrefix = env("REDIS_KEY_PREFIX")
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = env("LOG_LEVEL")
	l.Path = env("LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
