package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/1abhi6/BharatLens/app/core/srv"
	"github.com/1abhi6/BharatLens/app/store/sqlstore"
	"github.com/1abhi6/BharatLens/pkg/ai/baidu"
	"github.com/1abhi6/BharatLens/pkg/ai/openai"
	"github.com/1abhi6/BharatLens/pkg/ai/speech"
	"github.com/1abhi6/BharatLens/pkg/ai/transcribe"
	"github.com/1abhi6/BharatLens/pkg/ai/vision"
	"github.com/1abhi6/BharatLens/pkg/document"
	"github.com/1abhi6/BharatLens/pkg/object-storage/local"
	"github.com/1abhi6/BharatLens/pkg/object-storage/s3"
	"github.com/1abhi6/BharatLens/pkg/safe"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

const STATIC_PATH = "/static"

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	httpEngine *gin.Engine
	redis      redis.UniversalClient
	limiters   *Limiters

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, //days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("bharatlens", "core"),
		httpEngine: gin.New(),
		limiters:   NewLimiters(),
	}

	setupRedis(core)
	setupSqlStore(core)
	artifacts := core.mustSetupArtifactStore()
	core.srv = srv.SetupSrvs(
		srv.ApplyArtifactStore(artifacts),
		core.mustSetupAI(artifacts),
	)

	return core
}

func setupRedis(core *Core) {
	if !core.cfg.Redis.Enabled() {
		slog.Info("redis not configured, transcription runs without a global gate")
		return
	}

	addrs := core.cfg.Redis.ClusterAddrs
	if !core.cfg.Redis.Cluster || len(addrs) == 0 {
		addrs = []string{core.cfg.Redis.Addr}
	}
	core.redis = redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: core.cfg.Redis.Password,
		DB:       core.cfg.Redis.DB,
		PoolSize: core.cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := core.redis.Ping(ctx).Err(); err != nil {
		panic(err)
	}
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	slog.Info("sql store ready")
}

func (s *Core) mustSetupArtifactStore() srv.ArtifactStore {
	conf := s.cfg.ObjectStorage
	switch conf.Driver {
	case s3.NAME:
		if conf.S3 == nil {
			panic("object_storage.s3 is required by the s3 driver")
		}
		return s3.NewS3Client(conf.S3.Endpoint, conf.S3.Region, conf.S3.Bucket, conf.S3.AccessKey, conf.S3.SecretKey,
			s3.WithPathStyle(conf.S3.UsePathStyle),
			s3.WithStaticDomain(conf.StaticDomain))
	default:
		baseURL := conf.StaticDomain
		if baseURL == "" {
			baseURL = "http://localhost" + s.cfg.Addr + STATIC_PATH
		}
		store, err := local.New(conf.Local.Dir, baseURL)
		if err != nil {
			panic(err)
		}
		return store
	}
}

func (s *Core) mustSetupAI(artifacts srv.ArtifactStore) srv.ApplyFunc {
	conf := s.cfg.AI
	driver := openai.New(conf.OpenAI.Token, conf.OpenAI.BaseURL, conf.OpenAI.ModelName)
	models := driver.Model()

	var ocr document.OCR
	if conf.BaiduOCR.APIURL != "" {
		ocr = baidu.New(conf.BaiduOCR)
	}
	extractor, err := document.New(context.Background(), safe.NewPool(s.cfg.Document.Workers), ocr)
	if err != nil {
		panic(err)
	}

	opts := []srv.AIOption{
		srv.WithCompleter(&meteredCompleter{Completer: driver, metrics: s.metrics, model: models.ChatModel}),
		srv.WithVision(vision.New(driver, models.VisionModel)),
		srv.WithDocumentExtractor(extractor),
		srv.WithSpeech(speech.New(driver, artifacts, models.TTSModel)),
	}
	if ocr != nil {
		opts = append(opts, srv.WithOCR(ocr))
	}

	if tc := conf.Transcribe; tc.Region != "" {
		provider, err := transcribe.NewAWS(context.Background(), tc.Region, tc.AccessKey, tc.SecretKey, tc.LanguageOptions)
		if err != nil {
			panic(err)
		}
		topts := []transcribe.Option{
			transcribe.WithObserver(func(jobName string, from, to transcribe.State) {
				s.metrics.TranscriptionStateInc(to.String())
			}),
		}
		if s.redis != nil && tc.MaxConcurrency > 0 {
			topts = append(topts, transcribe.WithGate(NewDistributedSemaphore(s.redis,
				transcribeSemaphoreKey(s.cfg.Redis.KeyPrefix), tc.MaxConcurrency, tc.Timeout.Duration+time.Minute)))
		}
		opts = append(opts, srv.WithTranscriber(transcribe.New(provider, transcribe.Config{
			PollInterval: tc.PollInterval.Duration,
			Timeout:      tc.Timeout.Duration,
		}, topts...)))
	} else {
		slog.Warn("transcribe region not configured, audio turns will carry no transcript")
	}

	return srv.ApplyAI(models, opts...)
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

// Redis is nil when no redis endpoint is configured.
func (s *Core) Redis() redis.UniversalClient {
	return s.redis
}

func (s *Core) UseLimiter(key string, opts ...LimitOption) Limiter {
	return s.limiters.Use(key, opts...)
}
