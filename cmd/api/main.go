package main

import (
	"DiningApi/internal/data"
	"DiningApi/internal/events"
	"DiningApi/internal/gateway"
	"DiningApi/internal/jsonlog"
	"DiningApi/internal/media"
	"context"
	"database/sql"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

type config struct {
	version   string
	Port      int    `yaml:"port"`
	Env       string `yaml:"env"`
	PublicURL string `yaml:"public_url"`
	LogLevel  string `yaml:"log_level"`
	DB        struct {
		Driver       string `yaml:"driver"`
		DSN          string `yaml:"dsn"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		MaxIdleTime  string `yaml:"max_idle_time"`
	} `yaml:"db"`
	Limiter struct {
		RPS     float64 `yaml:"rps"`
		Burst   int     `yaml:"burst"`
		Enabled bool    `yaml:"enabled"`
	} `yaml:"limiter"`
	CORS struct {
		TrustedOrigins []string `yaml:"trusted_origins"`
	} `yaml:"cors"`
	Media struct {
		Backend        string `yaml:"backend"`
		Dir            string `yaml:"dir"`
		BaseURL        string `yaml:"base_url"`
		TempDir        string `yaml:"temp_dir"`
		Workers        int    `yaml:"workers"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
		Bucket         string `yaml:"bucket"`
		Prefix         string `yaml:"prefix"`
		Region         string `yaml:"region"`
		Endpoint       string `yaml:"endpoint"`
		AccessKey      string `yaml:"access_key"`
		SecretKey      string `yaml:"secret_key"`
		UseSSL         bool   `yaml:"use_ssl"`
	} `yaml:"media"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Compress bool `yaml:"compress"`
}

type application struct {
	logger       *jsonlog.Logger
	config       config
	models       data.Models
	customers    *gateway.Gateway[data.Customer]
	dishes       *gateway.Gateway[data.Dish]
	hub          *events.Hub
	mediaHandler http.Handler
	wg           sync.WaitGroup
}

func main() {
	cfg := defaultConfig()

	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	if path := configPath(os.Args[1:]); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			logger.PrintFatal(err, map[string]string{"config": path})
		}
	}

	// Server Config
	flag.String("config", "", "Optional YAML config file; flags override its values")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "http server port")
	flag.StringVar(&cfg.Env, "env", cfg.Env, "Environment (development|staging|production)")
	flag.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL,
		"Public base URL for links and Location headers (default derived from the request)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level (info|error|fatal|off)")

	// Database Config
	flag.StringVar(&cfg.DB.Driver, "db-driver", cfg.DB.Driver, "Store driver (postgres|pgx|memory)")
	flag.StringVar(&cfg.DB.DSN, "db-dsn", cfg.DB.DSN, "DB connection string")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", cfg.DB.MaxOpenConns,
		"PostgreSQL max open connections")
	flag.IntVar(&cfg.DB.MaxIdleConns, "db-max-idle-conns", cfg.DB.MaxIdleConns,
		"PostgreSQL max idle connections")
	flag.StringVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", cfg.DB.MaxIdleTime,
		"PostgreSQL max connection idle time")

	// Limiter Config
	flag.Float64Var(&cfg.Limiter.RPS, "limiter-rps", cfg.Limiter.RPS, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.Limiter.Burst, "limiter-burst", cfg.Limiter.Burst, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", cfg.Limiter.Enabled, "Enable rate limiter")

	// CORS Config
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		origins := strings.Fields(val)
		if slices.Contains(origins, "*") {
			return errors.New("cannot set CORS trusted origin to \"*\"; list the origins explicitly")
		}
		cfg.CORS.TrustedOrigins = origins
		return nil
	})

	// Media Config
	flag.StringVar(&cfg.Media.Backend, "media-backend", cfg.Media.Backend, "Media backend (local|s3|minio)")
	flag.StringVar(&cfg.Media.Dir, "media-dir", cfg.Media.Dir, "Directory for the local media backend")
	flag.StringVar(&cfg.Media.BaseURL, "media-base-url", cfg.Media.BaseURL, "Public URL prefix of stored media")
	flag.StringVar(&cfg.Media.TempDir, "media-temp-dir", cfg.Media.TempDir,
		"Directory for spooled uploads (default OS temp dir)")
	flag.IntVar(&cfg.Media.Workers, "media-workers", cfg.Media.Workers, "Maximum concurrent media uploads")
	flag.Int64Var(&cfg.Media.MaxUploadBytes, "media-max-upload-bytes", cfg.Media.MaxUploadBytes,
		"Maximum accepted upload size in bytes")
	flag.StringVar(&cfg.Media.Bucket, "media-bucket", cfg.Media.Bucket, "S3/MinIO bucket")
	flag.StringVar(&cfg.Media.Prefix, "media-prefix", cfg.Media.Prefix, "Object key prefix inside the bucket")
	flag.StringVar(&cfg.Media.Region, "media-region", cfg.Media.Region, "S3 region")
	flag.StringVar(&cfg.Media.Endpoint, "media-endpoint", cfg.Media.Endpoint, "S3/MinIO endpoint")
	flag.StringVar(&cfg.Media.AccessKey, "media-access-key", cfg.Media.AccessKey, "MinIO access key")
	flag.StringVar(&cfg.Media.SecretKey, "media-secret-key", cfg.Media.SecretKey, "MinIO secret key")
	flag.BoolVar(&cfg.Media.UseSSL, "media-use-ssl", cfg.Media.UseSSL, "Use TLS for MinIO")

	// Events Config
	flag.StringVar(&cfg.AMQP.URL, "amqp-url", cfg.AMQP.URL, "AMQP broker URL (empty disables publishing)")
	flag.StringVar(&cfg.AMQP.Exchange, "amqp-exchange", cfg.AMQP.Exchange, "AMQP topic exchange for change events")

	flag.BoolVar(&cfg.Compress, "compress", cfg.Compress, "Gzip compress responses")

	// Version
	displayVersion := flag.Bool("version", false, "Show API version and immediately exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version: %s\n", cfg.version)
		os.Exit(0)
	}

	logger = newLogger(cfg, os.Stdout)

	models, db, err := openModels(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	if db != nil {
		defer db.Close()
		logger.PrintInfo("database connection pool established", map[string]string{"driver": cfg.DB.Driver})
	}

	uploader, mediaHandler, err := openUploader(context.Background(), cfg)
	if err != nil {
		logger.PrintFatal(err, map[string]string{"media_backend": cfg.Media.Backend})
	}

	hub := events.NewHub()
	publishers := events.Multi{hub}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.PrintFatal(err, nil)
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		logger.PrintInfo("publishing change events", map[string]string{"exchange": cfg.AMQP.Exchange})
	}

	expvar.NewString("version").Set(cfg.version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	if db != nil {
		expvar.Publish("database", expvar.Func(func() any {
			return db.Stats()
		}))
	}
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))

	app := newApplication(cfg, logger, models, media.NewOffloader(uploader, cfg.Media.Workers),
		hub, publishers)
	app.mediaHandler = mediaHandler

	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

func newLogger(cfg config, out io.Writer) *jsonlog.Logger {
	return jsonlog.New(out, jsonlog.ParseLevel(cfg.LogLevel))
}

// newApplication wires one gateway per resource over models.
func newApplication(cfg config, logger *jsonlog.Logger, models data.Models, offloader *media.Offloader,
	hub *events.Hub, publisher events.Publisher) *application {
	return &application{
		logger: logger,
		config: cfg,
		models: models,
		hub:    hub,
		customers: gateway.New(gateway.Config[data.Customer]{
			Kind:     "customers",
			Store:    models.Customers,
			Links:    gateway.NewLinkResolver("/customers"),
			Merge:    data.MergeCustomer,
			Media:    offloader,
			SetMedia: data.WithCustomerPicture,
			TempDir:  cfg.Media.TempDir,
			Events:   publisher,
			Logger:   logger,
		}),
		dishes: gateway.New(gateway.Config[data.Dish]{
			Kind:   "dishes",
			Store:  models.Dishes,
			Links:  gateway.NewLinkResolver("/dishes"),
			Merge:  data.MergeDish,
			Events: publisher,
			Logger: logger,
		}),
	}
}

func openModels(cfg config) (data.Models, *sql.DB, error) {
	if cfg.DB.Driver == "memory" {
		return data.NewMemoryModels(), nil, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return data.Models{}, nil, err
	}
	return data.NewModels(db), db, nil
}

func openDB(cfg config) (*sql.DB, error) {
	switch cfg.DB.Driver {
	case "postgres", "pgx":
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}

	db, err := sql.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	duration, err := time.ParseDuration(cfg.DB.MaxIdleTime)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// openUploader returns the configured media backend. The handler is only set for the local
// backend, which serves its own files.
func openUploader(ctx context.Context, cfg config) (media.Uploader, http.Handler, error) {
	switch cfg.Media.Backend {
	case "local":
		store, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Handler(), nil

	case "s3":
		s3Cfg := media.S3Config{
			Region:   cfg.Media.Region,
			Endpoint: cfg.Media.Endpoint,
			Bucket:   cfg.Media.Bucket,
			Prefix:   cfg.Media.Prefix,
			BaseURL:  cfg.Media.BaseURL,
		}
		client, err := media.NewS3Client(ctx, s3Cfg)
		if err != nil {
			return nil, nil, err
		}
		return media.NewS3Store(client, s3Cfg), nil, nil

	case "minio":
		minioCfg := media.MinioConfig{
			Endpoint:  cfg.Media.Endpoint,
			AccessKey: cfg.Media.AccessKey,
			SecretKey: cfg.Media.SecretKey,
			UseSSL:    cfg.Media.UseSSL,
			Bucket:    cfg.Media.Bucket,
			Prefix:    cfg.Media.Prefix,
			BaseURL:   cfg.Media.BaseURL,
		}
		client, err := media.NewMinioClient(minioCfg)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := media.NewMinioStore(ctx, client, minioCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported media backend %q", cfg.Media.Backend)
	}
}
