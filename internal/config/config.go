package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	ShutdownSecond  int    `mapstructure:"shutdown_seconds"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_seconds"`
	BodyLimitMB     int    `mapstructure:"body_limit_mb"`
}

type MongoConf struct {
	URI          string `mapstructure:"uri"`
	Database     string `mapstructure:"database"`
	Transactions bool   `mapstructure:"transactions"`
	OpTimeoutSec int    `mapstructure:"op_timeout_seconds"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	AccessSecret  string `mapstructure:"access_secret"`
	AccessExpiry  string `mapstructure:"access_expiry"`
	RefreshSecret string `mapstructure:"refresh_secret"`
	RefreshExpiry string `mapstructure:"refresh_expiry"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

type MediaConf struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	TimeoutSec      int    `mapstructure:"timeout_seconds"`
	MaxImageWidth   int    `mapstructure:"max_image_width"`
	MaxImageHeight  int    `mapstructure:"max_image_height"`
}

type UploadConf struct {
	StagingPath string `mapstructure:"staging_path"`
	MaxVideoMB  int    `mapstructure:"max_video_mb"`
	MaxImageMB  int    `mapstructure:"max_image_mb"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type RateLimitConf struct {
	PerMinute int `mapstructure:"per_minute"`
}

type CORSConf struct {
	Origin string `mapstructure:"origin"`
}

type Config struct {
	App       AppConf       `mapstructure:"app"`
	Mongo     MongoConf     `mapstructure:"mongodb"`
	Redis     RedisConf     `mapstructure:"redis"`
	JWT       JWTConf       `mapstructure:"jwt"`
	Media     MediaConf     `mapstructure:"media"`
	Upload    UploadConf    `mapstructure:"upload"`
	Kafka     KafkaConf     `mapstructure:"kafka"`
	RateLimit RateLimitConf `mapstructure:"rate_limit"`
	CORS      CORSConf      `mapstructure:"cors"`
	Log       struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	// derived
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	OpTimeout       time.Duration
	MediaTimeout    time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

// envBindings maps config keys to the environment names operators already use.
var envBindings = map[string]string{
	"app.env":                 "APP_ENV",
	"app.port":                "APP_PORT",
	"mongodb.uri":             "MONGODB_URI",
	"mongodb.database":        "MONGODB_DATABASE",
	"mongodb.transactions":    "MONGODB_TRANSACTIONS",
	"redis.addr":              "REDIS_ADDR",
	"redis.password":          "REDIS_PASSWORD",
	"jwt.access_secret":       "ACCESS_TOKEN_SECRET",
	"jwt.access_expiry":       "ACCESS_TOKEN_EXPIRY",
	"jwt.refresh_secret":      "REFRESH_TOKEN_SECRET",
	"jwt.refresh_expiry":      "REFRESH_TOKEN_EXPIRY",
	"media.region":            "MEDIA_REGION",
	"media.bucket":            "MEDIA_BUCKET",
	"media.endpoint":          "MEDIA_ENDPOINT",
	"media.access_key_id":     "MEDIA_ACCESS_KEY_ID",
	"media.secret_access_key": "MEDIA_SECRET_ACCESS_KEY",
	"media.public_base_url":   "MEDIA_PUBLIC_BASE_URL",
	"upload.staging_path":     "UPLOAD_STAGING_PATH",
	"kafka.brokers":           "KAFKA_BROKERS",
	"cors.origin":             "CORS_ORIGIN",
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	// KAFKA_BROKERS arrives as one comma separated string
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Port == 0 {
		c.App.Port = 8000
	}
	if c.App.ShutdownSecond == 0 {
		c.App.ShutdownSecond = 15
	}
	if c.App.ReadTimeoutSec == 0 {
		c.App.ReadTimeoutSec = 60
	}
	if c.App.WriteTimeoutSec == 0 {
		c.App.WriteTimeoutSec = 60
	}
	if c.App.BodyLimitMB == 0 {
		c.App.BodyLimitMB = 512
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "videotube"
	}
	if c.Mongo.OpTimeoutSec == 0 {
		c.Mongo.OpTimeoutSec = 10
	}
	if c.JWT.AccessExpiry == "" {
		c.JWT.AccessExpiry = "1d"
	}
	if c.JWT.RefreshExpiry == "" {
		c.JWT.RefreshExpiry = "10d"
	}
	if c.Media.Region == "" {
		c.Media.Region = "us-east-1"
	}
	if c.Media.TimeoutSec == 0 {
		c.Media.TimeoutSec = 120
	}
	if c.Media.MaxImageWidth == 0 {
		c.Media.MaxImageWidth = 1920
	}
	if c.Media.MaxImageHeight == 0 {
		c.Media.MaxImageHeight = 1080
	}
	if c.Upload.StagingPath == "" {
		c.Upload.StagingPath = "./public/temp"
	}
	if c.Upload.MaxVideoMB == 0 {
		c.Upload.MaxVideoMB = 500
	}
	if c.Upload.MaxImageMB == 0 {
		c.Upload.MaxImageMB = 10
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "video-events"
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 60
	}
	if c.CORS.Origin == "" {
		c.CORS.Origin = "*"
	}

	var err error
	if c.AccessTTL, err = ParseExpiry(c.JWT.AccessExpiry); err != nil {
		return err
	}
	if c.RefreshTTL, err = ParseExpiry(c.JWT.RefreshExpiry); err != nil {
		return err
	}
	c.ShutdownTimeout = time.Duration(c.App.ShutdownSecond) * time.Second
	c.ReadTimeout = time.Duration(c.App.ReadTimeoutSec) * time.Second
	c.WriteTimeout = time.Duration(c.App.WriteTimeoutSec) * time.Second
	c.OpTimeout = time.Duration(c.Mongo.OpTimeoutSec) * time.Second
	c.MediaTimeout = time.Duration(c.Media.TimeoutSec) * time.Second
	return nil
}

func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
