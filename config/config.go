package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTP        HTTP
	Postgres    Postgres
	Redis       Redis
	API         API
	Cache       Cache
	Session     Session
	Pricing     Pricing
	LLM         LLM
	Telegram    Telegram
	GoogleDrive GoogleDrive
	Jobs        Jobs
}

type HTTP struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	PricingPort     int           `env:"PRICING_PORT" envDefault:"8011"`
	RebalancePort   int           `env:"REBALANCE_PORT" envDefault:"8012"`
	CoordinatorPort int           `env:"COORDINATOR_PORT" envDefault:"8010"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
}

type Postgres struct {
	Host            string        `env:"PG_HOST" envDefault:"127.0.0.1"`
	Port            int           `env:"PG_PORT" envDefault:"5432"`
	DbName          string        `env:"PG_DB_NAME" envDefault:"invest_assistant"`
	Password        string        `env:"PG_PASSWORD" envDefault:""`
	User            string        `env:"PG_USER" envDefault:"postgres"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime int           `env:"PG_CONN_MAX_LIFETIME" envDefault:"300"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime int           `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"60"`
	MigrationDir    string        `env:"PG_MIGRATION_DIR" envDefault:"migrations"`
	Enabled         bool          `env:"PG_ENABLED" envDefault:"true"`
	ConnAttempts    int           `env:"PG_CONN_ATTEMPTS" envDefault:"10"`
	ConnRetryWait   time.Duration `env:"PG_CONN_RETRY_WAIT" envDefault:"1s"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type API struct {
	Debug               bool          `env:"API_DEBUG" envDefault:"false"`
	Timeout             time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
	RetryCount          int           `env:"API_RETRY_COUNT" envDefault:"3"`
	RetryWait           time.Duration `env:"API_RETRY_WAIT" envDefault:"1s"`
	YahooApi            YahooApi
	PricingServiceUrl   string `env:"PRICING_SERVICE_URL" envDefault:"http://127.0.0.1:8011"`
	RebalanceServiceUrl string `env:"REBALANCE_SERVICE_URL" envDefault:"http://127.0.0.1:8012"`
}

type YahooApi struct {
	Url                string        `env:"YAHOO_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	MinRequestInterval time.Duration `env:"YAHOO_MIN_REQUEST_INTERVAL" envDefault:"2s"`
	MaxRequestInterval time.Duration `env:"YAHOO_MAX_REQUEST_INTERVAL" envDefault:"15s"`
}

type Cache struct {
	QuotesExpiration   time.Duration `env:"CACHE_QUOTES_EXPIRATION" envDefault:"60s"`
	RepliesExpiration  time.Duration `env:"CACHE_REPLIES_EXPIRATION" envDefault:"5m"`
	ReplyMaxMessageLen int           `env:"CACHE_REPLY_MAX_MESSAGE_LEN" envDefault:"100"`
}

type Session struct {
	Expiration  time.Duration `env:"SESSION_EXPIRATION" envDefault:"24h"`
	MaxMessages int           `env:"SESSION_MAX_MESSAGES" envDefault:"40"`
}

type Pricing struct {
	FallbackEnabled bool     `env:"PRICING_FALLBACK_ENABLED" envDefault:"false"`
	Watchlist       []string `env:"PRICING_WATCHLIST" envDefault:"AAPL,MSFT,TSLA,AMZN,SHEL,LLOY.L,GOOGL,NVDA" envSeparator:","`
	MaxSymbols      int      `env:"PRICING_MAX_SYMBOLS" envDefault:"50"`
}

type LLM struct {
	ApiKey        string  `env:"GEMINI_API_KEY" envDefault:""`
	Model         string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	MaxTokens     int32   `env:"LLM_MAX_TOKENS" envDefault:"1024"`
	Temperature   float32 `env:"LLM_TEMPERATURE" envDefault:"0.1"`
	MaxToolRounds int     `env:"LLM_MAX_TOOL_ROUNDS" envDefault:"6"`
}

type Telegram struct {
	Token      string        `env:"TELEGRAM_TOKEN" envDefault:""`
	UpdTimeout time.Duration `env:"TELEGRAM_UPD_TIMEOUT" envDefault:"10s"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"24h"`
}

type Jobs struct {
	WarmQuotesInterval  time.Duration `env:"WARM_QUOTES_JOB_INTERVAL" envDefault:"1m"`
	CleanExportsCrontab string        `env:"CLEAN_EXPORTS_JOB_CRONTAB" envDefault:"0 0 3 * * *"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg, err := Load()
	if err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}

	return cfg, nil
}
