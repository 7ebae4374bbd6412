package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Africa/Lagos"
	configPathEnv   = "INCIDENT_SCANNER_CONFIG"

	databaseDSNEnv        = "DATABASE_DSN"
	logLevelEnv           = "LOG_LEVEL"
	aiProviderEnv         = "AI_PROVIDER"
	openRouterKeyEnv      = "OPENROUTER_API_KEY"
	chutesKeyEnv          = "CHUTES_API_KEY"
	openAIKeyEnv          = "OPENAI_API_KEY"
	anthropicKeyEnv       = "ANTHROPIC_API_KEY"
	geminiKeyEnv          = "GEMINI_API_KEY"
	ollamaURLEnv          = "OLLAMA_URL"
	redisAddrEnv          = "REDIS_ADDR"
	redisPasswordEnv      = "REDIS_PASSWORD"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
	amqpURLEnv            = "AMQP_URL"
	serverAddrEnv         = "HTTP_ADDR"
	lookbackDaysEnv       = "DEDUP_LOOKBACK_DAYS"
	classifierAttemptsEnv = "CLASSIFIER_MAX_ATTEMPTS"
	classifierDelayEnv    = "CLASSIFIER_BASE_DELAY"
)

var (
	// ErrNoSites is returned by Validate when no feed is configured.
	ErrNoSites = errors.New("no sites configured")
	// ErrNoDatabase is returned by Validate when the store DSN is empty.
	ErrNoDatabase = errors.New("database dsn is not configured")
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Server        ServerConfig       `yaml:"server"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Providers     ProvidersConfig    `yaml:"providers"`
	Dedup         DedupConfig        `yaml:"dedup"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Keywords      KeywordsConfig     `yaml:"keywords"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// RedisConfig enables the distributed run lock when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockKey  string        `yaml:"lockKey"`
	LockTTL  time.Duration `yaml:"lockTtl"`
}

// SchedulerConfig defines how often the pipeline should run.
type SchedulerConfig struct {
	Interval   time.Duration  `yaml:"interval"`
	RunOnStart bool           `yaml:"runOnStart"`
	Timezone   string         `yaml:"timezone"`
	location   *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ServerConfig exposes the status and metrics endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ClassifierConfig controls provider selection, retries and pacing.
type ClassifierConfig struct {
	Provider      string        `yaml:"provider"`
	MaxAttempts   int           `yaml:"maxAttempts"`
	BaseDelay     time.Duration `yaml:"baseDelay"`
	CallDelay     time.Duration `yaml:"callDelay"`
	Timeout       time.Duration `yaml:"timeout"`
	AcceptedTypes []string      `yaml:"acceptedTypes"`
	Jitter        float64       `yaml:"jitter"`
}

// ProvidersConfig keeps credentials for every supported classification provider.
type ProvidersConfig struct {
	OpenRouter ProviderConfig `yaml:"openrouter"`
	Chutes     ProviderConfig `yaml:"chutes"`
	OpenAI     ProviderConfig `yaml:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic"`
	Gemini     ProviderConfig `yaml:"gemini"`
	Ollama     ProviderConfig `yaml:"ollama"`
}

// ProviderConfig defines how to contact a single chat-completion API.
type ProviderConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`
}

// DedupConfig tunes article and incident duplicate detection.
type DedupConfig struct {
	LookbackDays      int     `yaml:"lookbackDays"`
	DateWindowDays    int     `yaml:"dateWindowDays"`
	ArticleThreshold  float64 `yaml:"articleThreshold"`
	CasualtyTolerance int     `yaml:"casualtyTolerance"`
	DuplicateScore    int     `yaml:"duplicateScore"`
}

// PipelineConfig holds per-article gates applied after fetching.
type PipelineConfig struct {
	MinContentLength int           `yaml:"minContentLength"`
	FetchTimeout     time.Duration `yaml:"fetchTimeout"`
}

// KeywordsConfig overrides the compiled-in pre-filter vocabulary; empty lists keep defaults.
type KeywordsConfig struct {
	Violence   []string `yaml:"violence"`
	Context    []string `yaml:"context"`
	Exclusions []string `yaml:"exclusions"`
}

// NotificationConfig encapsulates outbound channels (Telegram, AMQP).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	AMQP     AMQPConfig     `yaml:"amqp"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// AMQPConfig describes the exchange accepted incidents are published to.
type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routingKey"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig holds the concrete endpoints to crawl (feed or listing URLs).
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg := defaultConfig()
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports missing mandatory settings; the pipeline must not start without them.
func (c Config) Validate() error {
	var errs []error
	if len(c.Sites) == 0 {
		errs = append(errs, ErrNoSites)
	}
	for _, site := range c.Sites {
		if site.Scanner == "" {
			errs = append(errs, fmt.Errorf("site %q: scanner is empty", site.Name))
		}
		if len(site.Categories) == 0 {
			errs = append(errs, fmt.Errorf("site %q: no feed urls", site.Name))
		}
		for _, cat := range site.Categories {
			if cat.URL == "" {
				errs = append(errs, fmt.Errorf("site %q: category %q has empty url", site.Name, cat.Name))
			}
		}
	}
	if c.Database.DSN == "" {
		errs = append(errs, ErrNoDatabase)
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Database.DSN, databaseDSNEnv)
	setString(&c.Logging.Level, logLevelEnv)
	setString(&c.Classifier.Provider, aiProviderEnv)
	setString(&c.Providers.OpenRouter.APIKey, openRouterKeyEnv)
	setString(&c.Providers.Chutes.APIKey, chutesKeyEnv)
	setString(&c.Providers.OpenAI.APIKey, openAIKeyEnv)
	setString(&c.Providers.Anthropic.APIKey, anthropicKeyEnv)
	setString(&c.Providers.Gemini.APIKey, geminiKeyEnv)
	setString(&c.Providers.Ollama.BaseURL, ollamaURLEnv)
	setString(&c.Redis.Addr, redisAddrEnv)
	setString(&c.Redis.Password, redisPasswordEnv)
	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
	setString(&c.Notifications.AMQP.URL, amqpURLEnv)
	setString(&c.Server.Addr, serverAddrEnv)

	if v := os.Getenv(lookbackDaysEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Dedup.LookbackDays = n
		} else {
			log.Printf("config: ignoring %s=%q", lookbackDaysEnv, v)
		}
	}

	if v := os.Getenv(classifierAttemptsEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Classifier.MaxAttempts = n
		} else {
			log.Printf("config: ignoring %s=%q", classifierAttemptsEnv, v)
		}
	}

	if v := os.Getenv(classifierDelayEnv); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Classifier.BaseDelay = d
		} else {
			log.Printf("config: ignoring %s=%q", classifierDelayEnv, v)
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{Migrate: true},
		Redis: RedisConfig{
			LockKey: "incident-scanner:run-lock",
			LockTTL: 2 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Interval:   7 * time.Hour,
			RunOnStart: true,
			Timezone:   defaultTimezone,
		},
		Server: ServerConfig{Addr: ":8080"},
		Classifier: ClassifierConfig{
			Provider:    "openrouter",
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			CallDelay:   1500 * time.Millisecond,
			Timeout:     60 * time.Second,
			AcceptedTypes: []string{
				"Terrorism",
				"Banditry",
				"Unknown Gunmen",
			},
			Jitter: 0.2,
		},
		Providers: ProvidersConfig{
			OpenRouter: ProviderConfig{
				BaseURL: "https://openrouter.ai/api/v1",
				Model:   "google/gemini-2.0-flash-001",
			},
			Chutes: ProviderConfig{
				BaseURL: "https://llm.chutes.ai/v1",
				Model:   "deepseek-ai/DeepSeek-V3-0324",
			},
			OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
			Anthropic: ProviderConfig{Model: "claude-3-5-haiku-latest"},
			Gemini:    ProviderConfig{Model: "gemini-2.0-flash"},
			Ollama:    ProviderConfig{BaseURL: "http://localhost:11434", Model: "llama3.1"},
		},
		Dedup: DedupConfig{
			LookbackDays:      7,
			DateWindowDays:    3,
			ArticleThreshold:  0.4,
			CasualtyTolerance: 2,
			DuplicateScore:    3,
		},
		Pipeline: PipelineConfig{
			MinContentLength: 100,
			FetchTimeout:     20 * time.Second,
		},
		Notifications: NotificationConfig{
			AMQP: AMQPConfig{Exchange: "incidents", RoutingKey: "incident.created"},
		},
		Sites: []SiteConfig{
			{
				Name:    "Vanguard",
				Scanner: "rss",
				Categories: []CategoryConfig{
					{Name: "daily", URL: "https://www.vanguardngr.com/{date}/feed/"},
				},
				Options: map[string]string{"days": "2", "maxPages": "10", "paged": "true", "pageDelay": "1s"},
			},
			{
				Name:    "Punch",
				Scanner: "html",
				Categories: []CategoryConfig{
					{Name: "home", URL: "https://punchng.com"},
					{Name: "latest", URL: "https://punchng.com/latest"},
				},
				Options: map[string]string{
					"linkContains":     "punchng.com/",
					"limit":            "25",
					"minContentLength": "200",
					"maxParagraphs":    "10",
				},
			},
		},
	}
}
