package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Workers struct {
		PoolSize  int           `yaml:"pool_size" default:"4"`
		QueueSize int           `yaml:"queue_size" default:"100"`
		Timeout   time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"workers"`

	Telegram struct {
		BotToken        string  `yaml:"bot_token"`
		OwnerID         int64   `yaml:"owner_id"`
		AuthorizedUsers []int64 `yaml:"authorized_users"`
		Debug           bool    `yaml:"debug" default:"false"`
	} `yaml:"telegram"`

	Pipeline struct {
		MinKeywords      int           `yaml:"min_keywords" default:"2"`
		ShortPostLength  int           `yaml:"short_post_length" default:"300"`
		DedupWindow      time.Duration `yaml:"dedup_window" default:"168h"`
		Retention        time.Duration `yaml:"retention" default:"720h"`
		CleanupInterval  time.Duration `yaml:"cleanup_interval" default:"6h"`
		DefaultThreshold int           `yaml:"default_threshold" default:"70"`
	} `yaml:"pipeline"`

	Scraper struct {
		Engine             string        `yaml:"engine" default:"static"`
		UserAgent          string        `yaml:"user_agent"`
		RequestTimeout     time.Duration `yaml:"request_timeout" default:"15s"`
		MaxBodySize        int64         `yaml:"max_body_size" default:"5242880"`
		MinRequestInterval time.Duration `yaml:"min_request_interval" default:"1s"`
		BlockedDomains     []string      `yaml:"blocked_domains"`
	} `yaml:"scraper"`

	Firecrawl struct {
		APIKey  string        `yaml:"api_key"`
		APIURL  string        `yaml:"api_url" default:"https://api.firecrawl.dev"`
		Timeout time.Duration `yaml:"timeout" default:"60s"`
	} `yaml:"firecrawl"`

	Embeddings struct {
		Provider   string        `yaml:"provider" default:"hashing"`
		Model      string        `yaml:"model" default:"all-MiniLM-L6-v2"`
		Endpoint   string        `yaml:"endpoint"`
		APIKey     string        `yaml:"api_key"`
		Dimensions int           `yaml:"dimensions" default:"384"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"embeddings"`

	Redis struct {
		Enabled  bool          `yaml:"enabled" default:"false"`
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`

	Store struct {
		Path string `yaml:"path" default:"data/jobsonar.db"`
	} `yaml:"store"`

	Profiles struct {
		Dir string `yaml:"dir" default:"data/profiles"`
		Key string `yaml:"key"`
	} `yaml:"profiles"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	// Expand ${VAR} syntax
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	// Expand $VAR syntax (but avoid replacing ${VAR} that was already processed)
	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if env var not found
	})

	return s
}

// DefaultConfig returns a config populated with built-in defaults
func DefaultConfig() *Config {
	config := &Config{}

	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.PoolSize = 4
	config.Workers.QueueSize = 100
	config.Workers.Timeout = 60 * time.Second

	config.Pipeline.MinKeywords = 2
	config.Pipeline.ShortPostLength = 300
	config.Pipeline.DedupWindow = 7 * 24 * time.Hour
	config.Pipeline.Retention = 30 * 24 * time.Hour
	config.Pipeline.CleanupInterval = 6 * time.Hour
	config.Pipeline.DefaultThreshold = 70

	config.Scraper.Engine = "static"
	config.Scraper.RequestTimeout = 15 * time.Second
	config.Scraper.MaxBodySize = 5 * 1024 * 1024
	config.Scraper.MinRequestInterval = time.Second
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Scraper.BlockedDomains = []string{
		"linkedin.com",
		"indeed.com",
		"glassdoor.com",
		"x.com",
		"twitter.com",
	}

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second

	config.Embeddings.Provider = "hashing"
	config.Embeddings.Model = "all-MiniLM-L6-v2"
	config.Embeddings.Dimensions = 384
	config.Embeddings.Timeout = 30 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	config.Store.Path = "data/jobsonar.db"

	config.Profiles.Dir = "data/profiles"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := DefaultConfig()

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			// Expand environment variables in the YAML content
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.BotToken = token
	}

	if ownerID := os.Getenv("TELEGRAM_OWNER_ID"); ownerID != "" {
		if id, err := strconv.ParseInt(ownerID, 10, 64); err == nil {
			c.Telegram.OwnerID = id
		}
	}

	if users := os.Getenv("TELEGRAM_AUTHORIZED_USERS"); users != "" {
		var ids []int64
		for _, part := range strings.Split(users, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			c.Telegram.AuthorizedUsers = ids
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if engine := os.Getenv("SCRAPER_ENGINE"); engine != "" {
		c.Scraper.Engine = engine
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if provider := os.Getenv("EMBEDDINGS_PROVIDER"); provider != "" {
		c.Embeddings.Provider = provider
	}

	if model := os.Getenv("EMBEDDINGS_MODEL"); model != "" {
		c.Embeddings.Model = model
	}

	if endpoint := os.Getenv("EMBEDDINGS_ENDPOINT"); endpoint != "" {
		c.Embeddings.Endpoint = endpoint
	}

	if apiKey := os.Getenv("EMBEDDINGS_API_KEY"); apiKey != "" {
		c.Embeddings.APIKey = apiKey
	}

	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		c.Redis.Enabled = redisEnabled == "true" || redisEnabled == "1"
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
		c.Redis.Enabled = true
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if storePath := os.Getenv("STORE_PATH"); storePath != "" {
		c.Store.Path = storePath
	}

	if profilesDir := os.Getenv("PROFILES_DIR"); profilesDir != "" {
		c.Profiles.Dir = profilesDir
	}

	if profilesKey := os.Getenv("PROFILES_KEY"); profilesKey != "" {
		c.Profiles.Key = profilesKey
	}

	if threshold := os.Getenv("DEFAULT_MATCH_THRESHOLD"); threshold != "" {
		if t, err := strconv.Atoi(threshold); err == nil {
			c.Pipeline.DefaultThreshold = t
		}
	}

	if window := os.Getenv("DEDUP_WINDOW"); window != "" {
		if d, err := time.ParseDuration(window); err == nil {
			c.Pipeline.DedupWindow = d
		}
	}

	if retention := os.Getenv("RETENTION"); retention != "" {
		if d, err := time.ParseDuration(retention); err == nil {
			c.Pipeline.Retention = d
		}
	}
}

// IsAuthorized reports whether a Telegram user may drive the bot. The
// owner is always authorized.
func (c *Config) IsAuthorized(userID int64) bool {
	if userID == c.Telegram.OwnerID {
		return true
	}
	for _, id := range c.Telegram.AuthorizedUsers {
		if id == userID {
			return true
		}
	}
	return false
}
