package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Бэкенды хранилища токенов.
const (
	TokenStoreFirestore = "firestore"
	TokenStoreRedis     = "redis"
)

// Режимы отправки push.
const (
	PushModeFCM  = "fcm"
	PushModeStub = "stub"
)

const defaultSecretsDir = "/run/secrets"

type Config struct {
	Env               string        `yaml:"env" env:"ENV" env-default:"production"`
	WorkerConcurrency int           `yaml:"worker_concurrency" env:"WORKER_CONCURRENCY" env-default:"10"`
	DispatchTimeout   time.Duration `yaml:"dispatch_timeout" env:"DISPATCH_TIMEOUT" env-default:"60s"`
	SecretsDir        string        `yaml:"secrets_dir" env:"SECRETS_DIR" env-default:"/run/secrets"`

	Server       ServerConfig       `yaml:"server"`
	Firebase     FirebaseConfig     `yaml:"firebase"`
	Firestore    FirestoreConfig    `yaml:"firestore"`
	TokenStore   TokenStoreConfig   `yaml:"token_store"`
	Redis        RedisConfig        `yaml:"redis"`
	RabbitMQ     RabbitMQConfig     `yaml:"rabbitmq"`
	Watcher      WatcherConfig      `yaml:"watcher"`
	Push         PushConfig         `yaml:"push"`
	InterService InterServiceConfig `yaml:"inter_service"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	CORS         CORSConfig         `yaml:"cors"`
	Log          LogConfig          `yaml:"log"`
}

type ServerConfig struct {
	Port         string        `yaml:"port" env:"HTTP_PORT" env-default:"8088"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"75s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	CredentialsPath string `yaml:"credentials_path" env:"FIREBASE_CREDENTIALS_PATH"` // Путь к ключу сервис-аккаунта, пусто - ADC
}

type FirestoreConfig struct {
	NotificationsCollection string `yaml:"notifications_collection" env:"FIRESTORE_NOTIFICATIONS_COLLECTION" env-default:"notifications"`
	TokensCollection        string `yaml:"tokens_collection" env:"FIRESTORE_TOKENS_COLLECTION" env-default:"fcm_tokens"`
}

type TokenStoreConfig struct {
	Backend string `yaml:"backend" env:"TOKEN_STORE_BACKEND" env-default:"firestore"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR"`
	Password  string `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_TOKEN_KEY_PREFIX" env-default:"fcm_tokens"`
}

type RabbitMQConfig struct {
	URI       string `yaml:"uri" env:"RABBITMQ_URI"` // Пусто - события обрабатываются в процессе
	QueueName string `yaml:"queue_name" env:"NOTIFICATION_QUEUE_NAME" env-default:"notification_created"`
}

type WatcherConfig struct {
	Enabled bool `yaml:"enabled" env:"WATCHER_ENABLED" env-default:"true"`
}

type PushConfig struct {
	Mode string `yaml:"mode" env:"PUSH_MODE" env-default:"fcm"`
}

type InterServiceConfig struct {
	Secret    string        `yaml:"secret" env:"INTER_SERVICE_SECRET"`
	ServiceID string        `yaml:"service_id" env:"SERVICE_ID" env-default:"notification-service"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"INTER_SERVICE_TOKEN_TTL" env-default:"1h"`
}

type RateLimitConfig struct {
	TestTriggerLimit int           `yaml:"test_trigger_limit" env:"TEST_TRIGGER_RATE_LIMIT" env-default:"5"`
	Window           time.Duration `yaml:"window" env:"TEST_TRIGGER_RATE_WINDOW" env-default:"1m"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
}

// GetAllowedOrigins разбивает CORS_ALLOWED_ORIGINS по запятой.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORS.AllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORS.AllowedOrigins, " ", ""), ",")
}

// UseBroker сообщает, идут ли события через RabbitMQ.
func (c *Config) UseBroker() bool {
	return c.RabbitMQ.URI != ""
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error
	switch c.TokenStore.Backend {
	case TokenStoreFirestore:
	case TokenStoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when TOKEN_STORE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown token store backend %q", c.TokenStore.Backend))
	}
	switch c.Push.Mode {
	case PushModeFCM, PushModeStub:
	default:
		errs = append(errs, fmt.Errorf("unknown push mode %q", c.Push.Mode))
	}
	if c.WorkerConcurrency <= 0 {
		errs = append(errs, errors.New("WORKER_CONCURRENCY must be positive"))
	}
	if c.DispatchTimeout <= 0 {
		errs = append(errs, errors.New("DISPATCH_TIMEOUT must be positive"))
	}
	if c.RateLimit.TestTriggerLimit <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("test trigger rate limit and window must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig читает .env (если есть), затем config.yml с откатом на переменные окружения.
// Секреты, не заданные в окружении, дочитываются из файлов Docker secrets.
func LoadConfig(configPath, envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Предупреждение: не удалось загрузить %s: %v", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v. Попытка чтения из переменных окружения.", configPath, err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
	}

	cfg.loadSecrets()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}
	return &cfg, nil
}

func (c *Config) loadSecrets() {
	dir := c.SecretsDir
	if dir == "" {
		dir = defaultSecretsDir
	}
	if c.InterService.Secret == "" {
		if s, err := readSecret(dir, "inter_service_secret"); err == nil {
			c.InterService.Secret = s
		}
	}
	if c.Redis.Password == "" {
		if s, err := readSecret(dir, "redis_password"); err == nil {
			c.Redis.Password = s
		}
	}
}

func readSecret(dir, name string) (string, error) {
	filePath := filepath.Join(dir, name)
	b, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(b))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
