package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Конечная структура конфигурации утилиты.
type Config struct {
	RAGFlow struct {
		Host         string        `mapstructure:"host"`          // http://localhost:9380
		APIToken     string        `mapstructure:"api_token"`     // ragflow-... (нужен только SDK-клиенту)
		PublicKey    string        `mapstructure:"public_key"`    // conf/public.pem
		Timeout      time.Duration `mapstructure:"timeout"`       // таймаут SDK-вызовов
		ProbeTimeout time.Duration `mapstructure:"probe_timeout"` // таймаут проверки сервера
	} `mapstructure:"ragflow"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // путь/префикс файла, пусто — только stderr
	} `mapstructure:"logs"`

	Database DatabaseConfig `mapstructure:"database"`

	Output struct {
		Dir string `mapstructure:"dir"` // куда писать ragflow_user_<suffix>.json
	} `mapstructure:"output"`
}

// DatabaseConfig — подключение к БД самого RAGFlow.
// DSN имеет приоритет над отдельными полями.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // "mysql" | "postgres"
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// SetDefaults регистрирует дефолты, совпадающие с docker-окружением RAGFlow.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ragflow.host", "http://localhost:9380")
	v.SetDefault("ragflow.api_token", "")
	v.SetDefault("ragflow.public_key", filepath.Join("conf", "public.pem"))
	v.SetDefault("ragflow.timeout", 60*time.Second)
	v.SetDefault("ragflow.probe_timeout", 5*time.Second)

	v.SetDefault("logs.level", "info")
	v.SetDefault("logs.format", "text")
	v.SetDefault("logs.file", "")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5455)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "infini_rag_flow")
	v.SetDefault("database.name", "rag_flow")

	v.SetDefault("output.dir", ".")
}

// Load читает конфиг из env/файла/флагов с дефолтами.
// Флаги должны быть привязаны к v до вызова (BindPFlag).
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvPrefix("RAGFLOWCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	// Источник файла
	cfgFile := strings.TrimSpace(v.GetString("config"))
	if cfgFile == "" {
		cfgFile = os.Getenv("CONFIG_FILE")
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "ragflowctl"))
		}
		v.AddConfigPath("/etc/ragflowctl")
	}

	// Чтение файла (опционально, но явно указанный файл обязан существовать)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) || cfgFile != "" {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	cfg.RAGFlow.Host = strings.TrimRight(strings.TrimSpace(cfg.RAGFlow.Host), "/")
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(c *Config) error {
	if c.RAGFlow.Host == "" {
		return errors.New("ragflow.host must not be empty")
	}
	if !strings.HasPrefix(c.RAGFlow.Host, "http://") && !strings.HasPrefix(c.RAGFlow.Host, "https://") {
		return fmt.Errorf("ragflow.host must be an http(s) URL, got %q", c.RAGFlow.Host)
	}
	switch c.Database.Driver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.RAGFlow.ProbeTimeout <= 0 {
		return errors.New("ragflow.probe_timeout must be positive")
	}
	return nil
}
