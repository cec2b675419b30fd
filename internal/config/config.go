package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	BotToken      string `env:"BOT_TOKEN" env-required:"true"`
	BotOwner      int64  `env:"BOT_OWNER" env-required:"true"`
	OwnerUsername string `env:"OWNER_USERNAME"`

	AuthChannelID int64  `env:"AUTH_CHANNEL" env-required:"true"`
	ChannelURL    string `env:"CHANNEL_URL"`
	LogsChannelID int64  `env:"LOGS_CHANNEL"`

	FreeUserCooldown   time.Duration `env:"FREE_USER_TIMER" env-default:"1800s"`
	MaxConcurrentTasks int           `env:"MAX_CONCURRENT_TASKS" env-default:"75"`
	MaxMessageLength   int           `env:"MAX_MESSAGE_LENGTH" env-default:"4096"`

	DownloadDir    string        `env:"DOWNLOAD_LOCATION" env-default:"downloaded"`
	LogFile        string        `env:"LOG_FILE" env-default:"unarch-bot.log"`
	UnpackWorkers  int           `env:"UNPACK_WORKERS" env-default:"3"`
	TaskTTL        time.Duration `env:"TASK_TTL" env-default:"24h"`
	ExtractTimeout time.Duration `env:"MAX_TASK_DURATION_EXTRACT" env-default:"2h"`
	MergeTimeout   time.Duration `env:"MAX_TASK_DURATION_MERGE" env-default:"4h"`

	Redis       Redis  `env-prefix:"REDIS_"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

type Redis struct {
	Host     string `env:"HOST" env-default:"localhost"`
	Port     string `env:"PORT" env-default:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" env-default:"0"`
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load seeds the environment from the optional env file, then fills
// the Config from the environment. Values set in the real environment
// win over the file.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" {
			continue
		}
		v = strings.Trim(v, `"'`)
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		_ = os.Setenv(k, v)
	}
	return sc.Err()
}
