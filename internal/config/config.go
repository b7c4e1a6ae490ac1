package config

import (
	"os"
	"runtime"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	RabbitMQHost     string `env:"RABBIT_HOST" env-default:"127.0.0.1"`
	RabbitMQPort     int    `env:"RABBIT_PORT" env-default:"5672"`
	RabbitMQUser     string `env:"RABBIT_USER" env-required:"true"`
	RabbitMQPassword string `env:"RABBIT_PASSWORD" env-required:"true"`

	MinIOHost     string `env:"MINIO_HOST" env-default:"127.0.0.1:9000"`
	MinIOLogin    string `env:"MINIO_LOGIN" env-required:"true"`
	MinIOPassword string `env:"MINIO_PASSWORD" env-required:"true"`
	MinIOBucket   string `env:"MINIO_BUCKET" env-default:"testcases"`

	// WorkersCount sizes the AMQP worker pool; 0 means NumCPU.
	WorkersCount int `env:"WORKERS_COUNT" env-default:"0"`
	// MaxConcurrentRuns caps in-flight sandboxed executions host-wide.
	MaxConcurrentRuns int `env:"MAX_CONCURRENT_RUNS" env-default:"0"`
	// TestConcurrency caps parallel cases within one batch.
	TestConcurrency int `env:"TEST_CONCURRENCY" env-default:"0"`

	PythonBin    string `env:"PYTHON_BIN" env-default:"python3"`
	NodeBin      string `env:"NODE_BIN" env-default:"node"`
	WorkRoot     string `env:"WORK_ROOT" env-default:""`
	// EnableCgroup defaults to on so memory budgets are enforced, not
	// just accounted; hosts without a writable cgroup v2 hierarchy fall
	// back to rusage accounting automatically.
	EnableCgroup bool   `env:"ENABLE_CGROUP" env-default:"true"`
	CgroupParent string `env:"CGROUP_PARENT" env-default:"simuladores"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig(".env", cfg)
	if os.IsNotExist(err) {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}
	if cfg.WorkersCount <= 0 {
		cfg.WorkersCount = runtime.NumCPU()
	}

	return cfg, nil
}
