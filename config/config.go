package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/univlib/circulation-service/pkg/kafka"
	"github.com/univlib/circulation-service/pkg/logger"
	"github.com/univlib/circulation-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CIRCULATION_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"CIRCULATION_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ"`
	WriteTimeout time.Duration
}

// Circulation holds the policy knobs of the engine. Durations are the
// standing library rules; override per environment.
type Circulation struct {
	LoanPeriod     time.Duration `envconfig:"LOAN_PERIOD" default:"168h"`
	HoldTTL        time.Duration `envconfig:"HOLD_TTL" default:"48h"`
	ReadyTTL       time.Duration `envconfig:"READY_TTL" default:"48h"`
	PriorityWindow time.Duration `envconfig:"PRIORITY_WINDOW" default:"48h"`
	DailyFineRate  int64         `envconfig:"DAILY_FINE_RATE" default:"100"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"24h"`
	KafkaEnabled   bool          `envconfig:"KAFKA_ENABLED" default:"false"`
}

type Config struct {
	Server      HTTPServer   `yaml:"server"`
	Database    postgres.DB  `yaml:"db"`
	Kafka       kafka.Config `yaml:"kafka"`
	Circulation Circulation  `yaml:"circulation"`
	Log         logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
