package conf

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/scenecast/scenecast/pkg/cache"
	"github.com/scenecast/scenecast/pkg/database"
	"github.com/scenecast/scenecast/pkg/http"
	"github.com/scenecast/scenecast/pkg/log"
	"github.com/scenecast/scenecast/pkg/metrics"
)

type AppConfig struct {
	Log       log.Conf
	Http      http.Http
	Mongo     database.Mongo
	Redis     cache.Redis
	Queue     Queue
	Metrics   metrics.Config
	Lifecycle Lifecycle
	Smtp      Smtp
}

// Queue holds the asynq worker settings.
type Queue struct {
	Concurrency    int
	StrictPriority bool
	LogLevel       string
}

// Lifecycle holds the organization deletion lifecycle settings.
// Durations for the undo window and deletion horizon are fixed
// constants in the service layer, not configuration.
type Lifecycle struct {
	SweepSpec string // cron spec for the daily cleanup sweep
	BaseUrl   string // base url for confirm/undo links
}

type Smtp struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confFile string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confFile)
		if err != nil {
			panic(fmt.Sprintf("load conf file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile loads the TOML config file and watches it for changes.
func LoadConfigFile(confFile string) (AppConfig, error) {
	config := viper.New()
	config.SetConfigFile(confFile)
	config.AddConfigPath("./conf.d")
	config.SetConfigName("config")
	config.SetConfigType("toml")
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, re-parsing: %s", e.Name)
		if err := config.Unmarshal(&cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	fmt.Printf("[Init] config file path: %s\n", confFile)

	return cfg, nil
}
