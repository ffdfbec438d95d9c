package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"pacta-backend/pkg/config"
)

type Config struct {
	Server       config.ServerConfig `yaml:"server"`
	DB           config.DBConfig     `yaml:"db"`
	MQ           config.MQConfig     `yaml:"mq"`
	Redis        config.RedisConfig  `yaml:"redis"`
	JWT          config.JWTConfig    `yaml:"jwt"`
	Notification struct {
		CleanupThresholdDays int `yaml:"cleanup_threshold_days"`
		ExpiryWindowDays     int `yaml:"expiry_window_days"`
	} `yaml:"notification"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// Environment variables win over file config.
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)

	if cfg.Notification.CleanupThresholdDays == 0 {
		cfg.Notification.CleanupThresholdDays = 90
	}
	if cfg.Notification.ExpiryWindowDays == 0 {
		cfg.Notification.ExpiryWindowDays = 30
	}

	return &cfg
}
