package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	Kafka        Kafka
	Storage      Storage
	GeminiApiKey string
	StageTimeout time.Duration
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Kafka struct {
	Brokers []string
}

type Storage struct {
	Root string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORAGE_ROOT", "./data/submissions")
	viper.SetDefault("STAGE_TIMEOUT_SECONDS", 120)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Kafka.Brokers = viper.GetStringSlice("KAFKA_BROKERS")
	config.Storage.Root = viper.GetString("STORAGE_ROOT")
	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.StageTimeout = time.Duration(viper.GetInt("STAGE_TIMEOUT_SECONDS")) * time.Second

	log.Info().Str("port", config.Server.Port).Dur("stage_timeout", config.StageTimeout).Msg("Config loaded")
	return &config, nil
}
