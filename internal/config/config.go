package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	SessionSecret                 string   `mapstructure:"SESSION_SECRET"`
	SessionTTLHours               int      `mapstructure:"SESSION_TTL_HOURS"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	AllowedOrigins                []string `mapstructure:"ALLOWED_ORIGINS"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	SeedDemoData                  bool     `mapstructure:"SEED_DEMO_DATA"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("SEED_DEMO_DATA", true)

	viper.BindEnv("SESSION_SECRET")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
