package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	RedisAddr                     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                 string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                       int           `mapstructure:"REDIS_DB"`
	SignupTTL                     time.Duration `mapstructure:"SIGNUP_TTL"`
	SMTPHost                      string        `mapstructure:"SMTP_HOST"`
	SMTPPort                      int           `mapstructure:"SMTP_PORT"`
	SMTPUsername                  string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword                  string        `mapstructure:"SMTP_PASSWORD"`
	MailFrom                      string        `mapstructure:"MAIL_FROM"`
	MailFromName                  string        `mapstructure:"MAIL_FROM_NAME"`
	RootUserEmail                 string        `mapstructure:"ROOT_USER_EMAIL"`
	RootUserFullName              string        `mapstructure:"ROOT_USER_FULL_NAME"`
	RootUserPassword              string        `mapstructure:"ROOT_USER_PASSWORD"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	EnableCORS                    bool          `mapstructure:"ENABLE_CORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "engage.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SIGNUP_TTL", time.Hour)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("MAIL_FROM_NAME", "Engage")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("REDIS_PASSWORD")
	viper.BindEnv("REDIS_DB")
	viper.BindEnv("SIGNUP_TTL")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_PORT")
	viper.BindEnv("SMTP_USERNAME")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("MAIL_FROM")
	viper.BindEnv("MAIL_FROM_NAME")
	viper.BindEnv("ROOT_USER_EMAIL")
	viper.BindEnv("ROOT_USER_FULL_NAME")
	viper.BindEnv("ROOT_USER_PASSWORD")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
