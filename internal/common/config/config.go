package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Storage struct {
		// Driver selects the record store backend: "file" or "redis".
		Driver  string `env:"STORAGE_DRIVER" envDefault:"file"`
		DataDir string `env:"DATA_DIR" envDefault:"data"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken    string `env:"BOT_TOKEN,required"`
		PollTimeout int    `env:"POLL_TIMEOUT_SEC" envDefault:"30"`
	}

	Admin struct {
		AccessCode     string `env:"ADMIN_CODE,required"`
		Contact        string `env:"ADMIN_CONTACT" envDefault:"@ZACKCASH22"`
		SessionMinutes int    `env:"ADMIN_SESSION_MINUTES" envDefault:"30"`
	}

	Community struct {
		ChannelLink string `env:"CHANNEL_LINK" envDefault:"https://t.me/+6ya0mglfi4A2NGZk"`
		PromoCode   string `env:"PROMO_CODE" envDefault:"SANA33"`
		// Operating hours for outbound broadcasts. An end hour of 0 means
		// midnight and is read as end of day, not hour zero.
		ActiveStartHour int `env:"ACTIVE_START_HOUR" envDefault:"7"`
		ActiveEndHour   int `env:"ACTIVE_END_HOUR" envDefault:"0"`
	}

	Broadcast struct {
		IntervalSec int `env:"BROADCAST_INTERVAL_SEC" envDefault:"60"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional; in production the environment is set directly.
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
