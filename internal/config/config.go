// This file defines the configuration structure for the application.
package config

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	HTTP struct {
		Timeout           int    `mapstructure:"timeout"`
		UserAgent         string `mapstructure:"user_agent"`
		AllowPrivateHosts bool   `mapstructure:"allow_private_hosts"`
	} `mapstructure:"http"`
	Podcasts struct {
		RefreshInterval int     `mapstructure:"refresh_interval"`
		SearchURL       string  `mapstructure:"search_url"`
		HostRate        float64 `mapstructure:"host_rate"`
	} `mapstructure:"podcasts"`
	Player struct {
		SaveInterval int `mapstructure:"save_interval"`
	} `mapstructure:"player"`
	Widgets struct {
		PokeAPIURL  string   `mapstructure:"pokeapi_url"`
		TriviaFeeds []string `mapstructure:"trivia_feeds"`
		TriviaLimit int      `mapstructure:"trivia_limit"`
	} `mapstructure:"widgets"`
	Inbox struct {
		Path string `mapstructure:"path"`
		User string `mapstructure:"user"`
	} `mapstructure:"inbox"`
}

// DefaultUserAgent is sent on every outbound fetch unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (compatible; homebase/1.0; +https://github.com/vrsandeep/homebase)"

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")

	// HOMEBASE_DATABASE_PATH overrides `database.path`, and so on.
	viper.SetEnvPrefix("HOMEBASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else {
		viper.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("Config file %s changed (%s); restart to apply.", e.Name, e.Op)
		})
		viper.WatchConfig()
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./homebase.db")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("http.timeout", 20)
	viper.SetDefault("http.user_agent", DefaultUserAgent)
	viper.SetDefault("http.allow_private_hosts", false)
	viper.SetDefault("podcasts.refresh_interval", 60)
	viper.SetDefault("podcasts.search_url", "https://itunes.apple.com/search")
	viper.SetDefault("podcasts.host_rate", 2.0)
	viper.SetDefault("player.save_interval", 10)
	viper.SetDefault("widgets.pokeapi_url", "https://pokeapi.co/api/v2")
	viper.SetDefault("widgets.trivia_feeds", []string{
		"https://en.wikipedia.org/w/api.php?action=featuredfeed&feed=onthisday&feedformat=atom",
	})
	viper.SetDefault("widgets.trivia_limit", 10)
	viper.SetDefault("inbox.path", "")
	viper.SetDefault("inbox.user", "admin")
}

// Default returns a Config populated only with default values. Tests and
// the CLI use it when no config file should be consulted.
func Default() *Config {
	cfg := &Config{Port: 8080}
	cfg.Database.Path = "./homebase.db"
	cfg.Log.Level = "info"
	cfg.HTTP.Timeout = 20
	cfg.HTTP.UserAgent = DefaultUserAgent
	cfg.Podcasts.RefreshInterval = 60
	cfg.Podcasts.SearchURL = "https://itunes.apple.com/search"
	cfg.Podcasts.HostRate = 2.0
	cfg.Player.SaveInterval = 10
	cfg.Widgets.PokeAPIURL = "https://pokeapi.co/api/v2"
	cfg.Widgets.TriviaLimit = 10
	cfg.Inbox.User = "admin"
	return cfg
}
