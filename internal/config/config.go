package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Weather  WeatherConfig  `yaml:"weather"`
	Data     DataConfig     `yaml:"data"`
	Models   ModelsConfig   `yaml:"models"`
	News     NewsConfig     `yaml:"news"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig configures SQLite storage for user surveys.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WeatherConfig configures the OpenWeatherMap provider.
type WeatherConfig struct {
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	RPS       float64 `yaml:"rps"`
	Burst     int     `yaml:"burst"`
}

// DataConfig locates the static mountain reference datasets.
type DataConfig struct {
	MountainsPath    string `yaml:"mountains_path"`
	DetailsPath      string `yaml:"details_path"`
	ImagesPath       string `yaml:"images_path"`
	PlaceholderImage string `yaml:"placeholder_image"`
}

// ModelsConfig locates the pretrained model artifacts.
type ModelsConfig struct {
	ScalerPath          string `yaml:"scaler_path"`
	KMeansPath          string `yaml:"kmeans_path"`
	IntensityScalerPath string `yaml:"intensity_scaler_path"`
	IntensityModelPath  string `yaml:"intensity_model_path"`
}

// NewsConfig configures mountain notice feeds.
type NewsConfig struct {
	Feeds []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS/Atom feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8000},
		Database: DatabaseConfig{Path: "./ollana.db"},
		Weather: WeatherConfig{
			BaseURL:   "https://api.openweathermap.org",
			Latitude:  37.5665,
			Longitude: 126.9780,
			RPS:       2,
			Burst:     5,
		},
		Data: DataConfig{
			MountainsPath:    "./datas/mountains/mountain_clustered.csv",
			DetailsPath:      "./datas/mountains/mountain_202505071451.csv",
			ImagesPath:       "./datas/mountains/mountain_img_202505071742.csv",
			PlaceholderImage: "https://ollana.kr/static/img/mountain_default.jpg",
		},
		Models: ModelsConfig{
			ScalerPath:          "./models/scaler.json",
			KMeansPath:          "./models/kmeans.json",
			IntensityScalerPath: "./models/intensity_scaler.json",
			IntensityModelPath:  "./models/intensity_model.json",
		},
		News: NewsConfig{
			Feeds: []FeedItem{
				{Name: "산림청 공지", URL: "https://www.forest.go.kr/kfsweb/rss/kfsNews.xml"},
				{Name: "국립공원공단", URL: "https://www.knps.or.kr/rss/notice.xml"},
			},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OLLANA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OLLANA_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("OPENWEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
}
