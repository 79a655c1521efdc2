package main

import (
	"fmt"
	"os"

	"github.com/thesiakim/Ollana/internal/config"
	"github.com/thesiakim/Ollana/internal/dataset"
	"github.com/thesiakim/Ollana/internal/model"
	"github.com/thesiakim/Ollana/internal/store"
	"github.com/thesiakim/Ollana/pkg/news"
	"github.com/thesiakim/Ollana/pkg/recommend"
	"github.com/thesiakim/Ollana/pkg/server"
	"github.com/thesiakim/Ollana/pkg/weather"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// buildMatcher loads the reference datasets and cluster artifacts. Any
// failure here must abort startup; serving with partial data is worse
// than not serving.
func buildMatcher(cfg *config.Config) (*recommend.Matcher, *dataset.Tables, error) {
	tables, err := dataset.Load(cfg.Data.MountainsPath, cfg.Data.DetailsPath, cfg.Data.ImagesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load datasets: %w", err)
	}

	scaler, err := model.LoadScaler(cfg.Models.ScalerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load scaler: %w", err)
	}
	kmeans, err := model.LoadKMeans(cfg.Models.KMeansPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load kmeans: %w", err)
	}

	matcher, err := recommend.New(scaler, kmeans, tables, cfg.Data.PlaceholderImage)
	if err != nil {
		return nil, nil, fmt.Errorf("build matcher: %w", err)
	}
	return matcher, tables, nil
}

func buildNews(cfg *config.Config) *news.Collector {
	feeds := make([]news.Feed, len(cfg.News.Feeds))
	for i, f := range cfg.News.Feeds {
		feeds[i] = news.Feed{Name: f.Name, URL: f.URL}
	}
	return news.NewCollector(feeds)
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	matcher, tables, err := buildMatcher(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "loaded %d mountains\n", len(tables.Mountains))

	intensity, err := model.LoadIntensity(cfg.Models.IntensityScalerPath, cfg.Models.IntensityModelPath)
	if err != nil {
		return fmt.Errorf("load intensity model: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	wc := weather.New(cfg.Weather.BaseURL, cfg.Weather.APIKey,
		cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.RPS, cfg.Weather.Burst)

	srv := server.New(db, matcher, wc, intensity, buildNews(cfg), port)
	return srv.ListenAndServe()
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	_, tables, err := buildMatcher(cfg)
	if err != nil {
		return err
	}
	if _, err := model.LoadIntensity(cfg.Models.IntensityScalerPath, cfg.Models.IntensityModelPath); err != nil {
		return fmt.Errorf("load intensity model: %w", err)
	}

	fmt.Fprintf(os.Stderr, "ok: %d mountains, artifacts valid\n", len(tables.Mountains))
	return nil
}
