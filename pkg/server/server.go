// Package server provides the HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thesiakim/Ollana/internal/metrics"
	"github.com/thesiakim/Ollana/internal/model"
	"github.com/thesiakim/Ollana/internal/store"
	"github.com/thesiakim/Ollana/pkg/news"
	"github.com/thesiakim/Ollana/pkg/recommend"
	"github.com/thesiakim/Ollana/pkg/score"
	"github.com/thesiakim/Ollana/pkg/weather"
)

// Server wires the survey store, the scoring engines, and the
// recommendation pipeline behind the HTTP API. All dependencies are
// constructed once at startup and never mutated while serving.
type Server struct {
	store     store.Store
	matcher   *recommend.Matcher
	weather   *weather.Client
	intensity *model.Intensity
	news      *news.Collector
	port      int
}

// New creates a new HTTP server.
func New(s store.Store, matcher *recommend.Matcher, wc *weather.Client, intensity *model.Intensity, nc *news.Collector, port int) *Server {
	if port == 0 {
		port = 8000
	}
	return &Server{
		store:     s,
		matcher:   matcher,
		weather:   wc,
		intensity: intensity,
		news:      nc,
		port:      port,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/weather", s.handleWeather)
	mux.HandleFunc("/weather/detail", s.handleWeatherDetail)
	// The bare slash-terminated paths route to the same handlers so an
	// empty user_id answers with a JSON 400 instead of the mux 404.
	mux.HandleFunc("/submit_survey/{user_id}", s.handleSubmitSurvey)
	mux.HandleFunc("/submit_survey/", s.handleSubmitSurvey)
	mux.HandleFunc("/has_survey/{user_id}", s.handleHasSurvey)
	mux.HandleFunc("/has_survey/", s.handleHasSurvey)
	mux.HandleFunc("/recommend/{user_id}", s.handleRecommend)
	mux.HandleFunc("/recommend/", s.handleRecommend)
	mux.HandleFunc("/recommend_by_keyword", s.handleRecommendByKeyword)
	mux.HandleFunc("/recommend_by_region", s.handleRecommendByRegion)
	mux.HandleFunc("/data_collection", s.handleDataCollection)
	mux.HandleFunc("/mountain_news", s.handleNews)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("ollana server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "health", http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeJSON(w, "weather", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	reading, err := s.weather.Current(r.Context())
	if err != nil {
		writeJSON(w, "weather", http.StatusBadGateway, errBody(err.Error()))
		return
	}

	total := score.HikingIndex(reading)
	metrics.HikingIndex.Observe(total)
	writeJSON(w, "weather", http.StatusOK, map[string]float64{"score": total})
}

func (s *Server) handleWeatherDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, "weather_detail", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	reading, err := s.weather.Current(r.Context())
	if err != nil {
		writeJSON(w, "weather_detail", http.StatusBadGateway, errBody(err.Error()))
		return
	}

	detail := score.HikingIndexDetail(reading)
	metrics.HikingIndex.Observe(detail.Score)
	writeJSON(w, "weather_detail", http.StatusOK, detail)
}

func (s *Server) handleSubmitSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, "submit_survey", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		writeJSON(w, "submit_survey", http.StatusBadRequest, errBody("user_id is required"))
		return
	}

	var p recommend.Preference
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, "submit_survey", http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	if p.Theme == "" || p.Experience == "" || p.Region == "" {
		writeJSON(w, "submit_survey", http.StatusBadRequest, errBody("theme, experience and region are required"))
		return
	}

	profile := &store.Profile{
		UserID:     userID,
		Theme:      p.Theme,
		Experience: p.Experience,
		Region:     p.Region,
	}
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		writeJSON(w, "submit_survey", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	writeJSON(w, "submit_survey", http.StatusOK, map[string]string{"message": "survey saved"})
}

func (s *Server) handleHasSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, "has_survey", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		writeJSON(w, "has_survey", http.StatusBadRequest, errBody("user_id is required"))
		return
	}

	has, err := s.store.HasProfile(r.Context(), userID)
	if err != nil {
		writeJSON(w, "has_survey", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	writeJSON(w, "has_survey", http.StatusOK, map[string]bool{"has_survey": has})
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, "recommend", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		writeJSON(w, "recommend", http.StatusBadRequest, errBody("user_id is required"))
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, "recommend", http.StatusBadRequest, errBody("no survey found for user"))
		return
	}
	if err != nil {
		writeJSON(w, "recommend", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	pref := recommend.Preference{
		Theme:      profile.Theme,
		Experience: profile.Experience,
		Region:     profile.Region,
	}
	cluster, recs, err := s.matcher.Recommend(pref)
	if err != nil {
		writeJSON(w, "recommend", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	metrics.Recommendations.WithLabelValues("survey").Inc()
	writeJSON(w, "recommend", http.StatusOK, map[string]any{
		"cluster":         cluster,
		"recommendations": recs,
	})
}

func (s *Server) handleRecommendByKeyword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, "recommend_by_keyword", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	var body struct {
		Keyword string `json:"keyword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Keyword == "" {
		writeJSON(w, "recommend_by_keyword", http.StatusBadRequest, errBody("keyword is required"))
		return
	}

	recs, err := s.matcher.ByKeyword(body.Keyword)
	if errors.Is(err, recommend.ErrUnknownKeyword) {
		writeJSON(w, "recommend_by_keyword", http.StatusBadRequest, errBody(err.Error()))
		return
	}
	if errors.Is(err, recommend.ErrNoMatch) {
		writeJSON(w, "recommend_by_keyword", http.StatusNotFound, errBody(err.Error()))
		return
	}
	if err != nil {
		writeJSON(w, "recommend_by_keyword", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	metrics.Recommendations.WithLabelValues("keyword").Inc()
	writeJSON(w, "recommend_by_keyword", http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleRecommendByRegion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, "recommend_by_region", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	var body struct {
		Region string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Region == "" {
		writeJSON(w, "recommend_by_region", http.StatusBadRequest, errBody("region is required"))
		return
	}

	recs, err := s.matcher.ByRegion(body.Region)
	if errors.Is(err, recommend.ErrNoMatch) {
		writeJSON(w, "recommend_by_region", http.StatusNotFound, errBody(err.Error()))
		return
	}
	if err != nil {
		writeJSON(w, "recommend_by_region", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	metrics.Recommendations.WithLabelValues("region").Inc()
	writeJSON(w, "recommend_by_region", http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *Server) handleDataCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, "data_collection", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	// Pointer fields so absent keys are distinguishable from zero values.
	var body struct {
		HeartRate *float64 `json:"heartRate"`
		Speed     *float64 `json:"speed"`
		Time      *float64 `json:"time"`
		Altitude  *float64 `json:"altitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, "data_collection", http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	if body.HeartRate == nil || body.Speed == nil || body.Time == nil || body.Altitude == nil {
		writeJSON(w, "data_collection", http.StatusBadRequest,
			errBody("heartRate, speed, time and altitude are required"))
		return
	}

	sample := score.ExertionSample{
		HeartRate: *body.HeartRate,
		Speed:     *body.Speed,
		Time:      *body.Time,
		Altitude:  *body.Altitude,
	}
	result, err := score.EvaluateExertion(sample, s.intensity)
	if err != nil {
		writeJSON(w, "data_collection", http.StatusInternalServerError, errBody(err.Error()))
		return
	}

	writeJSON(w, "data_collection", http.StatusOK, result)
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, "mountain_news", http.StatusMethodNotAllowed, errBody("method not allowed"))
		return
	}

	items := s.news.Collect(r.Context())
	writeJSON(w, "mountain_news", http.StatusOK, map[string]any{
		"data":  items,
		"count": len(items),
	})
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, route string, status int, data any) {
	metrics.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
