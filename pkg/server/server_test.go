package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"

	"github.com/thesiakim/Ollana/internal/dataset"
	"github.com/thesiakim/Ollana/internal/model"
	"github.com/thesiakim/Ollana/internal/store"
	"github.com/thesiakim/Ollana/pkg/news"
	"github.com/thesiakim/Ollana/pkg/recommend"
	"github.com/thesiakim/Ollana/pkg/weather"
)

type fakeStore struct {
	profiles map[string]store.Profile
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[string]store.Profile)}
}

func (f *fakeStore) UpsertProfile(ctx context.Context, p *store.Profile) error {
	f.profiles[p.UserID] = *p
	return nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*store.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (f *fakeStore) HasProfile(ctx context.Context, userID string) (bool, error) {
	_, ok := f.profiles[userID]
	return ok, nil
}

func (f *fakeStore) Close() error { return nil }

func newTestTables(t *testing.T) *dataset.Tables {
	t.Helper()
	dir := t.TempDir()

	mountains := "mountain_name,mountain_description,region,mountain_height,mountain_latitude,mountain_longitude,has_계곡,cluster\n" +
		"북한산,서울의 명산,서울,836,37.66,126.98,1,0\n" +
		"관악산,계곡이 있는 산,서울,632,37.44,126.96,1,0\n" +
		"한라산,제주 최고봉,제주,1947,33.36,126.53,0,1\n"
	mPath := filepath.Join(dir, "mountains.csv")
	if err := os.WriteFile(mPath, []byte(mountains), 0o644); err != nil {
		t.Fatal(err)
	}

	details := "mountain_id,mountain_name,mountain_location\n1,북한산,서울특별시 은평구\n"
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte(details))
	if err != nil {
		t.Fatal(err)
	}
	dPath := filepath.Join(dir, "details.csv")
	if err := os.WriteFile(dPath, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	images := "mountain_id,mountain_img_url\n1,https://img.example.com/bukhansan.jpg\n"
	iPath := filepath.Join(dir, "images.csv")
	if err := os.WriteFile(iPath, []byte(images), 0o644); err != nil {
		t.Fatal(err)
	}

	tables, err := dataset.Load(mPath, dPath, iPath)
	if err != nil {
		t.Fatal(err)
	}
	return tables
}

func newTestServer(t *testing.T, db store.Store, wc *weather.Client) *Server {
	t.Helper()

	scaler := &model.Scaler{
		Features: []string{"mountain_height", "mountain_latitude", "mountain_longitude", "has_계곡"},
		Mean:     []float64{0, 0, 0, 0},
		Scale:    []float64{1, 1, 1, 1},
	}
	kmeans := &model.KMeans{Centroids: [][]float64{
		{500, 37.5, 127.0, 1},
		{1947, 33.4, 126.5, 0},
		{850, 36.5, 127.5, 0},
	}}
	matcher, err := recommend.New(scaler, kmeans, newTestTables(t), "https://example.com/default.jpg")
	if err != nil {
		t.Fatal(err)
	}

	intensity := &model.Intensity{
		Scaler: &model.Scaler{
			Features: []string{"heart_rate", "heart_rate_variation", "max_heart_rate", "hr_ratio"},
			Mean:     []float64{0, 0, 0, 0},
			Scale:    []float64{1, 1, 1, 1},
		},
		Regressor: &model.Regressor{Coef: []float64{0, 0, 0, 0}, Intercept: 1},
	}

	return New(db, matcher, wc, intensity, news.NewCollector(nil), 0)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := make(map[string]any)
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q", method, path, rec.Body.String())
		}
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()
	rec, body := doJSON(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", rec.Code, body)
	}
}

func TestSurveyFlow(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, body := doJSON(t, h, http.MethodGet, "/has_survey/u1", "")
	if rec.Code != http.StatusOK || body["has_survey"] != false {
		t.Fatalf("has_survey before submit: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/submit_survey/u1",
		`{"theme":"계곡","experience":"초급","region":"서울"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit_survey: %d", rec.Code)
	}

	rec, body = doJSON(t, h, http.MethodGet, "/has_survey/u1", "")
	if rec.Code != http.StatusOK || body["has_survey"] != true {
		t.Fatalf("has_survey after submit: %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, h, http.MethodPost, "/recommend/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommend: %d %v", rec.Code, body)
	}
	if body["cluster"] != float64(0) {
		t.Fatalf("cluster = %v, want 0", body["cluster"])
	}
	recs := body["recommendations"].([]any)
	if len(recs) == 0 || len(recs) > 3 {
		t.Fatalf("recommendations count = %d", len(recs))
	}
}

func TestSubmitSurveyValidation(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, _ := doJSON(t, h, http.MethodPost, "/submit_survey/u1", `{"theme":"계곡"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/submit_survey/u1", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body: %d, want 400", rec.Code)
	}
}

func TestEmptyUserID(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/submit_survey/", `{"theme":"계곡","experience":"초급","region":"서울"}`},
		{http.MethodGet, "/has_survey/", ""},
		{http.MethodPost, "/recommend/", ""},
	}
	for _, c := range cases {
		rec, body := doJSON(t, h, c.method, c.path, c.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s: %d, want 400", c.method, c.path, rec.Code)
		}
		if body["error"] == nil || body["error"] == "" {
			t.Errorf("%s %s: missing JSON error envelope, got %q", c.method, c.path, rec.Body.String())
		}
	}
}

func TestRecommendWithoutSurvey(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/recommend/unknown", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("recommend without survey: %d %v, want 400", rec.Code, body)
	}
	if body["error"] == "" {
		t.Fatal("expected error message")
	}
}

func TestRecommendEmptyCluster(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	// Unrecognized survey answers vectorize to the defaults, which match
	// a centroid no reference row belongs to.
	rec, _ := doJSON(t, h, http.MethodPost, "/submit_survey/u2",
		`{"theme":"온천","experience":"전문가","region":"화성"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit_survey: %d", rec.Code)
	}

	rec, body := doJSON(t, h, http.MethodPost, "/recommend/u2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("recommend with empty cluster: %d %v, want 200", rec.Code, body)
	}
	if body["cluster"] != float64(2) {
		t.Fatalf("cluster = %v, want 2", body["cluster"])
	}
	recs, ok := body["recommendations"].([]any)
	if !ok || len(recs) != 0 {
		t.Fatalf("recommendations = %v, want empty list", body["recommendations"])
	}
}

func TestRecommendByKeyword(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/recommend_by_keyword", `{"keyword":"계곡"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("keyword: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/recommend_by_keyword", `{"keyword":"온천"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown keyword: %d, want 400", rec.Code)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/recommend_by_keyword", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty keyword: %d, want 400", rec.Code)
	}
}

func TestRecommendByRegion(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/recommend_by_region", `{"region":"제주"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("region: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, h, http.MethodPost, "/recommend_by_region", `{"region":"충청"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unmatched region: %d, want 404", rec.Code)
	}
}

func TestDataCollection(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	rec, body := doJSON(t, h, http.MethodPost, "/data_collection",
		`{"heartRate":120,"speed":10,"time":90,"altitude":50}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("data_collection: %d %v", rec.Code, body)
	}
	if body["score"] != 36.0 {
		t.Fatalf("score = %v, want 36", body["score"])
	}
	if body["level"] != "저강도" {
		t.Fatalf("level = %v, want 저강도", body["level"])
	}
	if body["message"] == "" {
		t.Fatal("expected advisory message")
	}
}

func TestDataCollectionMissingFields(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	bodies := []string{
		`{}`,
		`{"heartRate":120}`,
		`{"heartRate":120,"speed":10,"time":90}`,
		`{"speed":10,"time":90,"altitude":50}`,
	}
	for _, b := range bodies {
		rec, _ := doJSON(t, h, http.MethodPost, "/data_collection", b)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: %d, want 400", b, rec.Code)
		}
	}
}

func TestWeatherEndpoint(t *testing.T) {
	// Mock provider returning a reading that maxes every sub-score.
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/2.5/weather":
			fmt.Fprint(w, `{"main":{"feels_like":17,"humidity":50},"wind":{"speed":2},"clouds":{"all":35}}`)
		case "/data/2.5/air_pollution":
			fmt.Fprint(w, `{"list":[{"components":{"pm10":20,"pm2_5":10}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer mock.Close()

	wc := weather.New(mock.URL, "testkey", 37.5665, 126.9780, 100, 100)
	h := newTestServer(t, newFakeStore(), wc).Handler()

	rec, body := doJSON(t, h, http.MethodGet, "/weather", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("weather: %d %v", rec.Code, body)
	}
	if body["score"] != 100.0 {
		t.Fatalf("score = %v, want 100", body["score"])
	}

	rec, body = doJSON(t, h, http.MethodGet, "/weather/detail", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("weather/detail: %d %v", rec.Code, body)
	}
	labels := body["labels"].(map[string]any)
	if labels["pm10"] != "좋음" {
		t.Fatalf("labels = %v", labels)
	}
}

func TestWeatherProviderFailure(t *testing.T) {
	mock := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusInternalServerError)
	}))
	defer mock.Close()

	wc := weather.New(mock.URL, "testkey", 37.5665, 126.9780, 100, 100)
	h := newTestServer(t, newFakeStore(), wc).Handler()

	rec, body := doJSON(t, h, http.MethodGet, "/weather", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("weather with broken provider: %d %v, want 502", rec.Code, body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, newFakeStore(), nil).Handler()

	cases := []struct {
		method, path string
	}{
		{http.MethodDelete, "/weather"},
		{http.MethodGet, "/recommend_by_keyword"},
		{http.MethodGet, "/data_collection"},
		{http.MethodPost, "/has_survey/u1"},
	}
	for _, c := range cases {
		rec, _ := doJSON(t, h, c.method, c.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s: %d, want 405", c.method, c.path, rec.Code)
		}
	}
}
