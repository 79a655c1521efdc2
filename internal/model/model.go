// Package model loads pretrained artifacts (feature scaler, k-means
// centroids, intensity regressor) exported as JSON, and runs
// inference-time prediction only. Training is out of scope.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Scaler is a standard scaler with the feature schema frozen at training
// time. Inference vectors must match Features in name and order.
type Scaler struct {
	Features []string  `json:"feature_names"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

// LoadScaler reads a scaler artifact and validates its shape.
func LoadScaler(path string) (*Scaler, error) {
	var s Scaler
	if err := loadJSON(path, &s); err != nil {
		return nil, err
	}
	if len(s.Features) == 0 {
		return nil, fmt.Errorf("scaler %s: empty feature schema", path)
	}
	if len(s.Mean) != len(s.Features) || len(s.Scale) != len(s.Features) {
		return nil, fmt.Errorf("scaler %s: shape mismatch (features=%d mean=%d scale=%d)",
			path, len(s.Features), len(s.Mean), len(s.Scale))
	}
	return &s, nil
}

// Transform applies trained centering and scaling.
func (s *Scaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Features) {
		return nil, fmt.Errorf("scaler: vector length %d, schema expects %d", len(vec), len(s.Features))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

// KMeans holds pretrained cluster centroids.
type KMeans struct {
	Centroids [][]float64 `json:"centroids"`
}

// LoadKMeans reads a k-means artifact and validates its shape.
func LoadKMeans(path string) (*KMeans, error) {
	var k KMeans
	if err := loadJSON(path, &k); err != nil {
		return nil, err
	}
	if len(k.Centroids) == 0 {
		return nil, fmt.Errorf("kmeans %s: no centroids", path)
	}
	dim := len(k.Centroids[0])
	for i, c := range k.Centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("kmeans %s: centroid %d has %d dims, expected %d", path, i, len(c), dim)
		}
	}
	return &k, nil
}

// Dim returns the centroid dimensionality.
func (k *KMeans) Dim() int { return len(k.Centroids[0]) }

// Predict assigns a scaled vector to the nearest centroid by squared
// Euclidean distance.
func (k *KMeans) Predict(vec []float64) (int, error) {
	if len(vec) != k.Dim() {
		return 0, fmt.Errorf("kmeans: vector length %d, centroids expect %d", len(vec), k.Dim())
	}
	best, bestDist := 0, math.Inf(1)
	for label, c := range k.Centroids {
		var d float64
		for i, v := range vec {
			diff := v - c[i]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = label, d
		}
	}
	return best, nil
}

// Regressor is a linear model {coef, intercept} over scaled features.
type Regressor struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// LoadRegressor reads a regression artifact.
func LoadRegressor(path string) (*Regressor, error) {
	var r Regressor
	if err := loadJSON(path, &r); err != nil {
		return nil, err
	}
	if len(r.Coef) == 0 {
		return nil, fmt.Errorf("regressor %s: no coefficients", path)
	}
	return &r, nil
}

// Predict evaluates the linear model.
func (r *Regressor) Predict(vec []float64) (float64, error) {
	if len(vec) != len(r.Coef) {
		return 0, fmt.Errorf("regressor: vector length %d, model expects %d", len(vec), len(r.Coef))
	}
	y := r.Intercept
	for i, v := range vec {
		y += r.Coef[i] * v
	}
	return y, nil
}

// Intensity bundles the pretrained exertion regressor with its own scaler.
type Intensity struct {
	Scaler    *Scaler
	Regressor *Regressor
}

// LoadIntensity loads both intensity artifacts and checks their shapes
// agree.
func LoadIntensity(scalerPath, modelPath string) (*Intensity, error) {
	s, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	r, err := LoadRegressor(modelPath)
	if err != nil {
		return nil, err
	}
	if len(r.Coef) != len(s.Features) {
		return nil, fmt.Errorf("intensity model: %d coefficients, scaler has %d features",
			len(r.Coef), len(s.Features))
	}
	return &Intensity{Scaler: s, Regressor: r}, nil
}

// Predict scales the raw input and evaluates the regressor.
func (m *Intensity) Predict(vec []float64) (float64, error) {
	scaled, err := m.Scaler.Transform(vec)
	if err != nil {
		return 0, err
	}
	return m.Regressor.Predict(scaled)
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return nil
}
