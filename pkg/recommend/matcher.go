package recommend

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/thesiakim/Ollana/internal/dataset"
	"github.com/thesiakim/Ollana/internal/model"
)

// maxRecommendations caps how many mountains one call returns.
const maxRecommendations = 3

var (
	// ErrUnknownKeyword means the keyword has no indicator column.
	ErrUnknownKeyword = errors.New("unknown keyword")
	// ErrNoMatch means the filter yielded zero mountains.
	ErrNoMatch = errors.New("no matching mountains")
)

// Mandatory schema columns the vectorizer always fills. Their absence is
// a configuration error, caught at startup.
var mandatoryColumns = []string{
	"mountain_height",
	"mountain_latitude",
	"mountain_longitude",
}

// Matcher assigns user vectors to pretrained mountain clusters and samples
// candidates. Safe for concurrent use; all state is read-only after New.
type Matcher struct {
	scaler      *model.Scaler
	kmeans      *model.KMeans
	tables      *dataset.Tables
	placeholder string
}

// New validates that the scaler schema, the centroids, and the reference
// table agree, and returns a ready Matcher. Any mismatch is fatal at
// startup rather than per request.
func New(scaler *model.Scaler, kmeans *model.KMeans, tables *dataset.Tables, placeholderImage string) (*Matcher, error) {
	if got, want := kmeans.Dim(), len(scaler.Features); got != want {
		return nil, fmt.Errorf("centroid dimensionality %d does not match scaler schema of %d features", got, want)
	}
	schema := make(map[string]bool, len(scaler.Features))
	for _, col := range scaler.Features {
		schema[col] = true
	}
	for _, col := range mandatoryColumns {
		if !schema[col] {
			return nil, fmt.Errorf("scaler schema is missing mandatory column %q", col)
		}
	}
	return &Matcher{
		scaler:      scaler,
		kmeans:      kmeans,
		tables:      tables,
		placeholder: placeholderImage,
	}, nil
}

// Recommend vectorizes the preference, assigns it to the nearest cluster,
// and samples up to three mountains from that cluster. An empty cluster
// yields an empty list, not an error.
func (m *Matcher) Recommend(p Preference) (int, []Recommendation, error) {
	vec := UserVector(p, m.scaler.Features)
	scaled, err := m.scaler.Transform(vec)
	if err != nil {
		return 0, nil, fmt.Errorf("scale user vector: %w", err)
	}
	label, err := m.kmeans.Predict(scaled)
	if err != nil {
		return 0, nil, fmt.Errorf("assign cluster: %w", err)
	}

	matched := m.tables.ByCluster(label)
	return label, m.enrich(sample(matched)), nil
}

// ByKeyword filters directly on a has_<keyword> indicator column,
// bypassing clustering.
func (m *Matcher) ByKeyword(keyword string) ([]Recommendation, error) {
	column := "has_" + keyword
	if !m.tables.HasIndicator(column) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyword, keyword)
	}
	matched := m.tables.ByIndicator(column)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w for keyword %s", ErrNoMatch, keyword)
	}
	return m.enrich(sample(matched)), nil
}

// ByRegion filters on the exact region string, bypassing clustering.
func (m *Matcher) ByRegion(region string) ([]Recommendation, error) {
	matched := m.tables.ByRegion(region)
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w in region %s", ErrNoMatch, region)
	}
	return m.enrich(sample(matched)), nil
}

// sample picks min(3, len(rows)) rows uniformly without replacement.
func sample(rows []dataset.Mountain) []dataset.Mountain {
	n := min(maxRecommendations, len(rows))
	if n == 0 {
		return nil
	}
	picked := rand.Perm(len(rows))[:n]
	out := make([]dataset.Mountain, 0, n)
	for _, i := range picked {
		out = append(out, rows[i])
	}
	return out
}
