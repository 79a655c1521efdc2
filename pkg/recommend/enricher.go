package recommend

import "github.com/thesiakim/Ollana/internal/dataset"

// Recommendation is one selected mountain with descriptive attributes
// joined from the reference tables. Every entry point shares this
// contract: image_url falls back to a placeholder when the join misses,
// location is omitted when unknown.
type Recommendation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Location    string `json:"location,omitempty"`
}

// enrich joins sampled rows against the detail and image tables.
func (m *Matcher) enrich(rows []dataset.Mountain) []Recommendation {
	out := make([]Recommendation, 0, len(rows))
	for _, row := range rows {
		rec := Recommendation{
			Name:        row.Name,
			Description: row.Description,
			ImageURL:    m.placeholder,
		}
		if url, ok := m.tables.ImageURL(row.Name); ok {
			rec.ImageURL = url
		}
		if loc, ok := m.tables.Location(row.Name); ok {
			rec.Location = loc
		}
		out = append(out, rec)
	}
	return out
}
