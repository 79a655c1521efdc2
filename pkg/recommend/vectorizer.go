// Package recommend maps stored survey answers to the pretrained cluster
// space and selects candidate mountains.
package recommend

// Preference is a categorical survey answer set.
type Preference struct {
	Theme      string `json:"theme"`
	Experience string `json:"experience"`
	Region     string `json:"region"`
}

// experienceHeight maps hiking experience to a target mountain height.
var experienceHeight = map[string]float64{
	"초급": 500,
	"중급": 850,
	"고급": 1200,
}

const defaultHeight = 850

// regionCoords maps a region to its representative coordinates.
var regionCoords = map[string][2]float64{
	"서울": {37.5, 127.0},
	"강원": {37.8, 128.2},
	"경기": {37.3, 127.2},
	"충청": {36.5, 127.5},
	"경상": {35.8, 128.6},
	"전라": {35.5, 127.0},
	"제주": {33.4, 126.5},
}

// Unrecognized regions fall back to the geographic middle of the country.
var defaultCoords = [2]float64{36.5, 127.5}

// themeIndicators maps a survey theme to the indicator columns it sets.
// One theme may set several.
var themeIndicators = map[string][]string{
	"계곡": {"has_계곡"},
	"바위": {"has_바위"},
	"풍경": {"has_아름다운"},
	"숲":  {"has_울창한", "has_깊은"},
	"단풍": {"has_단풍"},
}

// UserVector builds the feature vector for a preference, ordered exactly
// by the scaler's schema. Columns the preference does not touch stay 0;
// unrecognized answers degrade to documented defaults.
func UserVector(p Preference, schema []string) []float64 {
	vals := make(map[string]float64, len(schema))

	height, ok := experienceHeight[p.Experience]
	if !ok {
		height = defaultHeight
	}
	vals["mountain_height"] = height

	coords, ok := regionCoords[p.Region]
	if !ok {
		coords = defaultCoords
	}
	vals["mountain_latitude"] = coords[0]
	vals["mountain_longitude"] = coords[1]

	for _, col := range themeIndicators[p.Theme] {
		vals[col] = 1
	}

	vals["region_"+p.Region] = 1

	// Reindex to the schema order, absent columns fill with 0. Values for
	// columns the schema does not know are dropped.
	vec := make([]float64, len(schema))
	for i, col := range schema {
		vec[i] = vals[col]
	}
	return vec
}
