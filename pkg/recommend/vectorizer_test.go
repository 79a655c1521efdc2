package recommend

import "testing"

var testSchema = []string{
	"mountain_height",
	"mountain_latitude",
	"mountain_longitude",
	"has_계곡",
	"has_바위",
	"has_아름다운",
	"has_울창한",
	"has_깊은",
	"has_단풍",
	"region_서울",
	"region_강원",
}

func TestUserVectorExample(t *testing.T) {
	vec := UserVector(Preference{Theme: "계곡", Experience: "초급", Region: "서울"}, testSchema)

	want := map[string]float64{
		"mountain_height":    500,
		"mountain_latitude":  37.5,
		"mountain_longitude": 127.0,
		"has_계곡":             1,
		"region_서울":          1,
	}
	for i, col := range testSchema {
		if got := vec[i]; got != want[col] {
			t.Errorf("col %s = %v, want %v", col, got, want[col])
		}
	}
}

func TestUserVectorMultiIndicatorTheme(t *testing.T) {
	vec := UserVector(Preference{Theme: "숲", Experience: "고급", Region: "강원"}, testSchema)

	byCol := make(map[string]float64, len(testSchema))
	for i, col := range testSchema {
		byCol[col] = vec[i]
	}
	if byCol["has_울창한"] != 1 || byCol["has_깊은"] != 1 {
		t.Errorf("숲 should set both forest indicators, got %v", byCol)
	}
	if byCol["mountain_height"] != 1200 {
		t.Errorf("고급 height = %v, want 1200", byCol["mountain_height"])
	}
	if byCol["region_강원"] != 1 || byCol["region_서울"] != 0 {
		t.Errorf("region one-hot wrong: %v", byCol)
	}
}

func TestUserVectorUnknownValuesDefault(t *testing.T) {
	vec := UserVector(Preference{Theme: "온천", Experience: "전문가", Region: "화성"}, testSchema)

	if got := vec[0]; got != 850 {
		t.Errorf("default height = %v, want 850", got)
	}
	if vec[1] != 36.5 || vec[2] != 127.5 {
		t.Errorf("default coords = (%v, %v), want (36.5, 127.5)", vec[1], vec[2])
	}
	// No indicator or one-hot columns set.
	for i, col := range testSchema[3:] {
		if vec[i+3] != 0 {
			t.Errorf("col %s = %v, want 0", col, vec[i+3])
		}
	}
}

func TestUserVectorAlwaysMatchesSchema(t *testing.T) {
	prefs := []Preference{
		{},
		{Theme: "단풍", Experience: "중급", Region: "제주"},
		{Theme: "바위", Experience: "초급", Region: "전라"},
		{Theme: "???", Experience: "???", Region: "???"},
	}
	for _, p := range prefs {
		vec := UserVector(p, testSchema)
		if len(vec) != len(testSchema) {
			t.Fatalf("vector length %d != schema length %d for %+v", len(vec), len(testSchema), p)
		}
	}

	// A schema without indicator columns still produces a full vector.
	short := []string{"mountain_height", "mountain_latitude", "mountain_longitude"}
	vec := UserVector(Preference{Theme: "계곡", Experience: "초급", Region: "서울"}, short)
	if len(vec) != 3 {
		t.Fatalf("vector length %d, want 3", len(vec))
	}
}
