// Package score implements the hiking index and exertion scoring engines.
// Both are pure functions over per-request readings.
package score

import "math"

// WeatherReading is one set of environmental readings, built per request
// from the provider payload.
type WeatherReading struct {
	FeelsLike  float64 `json:"feels_like"`
	WindSpeed  float64 `json:"wind_speed"`
	Humidity   int     `json:"humidity"`
	CloudCover int     `json:"cloud_cover"`
	PM10       float64 `json:"pm10"`
	PM25       float64 `json:"pm25"`
}

// Factor weights. They sum to 1.0 so a reading that maxes every
// sub-score yields exactly 100.
const (
	weightTemp     = 0.25
	weightWind     = 0.15
	weightHumidity = 0.15
	weightCloud    = 0.10
	weightPM10     = 0.20
	weightPM25     = 0.15
)

// FactorScores are the per-factor sub-scores, each in [0,100] (cloud is
// floored at 40).
type FactorScores struct {
	Temperature float64 `json:"temperature"`
	Wind        float64 `json:"wind"`
	Humidity    float64 `json:"humidity"`
	Cloud       float64 `json:"cloud"`
	PM10        float64 `json:"pm10"`
	PM25        float64 `json:"pm25"`
}

// WeatherDetail is the descriptive variant: composite plus per-factor
// scores and qualitative labels.
type WeatherDetail struct {
	Score   float64           `json:"score"`
	Factors FactorScores      `json:"factors"`
	Labels  map[string]string `json:"labels"`
}

// HikingIndex computes the composite hiking suitability score in [0,100],
// rounded to one decimal.
func HikingIndex(r WeatherReading) float64 {
	f := Factors(r)
	total := f.Temperature*weightTemp +
		f.Wind*weightWind +
		f.Humidity*weightHumidity +
		f.Cloud*weightCloud +
		f.PM10*weightPM10 +
		f.PM25*weightPM25
	return round1(total)
}

// Factors computes the six sub-scores.
func Factors(r WeatherReading) FactorScores {
	return FactorScores{
		Temperature: tempScore(r.FeelsLike),
		Wind:        windScore(r.WindSpeed),
		Humidity:    humidityScore(r.Humidity),
		Cloud:       cloudScore(r.CloudCover),
		PM10:        pm10Score(r.PM10),
		PM25:        pm25Score(r.PM25),
	}
}

// HikingIndexDetail computes the composite score together with the
// qualitative per-factor labels. Presentation only; same thresholds.
func HikingIndexDetail(r WeatherReading) WeatherDetail {
	f := Factors(r)
	return WeatherDetail{
		Score:   HikingIndex(r),
		Factors: f,
		Labels: map[string]string{
			"temperature": factorLabel(f.Temperature),
			"wind":        factorLabel(f.Wind),
			"humidity":    factorLabel(f.Humidity),
			"cloud":       factorLabel(f.Cloud),
			"pm10":        factorLabel(f.PM10),
			"pm25":        factorLabel(f.PM25),
		},
	}
}

func tempScore(t float64) float64 {
	if 12 < t && t < 22 {
		return 100
	}
	return math.Max(0, 100-math.Abs(t-17)*5)
}

func windScore(w float64) float64 {
	switch {
	case w <= 3:
		return 100
	case w >= 6:
		return 50
	default:
		return 100 - (w-3)*15
	}
}

func humidityScore(h int) float64 {
	if 40 <= h && h <= 60 {
		return 100
	}
	return math.Max(0, 100-math.Abs(float64(h)-50)*2)
}

func cloudScore(c int) float64 {
	if 20 <= c && c <= 50 {
		return 100
	}
	return math.Max(40, 100-math.Abs(float64(c)-35)*3)
}

func pm10Score(v float64) float64 {
	switch {
	case v <= 30:
		return 100
	case v <= 80:
		return 60
	default:
		return 30
	}
}

func pm25Score(v float64) float64 {
	switch {
	case v <= 15:
		return 100
	case v <= 35:
		return 70
	default:
		return 40
	}
}

func factorLabel(score float64) string {
	switch {
	case score >= 80:
		return "좋음"
	case score >= 50:
		return "보통"
	default:
		return "나쁨"
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
