package score

import (
	"fmt"

	"github.com/thesiakim/Ollana/internal/model"
)

// ExertionSample is one biometric/motion sample from a watch client.
type ExertionSample struct {
	HeartRate float64
	Speed     float64
	Time      float64
	Altitude  float64
}

// ExertionResult is the scored sample with its qualitative level.
type ExertionResult struct {
	Score   float64 `json:"score"`
	Level   string  `json:"level"`
	Message string  `json:"message"`
}

// Exertion levels with fixed advisory messages.
const (
	LevelLow      = "저강도"
	LevelModerate = "중강도"
	LevelHigh     = "고강도"
)

const (
	msgLow      = "가벼운 산행입니다. 준비운동 후 여유롭게 즐기세요."
	msgModerate = "적당한 강도의 산행입니다. 일정한 페이스를 유지하세요."
	msgHigh     = "고강도 산행입니다. 충분한 휴식과 수분 섭취가 필요합니다."
)

// The heart-rate variation slot is a fixed constant the intensity model
// was trained with.
const fixedVariation = 12.0

// EvaluateExertion derives the regression input from the sample, runs the
// pretrained intensity model, and combines it with the motion terms.
func EvaluateExertion(s ExertionSample, m *model.Intensity) (ExertionResult, error) {
	maxHR := s.HeartRate + 25
	minHR := s.HeartRate
	var hrRatio float64
	if maxHR != 0 {
		hrRatio = round4((maxHR - minHR) / maxHR)
	}

	predicted, err := m.Predict([]float64{s.HeartRate, fixedVariation, maxHR, hrRatio})
	if err != nil {
		return ExertionResult{}, fmt.Errorf("intensity inference: %w", err)
	}

	normSpeed := round2(min(s.Speed/5.0, 1.0))
	timeScore := s.Time * (20.0 / 180.0)
	altitudeScore := s.Altitude * 0.1
	// The model's training contract bounds its output to [0,2].
	intensity := (predicted / 2.0) * 40

	final := round1(normSpeed + timeScore + altitudeScore + intensity)

	level, msg := classify(final)
	return ExertionResult{Score: final, Level: level, Message: msg}, nil
}

func classify(score float64) (string, string) {
	switch {
	case score < 49:
		return LevelLow, msgLow
	case score < 79:
		return LevelModerate, msgModerate
	default:
		return LevelHigh, msgHigh
	}
}
