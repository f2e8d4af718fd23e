package damage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrolens/claimverify/internal/vision"
)

type stubAnalyzer struct {
	results map[string]vision.Result
}

func (s *stubAnalyzer) Analyze(path string) vision.Result {
	if r, ok := s.results[path]; ok {
		return r
	}
	return vision.FallbackResult()
}

func TestAggregateWithinVarianceBandAverages(t *testing.T) {
	analyzer := &stubAnalyzer{results: map[string]vision.Result{
		"a.jpg": {DamagePercent: 50, Confidence: 0.8, DamageType: vision.ClassDrought},
	}}

	est := Aggregate(analyzer, []string{"a.jpg"}, 60)

	assert.InDelta(t, 55, est.FinalPercent, 1e-9)
	assert.InDelta(t, 10, est.VariancePct, 1e-9)
	assert.Equal(t, SeveritySevere, est.Severity)
	assert.Equal(t, 0.8, est.Confidence)
	assert.Equal(t, vision.ClassDrought, est.DamageType)
}

func TestAggregateOutsideVarianceBandTrustsAI(t *testing.T) {
	analyzer := &stubAnalyzer{results: map[string]vision.Result{
		"a.jpg": {DamagePercent: 20, Confidence: 0.7, DamageType: vision.ClassPest},
	}}

	est := Aggregate(analyzer, []string{"a.jpg"}, 80)

	assert.InDelta(t, 20, est.FinalPercent, 1e-9)
	assert.InDelta(t, 60, est.VariancePct, 1e-9)
	assert.Equal(t, SeverityModerate, est.Severity)
}

func TestAggregateExactBandBoundaryAverages(t *testing.T) {
	analyzer := &stubAnalyzer{results: map[string]vision.Result{
		"a.jpg": {DamagePercent: 40, Confidence: 0.7, DamageType: vision.ClassDrought},
	}}

	est := Aggregate(analyzer, []string{"a.jpg"}, 55)

	assert.InDelta(t, 47.5, est.FinalPercent, 1e-9)
}

func TestAggregateAveragesAcrossImages(t *testing.T) {
	analyzer := &stubAnalyzer{results: map[string]vision.Result{
		"a.jpg": {DamagePercent: 40, Confidence: 0.6, DamageType: vision.ClassDrought},
		"b.jpg": {DamagePercent: 60, Confidence: 0.9, DamageType: vision.ClassWaterlogging},
	}}

	est := Aggregate(analyzer, []string{"a.jpg", "b.jpg"}, 50)

	assert.InDelta(t, 50, est.AIPercent, 1e-9)
	assert.InDelta(t, 0.75, est.Confidence, 1e-9)
	assert.Equal(t, vision.ClassWaterlogging, est.DamageType, "type follows the most confident image")
	assert.Equal(t, 2, est.ImagesAnalyzed)
}

func TestAggregateWithoutAnalyzerUsesFallback(t *testing.T) {
	est := Aggregate(nil, nil, 45)

	assert.InDelta(t, 30, est.AIPercent, 1e-9)
	assert.InDelta(t, 0.3, est.Confidence, 1e-9)
	// Variance 15 sits inside the band, so the figures average.
	assert.InDelta(t, 37.5, est.FinalPercent, 1e-9)
	assert.Equal(t, SeveritySevere, est.Severity)
}

func TestSeverityBuckets(t *testing.T) {
	tests := []struct {
		percent float64
		want    Severity
	}{
		{0, SeverityMinimal},
		{14.9, SeverityMinimal},
		{15, SeverityModerate},
		{34.9, SeverityModerate},
		{35, SeveritySevere},
		{59.9, SeveritySevere},
		{60, SeverityCritical},
		{100, SeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityFor(tt.percent), "percent %.1f", tt.percent)
	}
}
