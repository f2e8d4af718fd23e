// Package vision estimates crop damage from an evidence photo using
// color statistics over a downscaled frame. It is deliberately simple:
// a degraded heuristic stand-in with the same output contract as a
// trained model, so the aggregator never has to care which one ran.
package vision

import (
	"image"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"
	"golang.org/x/image/draw"

	"go.uber.org/zap"

	"github.com/agrolens/claimverify/pkg/logger"
)

// Damage classes recognized by the classifier.
const (
	ClassDrought      = "drought"
	ClassPest         = "pest"
	ClassNone         = "none"
	ClassWaterlogging = "waterlogging"
	ClassOther        = "other"
	ClassUnknown      = "unknown"
)

var classOrder = []string{ClassDrought, ClassPest, ClassNone, ClassWaterlogging, ClassOther}

// classDamageWeights convert class probabilities into a damage percent.
// A confident "none" contributes nothing.
var classDamageWeights = map[string]float64{
	ClassDrought:      0.80,
	ClassPest:         0.85,
	ClassNone:         0.0,
	ClassWaterlogging: 0.75,
	ClassOther:        0.60,
}

// Result is a single-image damage estimate.
type Result struct {
	DamagePercent float64            `json:"damage_percent"`
	Confidence    float64            `json:"confidence"`
	DamageType    string             `json:"damage_type"`
	ClassScores   map[string]float64 `json:"class_scores,omitempty"`
	Genuine       bool               `json:"genuine"`
}

// Analyzer produces a damage estimate for an image on disk.
type Analyzer interface {
	Analyze(path string) Result
}

// HeuristicAnalyzer classifies crop condition from channel means and
// overall color variance.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer returns the default analyzer.
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// sampleSize is the side of the downscaled frame the statistics run on.
const sampleSize = 64

// Analyze never fails: an unreadable or undecodable image yields the
// conservative fallback estimate.
func (a *HeuristicAnalyzer) Analyze(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("damage image not readable, using fallback estimate",
			zap.String("path", path),
			zap.Error(err),
		)
		return FallbackResult()
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		logger.Warn("damage image not decodable, using fallback estimate",
			zap.String("path", path),
			zap.Error(err),
		)
		return FallbackResult()
	}

	stats := frameStats(img)
	probs := classify(stats)

	scores := make(map[string]float64, len(classOrder))
	topClass := classOrder[0]
	topProb := 0.0
	percent := 0.0
	for i, class := range classOrder {
		scores[class] = probs[i]
		percent += probs[i] * classDamageWeights[class]
		if probs[i] > topProb {
			topProb = probs[i]
			topClass = class
		}
	}
	percent = math.Min(100, percent*100)

	return Result{
		DamagePercent: percent,
		Confidence:    topProb,
		DamageType:    topClass,
		ClassScores:   scores,
		Genuine:       topClass != ClassNone && topProb > 0.4,
	}
}

// FallbackResult is the conservative estimate used when no image could
// be analyzed. The claim still completes; fusion just trusts it less.
func FallbackResult() Result {
	return Result{
		DamagePercent: 30,
		Confidence:    0.3,
		DamageType:    ClassUnknown,
		Genuine:       false,
	}
}

type stats struct {
	meanR, meanG, meanB float64
	stdDev              float64
}

// classify maps the frame statistics to class probabilities, in the
// order of classOrder.
func classify(s stats) [5]float64 {
	healthScore := s.meanG / (s.meanR + s.meanB + 1)

	switch {
	case s.meanG < 80 && s.stdDev < 40:
		// Dim, flat frame: parched ground.
		return [5]float64{0.65, 0.10, 0.05, 0.10, 0.10}
	case s.meanG > 100 && s.stdDev > 70:
		// Green but blotchy: pest or disease spotting.
		return [5]float64{0.10, 0.60, 0.10, 0.10, 0.10}
	case s.meanB > s.meanG && s.meanB > 120:
		// Blue dominant: standing water.
		return [5]float64{0.10, 0.10, 0.05, 0.65, 0.10}
	case healthScore > 0.8 && s.meanG > 120:
		// Uniformly green: healthy canopy.
		return [5]float64{0.10, 0.10, 0.65, 0.10, 0.05}
	default:
		return [5]float64{0.20, 0.20, 0.20, 0.20, 0.20}
	}
}

// frameStats downscales the image and computes per-channel means and the
// pooled standard deviation on 8-bit values.
func frameStats(img image.Image) stats {
	scaled := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sumR, sumG, sumB float64
	values := make([]float64, 0, sampleSize*sampleSize*3)

	for y := 0; y < sampleSize; y++ {
		for x := 0; x < sampleSize; x++ {
			c := scaled.RGBAAt(x, y)
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			sumR += r
			sumG += g
			sumB += b
			values = append(values, r, g, b)
		}
	}

	n := float64(sampleSize * sampleSize)

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return stats{
		meanR:  sumR / n,
		meanG:  sumG / n,
		meanB:  sumB / n,
		stdDev: math.Sqrt(variance),
	}
}
