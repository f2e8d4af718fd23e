package vision

import (
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func solidFrame(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestAnalyzeParchedFrameLeansDrought(t *testing.T) {
	// Dim brownish frame with low variance.
	path := writePNG(t, solidFrame(color.RGBA{R: 90, G: 70, B: 50, A: 255}))

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.Equal(t, ClassDrought, result.DamageType)
	assert.InDelta(t, 0.65, result.Confidence, 1e-9)
	assert.Greater(t, result.DamagePercent, 50.0)
	assert.True(t, result.Genuine)
}

func TestAnalyzeBlueFrameLeansWaterlogging(t *testing.T) {
	path := writePNG(t, solidFrame(color.RGBA{R: 60, G: 90, B: 180, A: 255}))

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.Equal(t, ClassWaterlogging, result.DamageType)
	assert.True(t, result.Genuine)
}

func TestAnalyzeHealthyCanopyLeansNone(t *testing.T) {
	// Bright green dominant frame.
	path := writePNG(t, solidFrame(color.RGBA{R: 60, G: 160, B: 70, A: 255}))

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.Equal(t, ClassNone, result.DamageType)
	assert.False(t, result.Genuine)
	assert.Less(t, result.DamagePercent, 40.0)
}

func TestAnalyzeBlotchyGreenFrameLeansPest(t *testing.T) {
	// High-variance frame with strong green mean.
	rng := rand.New(rand.NewSource(1))
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if rng.Intn(2) == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 20, G: 240, B: 20, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{R: 200, G: 60, B: 40, A: 255})
			}
		}
	}
	path := writePNG(t, img)

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.Equal(t, ClassPest, result.DamageType)
}

func TestAnalyzeMissingFileReturnsFallback(t *testing.T) {
	result := NewHeuristicAnalyzer().Analyze(filepath.Join(t.TempDir(), "missing.jpg"))

	assert.Equal(t, FallbackResult(), result)
	assert.Equal(t, 30.0, result.DamagePercent)
	assert.Equal(t, 0.3, result.Confidence)
	assert.Equal(t, ClassUnknown, result.DamageType)
}

func TestAnalyzeUndecodableFileReturnsFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.Equal(t, FallbackResult(), result)
}

func TestDamagePercentIsCapped(t *testing.T) {
	path := writePNG(t, solidFrame(color.RGBA{R: 90, G: 70, B: 50, A: 255}))

	result := NewHeuristicAnalyzer().Analyze(path)

	assert.LessOrEqual(t, result.DamagePercent, 100.0)
	assert.GreaterOrEqual(t, result.DamagePercent, 0.0)
}
