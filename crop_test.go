package pdffigures

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func testPageImage(w, h int) *image.NRGBA {
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	return img
}

func TestSaveComponents_NamesAndBuckets(t *testing.T) {
	pageDir := t.TempDir()
	img := testPageImage(200, 300)

	detections := []Detection{
		{Class: ClassFigure, Box: Rect{X0: 10, Y0: 10, X1: 60, Y1: 60}, Confidence: 0.95},
		{Class: ClassFigureCaption, Box: Rect{X0: 10, Y0: 70, X1: 60, Y1: 90}, Confidence: 0.9},
		{Class: ClassFigure, Box: Rect{X0: 100, Y0: 100, X1: 180, Y1: 200}, Confidence: 0.8},
	}

	components, err := SaveComponents(img, detections, pageDir, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, components, 3)

	// Position indices count per class in detection order.
	require.Equal(t, 0, components[0].Index)
	require.Equal(t, 0, components[1].Index)
	require.Equal(t, 1, components[2].Index)

	require.FileExists(t, filepath.Join(pageDir, "figure", "figure_0_score0.95.jpg"))
	require.FileExists(t, filepath.Join(pageDir, "figure_caption", "figure_caption_0_score0.90.jpg"))
	require.FileExists(t, filepath.Join(pageDir, "figure", "figure_1_score0.80.jpg"))

	// Returned components parse back to themselves.
	for _, comp := range components {
		class, index, confidence, ok := ParseComponentName(filepath.Base(comp.Path))
		require.True(t, ok)
		require.Equal(t, comp.Class, class)
		require.Equal(t, comp.Index, index)
		require.InDelta(t, comp.Confidence, confidence, 0.005)
	}
}

func TestSaveComponents_CropDimensions(t *testing.T) {
	pageDir := t.TempDir()
	img := testPageImage(200, 300)

	components, err := SaveComponents(img, []Detection{
		{Class: ClassTable, Box: Rect{X0: 20, Y0: 40, X1: 120, Y1: 90}, Confidence: 0.9},
	}, pageDir, DefaultConfig())
	require.NoError(t, err)

	saved, err := imaging.Open(components[0].Path)
	require.NoError(t, err)
	require.Equal(t, 100, saved.Bounds().Dx())
	require.Equal(t, 50, saved.Bounds().Dy())
}

func TestSaveComponents_ClipsOutOfBoundsBoxes(t *testing.T) {
	pageDir := t.TempDir()
	img := testPageImage(100, 100)

	// The box hangs off the top-left and bottom-right corners; the crop
	// clips to the page instead of dropping the detection.
	components, err := SaveComponents(img, []Detection{
		{Class: ClassFigure, Box: Rect{X0: -30, Y0: -10, X1: 50, Y1: 40}, Confidence: 0.7},
		{Class: ClassFigure, Box: Rect{X0: 60, Y0: 60, X1: 400, Y1: 400}, Confidence: 0.7},
	}, pageDir, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, components, 2)

	first, err := imaging.Open(components[0].Path)
	require.NoError(t, err)
	require.Equal(t, 50, first.Bounds().Dx())
	require.Equal(t, 40, first.Bounds().Dy())

	second, err := imaging.Open(components[1].Path)
	require.NoError(t, err)
	require.Equal(t, 40, second.Bounds().Dx())
	require.Equal(t, 40, second.Bounds().Dy())
}

func TestSaveComponents_FlattensAlphaToWhite(t *testing.T) {
	pageDir := t.TempDir()

	// Fully transparent page region; the persisted JPEG has no alpha
	// channel, so the crop must flatten to opaque white.
	img := imaging.New(50, 50, color.NRGBA{R: 0, G: 0, B: 0, A: 0})

	components, err := SaveComponents(img, []Detection{
		{Class: ClassFigure, Box: Rect{X0: 0, Y0: 0, X1: 50, Y1: 50}, Confidence: 0.9},
	}, pageDir, DefaultConfig())
	require.NoError(t, err)

	saved, err := imaging.Open(components[0].Path)
	require.NoError(t, err)

	r, g, b, _ := saved.At(25, 25).RGBA()
	require.Greater(t, r>>8, uint32(248))
	require.Greater(t, g>>8, uint32(248))
	require.Greater(t, b>>8, uint32(248))
}
