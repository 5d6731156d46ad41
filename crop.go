package pdffigures

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// SaveComponents crops every detection out of the page image and
// persists each crop as a JPEG under <pageDir>/<class>/. Position
// indices count per class in detection order, so the filename written
// for a detection is <class>_<idx>_score<conf>.jpg. Crop boxes reaching
// outside the image are clipped to the image bounds; no detection is
// dropped for being out of bounds.
func SaveComponents(img image.Image, detections []Detection, pageDir string, cfg Config) ([]Component, error) {
	components := make([]Component, 0, len(detections))
	classCounters := make(map[ComponentClass]int)

	for _, det := range detections {
		idx := classCounters[det.Class]
		classCounters[det.Class]++

		classDir := filepath.Join(pageDir, string(det.Class))
		if err := os.MkdirAll(classDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create class directory %s", classDir)
		}

		crop := imaging.Crop(img, image.Rect(
			int(det.Box.X0), int(det.Box.Y0),
			int(det.Box.X1), int(det.Box.Y1),
		))

		path := filepath.Join(classDir, ComponentName(det.Class, idx, det.Confidence))
		if err := imaging.Save(flattenAlpha(crop), path, imaging.JPEGQuality(cfg.JPEGQuality)); err != nil {
			return nil, errors.Wrapf(err, "failed to save component %s", path)
		}

		components = append(components, Component{
			Class:      det.Class,
			Index:      idx,
			Confidence: det.Confidence,
			Path:       path,
		})
	}

	return components, nil
}

// flattenAlpha composites a crop over an opaque white background. JPEG
// carries no alpha channel, so translucent page regions must be
// flattened before encoding.
func flattenAlpha(crop *image.NRGBA) *image.NRGBA {
	if crop.Opaque() {
		return crop
	}
	bg := imaging.New(crop.Bounds().Dx(), crop.Bounds().Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, crop, image.Pt(0, 0), 1.0)
}
