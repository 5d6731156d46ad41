package pdffigures

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// RawDetection is the wire shape an external detector process writes:
// one record per detected box, class given by index into ClassNames.
type RawDetection struct {
	ClassIndex int        `json:"class_index"`
	BBox       [4]float64 `json:"bbox"`
	Confidence float64    `json:"confidence"`
}

// Detections converts raw detector records to typed detections.
func Detections(raw []RawDetection) []Detection {
	detections := make([]Detection, 0, len(raw))
	for _, r := range raw {
		detections = append(detections, Detection{
			Class:      ClassFromIndex(r.ClassIndex),
			Box:        Rect{X0: r.BBox[0], Y0: r.BBox[1], X1: r.BBox[2], Y1: r.BBox[3]},
			Confidence: r.Confidence,
		})
	}
	return detections
}

// LoadDetections reads one page's detections from a JSON file. A page
// with no detections is an empty array, not a missing file.
func LoadDetections(path string) ([]Detection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read detections file %s", path)
	}
	var raw []RawDetection
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse detections file %s", path)
	}
	return Detections(raw), nil
}

// DetectionsDirectory is a Detector backed by per-page JSON files named
// page_1.json, page_2.json, ... in a directory. It adapts a detector
// that runs out of process: the model writes its output per page, and
// the pipeline consumes the files in page order. Detect advances one
// page per call, matching the pipeline's page iteration; a missing page
// file is a detector failure and fails the document.
type DetectionsDirectory struct {
	dir  string
	page int
}

// NewDetectionsDirectory returns a Detector reading from dir.
func NewDetectionsDirectory(dir string) *DetectionsDirectory {
	return &DetectionsDirectory{dir: dir}
}

// Detect returns the detections recorded for the next page. The image
// is ignored; the boxes were computed by the external model against the
// same rasterization.
func (d *DetectionsDirectory) Detect(_ image.Image) ([]Detection, error) {
	d.page++
	return LoadDetections(filepath.Join(d.dir, "page_"+strconv.Itoa(d.page)+".json"))
}
