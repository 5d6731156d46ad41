package pdffigures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ivanvanderbyl/pdffigures/logging"
)

// RunMetrics contains timing and statistics for one document run.
type RunMetrics struct {
	TotalTime  time.Duration
	Rasterize  time.Duration
	Pages      []PageMetrics
	Statistics RunStatistics
}

// PageMetrics contains timing for a single page.
type PageMetrics struct {
	PageNumber int
	Duration   time.Duration
}

// RunStatistics contains document-level counts.
type RunStatistics struct {
	TotalPages      int
	TotalDetections int
	TotalComponents int
	TotalPairs      int
	TotalUnpaired   int
	FailedPages     int
}

// Pipeline drives extraction and pairing for whole documents: rasterize
// every page, detect and crop layout components, then pair items with
// captions page by page under workDir.
type Pipeline struct {
	renderer PageRenderer
	detector Detector
	workDir  string
	config   Config
}

// NewPipeline creates a pipeline with the default configuration.
func NewPipeline(renderer PageRenderer, detector Detector, workDir string) *Pipeline {
	return NewPipelineWithConfig(renderer, detector, workDir, DefaultConfig())
}

// NewPipelineWithConfig creates a pipeline with a custom configuration.
func NewPipelineWithConfig(renderer PageRenderer, detector Detector, workDir string, config Config) *Pipeline {
	return &Pipeline{
		renderer: renderer,
		detector: detector,
		workDir:  workDir,
		config:   config,
	}
}

// Run processes one document and returns the directory holding its
// paired results. A rasterization or detection failure aborts the
// document; a pairing failure on one page is logged and counted while
// its sibling pages continue.
func (p *Pipeline) Run(docPath string) (string, error) {
	result, _, err := p.RunWithMetrics(docPath)
	return result, err
}

// RunWithMetrics is Run with timing and statistics for the whole run.
func (p *Pipeline) RunWithMetrics(docPath string) (string, *RunMetrics, error) {
	startTime := time.Now()
	metrics := &RunMetrics{}
	log := logging.Logger()

	docID := docStem(docPath)

	rasterStart := time.Now()
	pages, err := p.renderer.RenderDocument(docPath)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to rasterize document %s", docPath)
	}
	metrics.Rasterize = time.Since(rasterStart)
	metrics.Statistics.TotalPages = len(pages)
	log.Info("document rasterized", "doc", docID, "pages", len(pages))

	pageDir := filepath.Join(p.workDir, "page_paper", docID)
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return "", nil, errors.Wrapf(err, "failed to create page directory %s", pageDir)
	}

	// Created eagerly so a document with no detections still pairs to an
	// empty result instead of failing on a missing source directory.
	croppedDir := filepath.Join(p.workDir, "cropped_results", docID)
	if err := os.MkdirAll(croppedDir, 0o755); err != nil {
		return "", nil, errors.Wrapf(err, "failed to create cropped directory %s", croppedDir)
	}

	for i, img := range pages {
		pageStart := time.Now()
		pageID := fmt.Sprintf("page_%d", i+1)

		if err := imaging.Save(img, filepath.Join(pageDir, pageID+".png")); err != nil {
			return "", nil, errors.Wrapf(err, "failed to save page image %s", pageID)
		}

		detections, err := p.detector.Detect(img)
		if err != nil {
			return "", nil, errors.Wrapf(err, "failed to detect layout on %s", pageID)
		}
		metrics.Statistics.TotalDetections += len(detections)

		kept := filterByConfidence(detections, p.config.MinConfidence)
		components, err := SaveComponents(img, kept, filepath.Join(croppedDir, pageID), p.config)
		if err != nil {
			return "", nil, errors.Wrapf(err, "failed to crop components on %s", pageID)
		}
		metrics.Statistics.TotalComponents += len(components)

		metrics.Pages = append(metrics.Pages, PageMetrics{PageNumber: i + 1, Duration: time.Since(pageStart)})
		log.Debug("page cropped", "doc", docID, "page", pageID, "components", len(components))
	}

	pairedDir := filepath.Join(p.workDir, "paired_results", docID)
	results, pageErrs, err := PairDirectory(croppedDir, pairedDir, p.config.PairingThreshold)
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to pair document %s", docID)
	}
	for page, pageErr := range pageErrs {
		log.Error("pairing failed", "doc", docID, "page", page, "error", pageErr)
	}
	metrics.Statistics.FailedPages = len(pageErrs)
	for _, result := range results {
		metrics.Statistics.TotalPairs += len(result.Paired)
		metrics.Statistics.TotalUnpaired += len(result.Unpaired)
	}

	metrics.TotalTime = time.Since(startTime)
	if p.config.EnableMetricsLogging {
		p.logMetrics(docID, metrics)
	}
	log.Info("pairing complete", "doc", docID,
		"pairs", metrics.Statistics.TotalPairs,
		"unpaired", metrics.Statistics.TotalUnpaired)

	return pairedDir, metrics, nil
}

// RunBatch processes documents independently: one document's failure is
// recorded and the rest continue. Returned errors are keyed by document
// path.
func (p *Pipeline) RunBatch(docPaths []string) (map[string]string, map[string]error) {
	resultDirs := make(map[string]string)
	docErrs := make(map[string]error)
	for _, docPath := range docPaths {
		dir, err := p.Run(docPath)
		if err != nil {
			logging.Logger().Error("document failed", "doc", docPath, "error", err)
			docErrs[docPath] = err
			continue
		}
		resultDirs[docPath] = dir
	}
	return resultDirs, docErrs
}

func (p *Pipeline) logMetrics(docID string, metrics *RunMetrics) {
	log := logging.Logger()
	log.Info("run metrics",
		"doc", docID,
		"total", metrics.TotalTime,
		"rasterize", metrics.Rasterize,
		"pages", metrics.Statistics.TotalPages,
		"detections", metrics.Statistics.TotalDetections,
		"components", metrics.Statistics.TotalComponents,
		"pairs", metrics.Statistics.TotalPairs,
		"unpaired", metrics.Statistics.TotalUnpaired,
		"failed_pages", metrics.Statistics.FailedPages)
	for _, pm := range metrics.Pages {
		log.Debug("page timing", "page", pm.PageNumber, "duration", pm.Duration)
	}
}

// filterByConfidence drops detections below the cutoff, preserving
// detection order.
func filterByConfidence(detections []Detection, minConfidence float64) []Detection {
	kept := make([]Detection, 0, len(detections))
	for _, det := range detections {
		if det.Confidence >= minConfidence {
			kept = append(kept, det)
		}
	}
	return kept
}

// docStem returns the document identifier used in the output tree: the
// base filename without its extension.
func docStem(docPath string) string {
	base := filepath.Base(docPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
