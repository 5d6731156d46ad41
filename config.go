package pdffigures

// Config controls the extraction and pairing pipeline.
type Config struct {
	// PairingThreshold is the maximum position-index distance between an
	// item and a caption for a pair to be accepted (default: 30)
	PairingThreshold int

	// MinConfidence drops detections below this confidence before
	// cropping (default: 0.2)
	MinConfidence float64

	// DPI is the resolution pages are rasterized at (default: 150)
	DPI int

	// JPEGQuality is the encode quality for persisted crops (default: 90)
	JPEGQuality int

	// EnableMetricsLogging logs per-stage timing and statistics after a
	// run (default: false)
	EnableMetricsLogging bool
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		PairingThreshold: 30,
		MinConfidence:    0.2,
		DPI:              150,
		JPEGQuality:      90,
	}
}
