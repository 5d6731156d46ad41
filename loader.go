package pdffigures

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// PairedImage is one figure- or table-caption pair read back from a
// paired-results tree.
type PairedImage struct {
	Kind        ComponentClass // ClassFigure or ClassTable
	ItemPath    string
	CaptionPath string
}

// LoadPairedImages walks a paired-results tree and returns every pair
// found under a paired_* directory, sorted by directory path. Pair
// directories missing either side are skipped. The caption side is
// recognized by the "caption" token its class name leaves in the
// filename.
func LoadPairedImages(baseDir string) ([]PairedImage, error) {
	if _, err := os.Stat(baseDir); err != nil {
		return nil, errors.Wrapf(err, "failed to open paired results directory %s", baseDir)
	}

	var pairDirs []string
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), "paired_") {
			pairDirs = append(pairDirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk paired results directory %s", baseDir)
	}
	sort.Strings(pairDirs)

	var pairs []PairedImage
	for _, dir := range pairDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read pair directory %s", dir)
		}

		var itemPath, captionPath string
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			if strings.Contains(entry.Name(), "caption") {
				captionPath = path
			} else {
				itemPath = path
			}
		}
		if itemPath == "" || captionPath == "" {
			continue
		}

		kind := ClassFigure
		if strings.Contains(filepath.Base(dir), string(ClassTable)) {
			kind = ClassTable
		}
		pairs = append(pairs, PairedImage{Kind: kind, ItemPath: itemPath, CaptionPath: captionPath})
	}

	return pairs, nil
}
