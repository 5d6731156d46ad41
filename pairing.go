package pdffigures

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// organizePage scans the participating class directories under pageDir
// and maps each class to its components keyed by position index.
// Filenames that do not parse are skipped. Directory entries are walked
// in sorted name order, and a duplicate index within a class replaces
// the earlier entry (last write wins). That collision policy tolerates
// duplicate indices from a dirty crop directory instead of rejecting
// the page.
func organizePage(pageDir string) (map[ComponentClass]map[int]string, error) {
	organized := make(map[ComponentClass]map[int]string)

	for _, class := range participatingClasses {
		classDir := filepath.Join(pageDir, string(class))
		entries, err := os.ReadDir(classDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to read class directory %s", classDir)
		}

		byIndex := make(map[int]string)
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			parsedClass, index, _, ok := ParseComponentName(entry.Name())
			if !ok || parsedClass != class {
				continue
			}
			byIndex[index] = filepath.Join(classDir, entry.Name())
		}
		if len(byIndex) > 0 {
			organized[class] = byIndex
		}
	}

	return organized, nil
}

// sortedIndices returns the keys of a component index map in ascending
// order, fixing the iteration order of the greedy pass.
func sortedIndices(byIndex map[int]string) []int {
	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// PairPage runs one greedy nearest-neighbor pairing pass over a page's
// cropped components and persists the partition under outputDir.
//
// Items are visited in ascending position-index order, figures before
// tables. Each item claims the not-yet-used caption of its allowed
// caption classes with the minimum absolute index distance; scanning
// covers caption classes in declared order, then ascending index, and
// a strict improvement is required, so ties go to the first candidate
// encountered. A claimed caption stays consumed for the rest of the
// page even if a later item would have been a closer match. Items with
// no caption within threshold, and captions never claimed, end up
// unpaired.
//
// Every committed pair is copied into <outputDir>/paired_<class>_<idx>/
// and every leftover component into <outputDir>/unpaired_<class>_<idx>/.
func PairPage(pageDir, outputDir string, threshold int) (*PairingResult, error) {
	organized, err := organizePage(pageDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	result := &PairingResult{}
	pairedPaths := make(map[string]bool)
	usedCaptions := make(map[ComponentClass]map[int]bool)
	for _, class := range participatingClasses {
		usedCaptions[class] = make(map[int]bool)
	}

	for _, group := range itemCaptionClasses {
		items := organized[group.Item]
		for _, itemIndex := range sortedIndices(items) {
			itemPath := items[itemIndex]

			bestDist := -1
			var bestCaption Component
			for _, capClass := range group.Captions {
				captions := organized[capClass]
				for _, capIndex := range sortedIndices(captions) {
					if usedCaptions[capClass][capIndex] {
						continue
					}
					dist := itemIndex - capIndex
					if dist < 0 {
						dist = -dist
					}
					if bestDist < 0 || dist < bestDist {
						bestDist = dist
						bestCaption = Component{Class: capClass, Index: capIndex, Path: captions[capIndex]}
					}
				}
			}

			if bestDist < 0 || bestDist > threshold {
				continue
			}

			pairDir := filepath.Join(outputDir, "paired_"+string(group.Item)+"_"+strconv.Itoa(itemIndex))
			if err := os.MkdirAll(pairDir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create pair directory %s", pairDir)
			}
			if err := copyFileInto(itemPath, pairDir); err != nil {
				return nil, err
			}
			if err := copyFileInto(bestCaption.Path, pairDir); err != nil {
				return nil, err
			}

			pairedPaths[itemPath] = true
			pairedPaths[bestCaption.Path] = true
			usedCaptions[bestCaption.Class][bestCaption.Index] = true

			result.Paired = append(result.Paired, Pair{
				Item:     Component{Class: group.Item, Index: itemIndex, Path: itemPath},
				Caption:  bestCaption,
				Distance: bestDist,
			})
		}
	}

	for _, class := range participatingClasses {
		byIndex := organized[class]
		for _, index := range sortedIndices(byIndex) {
			path := byIndex[index]
			if pairedPaths[path] {
				continue
			}
			unpairedDir := filepath.Join(outputDir, "unpaired_"+string(class)+"_"+strconv.Itoa(index))
			if err := os.MkdirAll(unpairedDir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create unpaired directory %s", unpairedDir)
			}
			if err := copyFileInto(path, unpairedDir); err != nil {
				return nil, err
			}
			result.Unpaired = append(result.Unpaired, Component{Class: class, Index: index, Path: path})
		}
	}

	return result, nil
}

// PairDirectory pairs every page directory under sourceDir, writing the
// partition for each page into a directory of the same name under
// outputDir. The output root is deleted and recreated first, so a rerun
// never accumulates results from a previous attempt. A page that fails
// to pair does not stop its siblings; the per-page errors come back in
// the returned map, keyed by page directory name.
func PairDirectory(sourceDir, outputDir string, threshold int) (map[string]*PairingResult, map[string]error, error) {
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to clear output directory %s", outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read source directory %s", sourceDir)
	}

	results := make(map[string]*PairingResult)
	pageErrs := make(map[string]error)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "page_") {
			continue
		}
		pageDir := filepath.Join(sourceDir, entry.Name())
		result, err := PairPage(pageDir, filepath.Join(outputDir, entry.Name()), threshold)
		if err != nil {
			pageErrs[entry.Name()] = err
			continue
		}
		if page, convErr := strconv.Atoi(strings.TrimPrefix(entry.Name(), "page_")); convErr == nil {
			stampPage(result, page)
		}
		results[entry.Name()] = result
	}

	return results, pageErrs, nil
}

// stampPage records the owning page number on every component in the
// partition.
func stampPage(result *PairingResult, page int) {
	for i := range result.Paired {
		result.Paired[i].Item.Page = page
		result.Paired[i].Caption.Page = page
	}
	for i := range result.Unpaired {
		result.Unpaired[i].Page = page
	}
}

// copyFileInto copies src byte for byte into destDir, keeping the base
// filename so the embedded class and index survive.
func copyFileInto(src, destDir string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", src)
	}
	defer in.Close()

	destPath := filepath.Join(destDir, filepath.Base(src))
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", destPath)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrapf(err, "failed to copy %s", src)
	}
	return errors.Wrapf(out.Close(), "failed to flush %s", destPath)
}
