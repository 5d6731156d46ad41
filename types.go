// Package pdffigures extracts figures and tables together with their
// captions from scanned document pages. A layout detector produces typed
// bounding boxes for a rendered page, the cropper persists one image per
// detection, and the pairing engine matches each figure or table to its
// nearest unused caption by position index.
package pdffigures

import (
	"fmt"
	"image"
)

// Rect represents a bounding box in page pixel coordinates.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top
	X1 float64 // Right
	Y1 float64 // Bottom
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// ComponentClass identifies the layout class of a detected component.
type ComponentClass string

// The closed set of layout classes the detector emits. Only figures,
// tables and their caption classes participate in pairing; the rest are
// cropped and persisted but otherwise inert.
const (
	ClassTitle             ComponentClass = "title"
	ClassPlainText         ComponentClass = "plain_text"
	ClassAbandon           ComponentClass = "abandon"
	ClassFigure            ComponentClass = "figure"
	ClassFigureCaption     ComponentClass = "figure_caption"
	ClassTable             ComponentClass = "table"
	ClassTableCaptionAbove ComponentClass = "table_caption_above"
	ClassTableCaptionBelow ComponentClass = "table_caption_below"
	ClassFormula           ComponentClass = "formula"
	ClassFormulaCaption    ComponentClass = "formula_caption"
)

// ClassNames maps the detector's class index to its class name.
var ClassNames = map[int]ComponentClass{
	0: ClassTitle,
	1: ClassPlainText,
	2: ClassAbandon,
	3: ClassFigure,
	4: ClassFigureCaption,
	5: ClassTable,
	6: ClassTableCaptionAbove,
	7: ClassTableCaptionBelow,
	8: ClassFormula,
	9: ClassFormulaCaption,
}

// ClassFromIndex resolves a detector class index to a class name.
// Unknown indices map to "cls<N>" rather than failing; such components
// are persisted but never participate in pairing.
func ClassFromIndex(idx int) ComponentClass {
	if name, ok := ClassNames[idx]; ok {
		return name
	}
	return ComponentClass(fmt.Sprintf("cls%d", idx))
}

// participatingClasses lists the classes the pairing engine considers,
// in the order they are organized and reported.
var participatingClasses = []ComponentClass{
	ClassFigure,
	ClassFigureCaption,
	ClassTable,
	ClassTableCaptionAbove,
	ClassTableCaptionBelow,
}

// itemCaptionClasses fixes the pairing order: figures first against
// figure captions, then tables against both table caption classes.
var itemCaptionClasses = []struct {
	Item     ComponentClass
	Captions []ComponentClass
}{
	{ClassFigure, []ComponentClass{ClassFigureCaption}},
	{ClassTable, []ComponentClass{ClassTableCaptionAbove, ClassTableCaptionBelow}},
}

// Detection is one typed bounding box emitted by the layout detector
// for a page image. Immutable once created.
type Detection struct {
	Class      ComponentClass
	Box        Rect
	Confidence float64
}

// Component is a persisted crop of one Detection. Index orders the
// component within its class on the page, assigned in detection order.
// Page is the 1-based page number, 0 when the owning page is unknown
// (components paired directly from a bare page directory).
type Component struct {
	Class      ComponentClass
	Page       int
	Index      int
	Confidence float64
	Path       string
}

// Pair associates one item component (figure or table) with exactly one
// caption component. Distance is the absolute position-index distance
// between the two.
type Pair struct {
	Item     Component
	Caption  Component
	Distance int
}

// PairingResult partitions a page's participating components: every
// figure, table and caption component on the page lands in exactly one
// of the two buckets.
type PairingResult struct {
	Paired   []Pair
	Unpaired []Component
}

// Detector maps a page image to layout detections. Implementations wrap
// an external object-detection model; the pipeline only relies on the
// (class, box, confidence) tuples coming back in detection order.
type Detector interface {
	Detect(img image.Image) ([]Detection, error)
}

// PageRenderer rasterizes a source document into one image per page.
type PageRenderer interface {
	RenderDocument(filePath string) ([]image.Image, error)
}
