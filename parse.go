package pdffigures

import (
	"regexp"
	"strconv"
)

// componentNamePattern matches filenames written by SaveComponents:
// class name, position index, formatted confidence, jpg extension.
var componentNamePattern = regexp.MustCompile(`^([A-Za-z_]+)_(\d+)_score(\d+(?:\.\d+)?)\.jpg$`)

// ParseComponentName recovers the class, position index and confidence
// embedded in a component filename. It reports ok=false for any name
// that does not conform; callers treat such files as non-components and
// skip them.
func ParseComponentName(filename string) (class ComponentClass, index int, confidence float64, ok bool) {
	m := componentNamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", 0, 0, false
	}

	// The pattern guarantees both parses succeed.
	index, _ = strconv.Atoi(m[2])
	confidence, _ = strconv.ParseFloat(m[3], 64)

	return ComponentClass(m[1]), index, confidence, true
}

// ComponentName builds the canonical filename for a persisted crop.
func ComponentName(class ComponentClass, index int, confidence float64) string {
	return string(class) + "_" + strconv.Itoa(index) + "_score" + strconv.FormatFloat(confidence, 'f', 2, 64) + ".jpg"
}
