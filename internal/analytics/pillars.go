package analytics

import "strings"

// NormalizePillar maps a possibly decorated pillar label (UI labels
// historically carried emoji prefixes) onto the configured canonical
// set. Exact matches win; otherwise a label containing a canonical
// identifier as a substring maps to it, which preserves the grouping
// behavior of data stored before identifiers were normalized. An
// unrecognized label passes through unchanged so no record is ever
// dropped at the boundary.
func NormalizePillar(label string, canonical []string) string {
	label = strings.TrimSpace(label)
	for _, c := range canonical {
		if label == c {
			return c
		}
	}
	for _, c := range canonical {
		if c != "" && strings.Contains(label, c) {
			return c
		}
	}
	return label
}
