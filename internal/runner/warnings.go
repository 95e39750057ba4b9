package runner

import (
	"regexp"
	"sort"
)

// WarningMarker starts every warning line ikvmc prints.
const WarningMarker = "Warning "

// warningLine matches "Warning <code>:" at the start of a line.
var warningLine = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(WarningMarker) + `([^\s:]+):`)

// ScanWarnings returns the distinct warning codes found in the outputs,
// sorted. Codes are compared case-sensitively.
func ScanWarnings(outputs ...string) []string {
	seen := map[string]bool{}
	var codes []string
	for _, out := range outputs {
		for _, m := range warningLine.FindAllStringSubmatch(out, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				codes = append(codes, m[1])
			}
		}
	}
	sort.Strings(codes)
	return codes
}
