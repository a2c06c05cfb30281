package sheet

import (
	"fmt"
	"strings"
)

// Placeholder key given to a column whose header cell is blank. The second
// blank column becomes "__EMPTY_1", the third "__EMPTY_2" and so on.
const EmptyKey = "__EMPTY"

// VersionUpdateKey marks the column that changed in the latest sheet version.
// It is always visible, also when browsing a sheet.
const VersionUpdateKey = "Versie-update"

// HeaderKeys turns a title row into raw column keys. Blank labels become
// placeholder keys and repeated labels get a numeric suffix, so every
// position has a unique key.
func HeaderKeys(labels []string) []string {
	keys := make([]string, len(labels))
	seen := make(map[string]int, len(labels))
	empty := 0

	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			if empty == 0 {
				label = EmptyKey
			} else {
				label = fmt.Sprintf("%s_%d", EmptyKey, empty)
			}
			empty++
		} else if n, ok := seen[label]; ok {
			seen[label] = n + 1
			label = fmt.Sprintf("%s_%d", label, n+1)
		} else {
			seen[label] = 0
		}
		keys[i] = label
	}
	return keys
}

// KeyGroup selects one of the two title-row layouts used by the workbook.
type KeyGroup string

const (
	GroupRegulier KeyGroup = "regulier"
	GroupDeeltijd KeyGroup = "deeltijd"
)

// KeyListOfConversions returns the title-row labels for a sheet group,
// truncated to the column count. The last column carries the dated marker
// of the sheet pair.
func KeyListOfConversions(group KeyGroup, columns int, datedMarker string) []string {
	var base []string
	switch group {
	case GroupDeeltijd:
		base = []string{
			"Bezem- en conversieregeling deeltijd", "", "", "", "",
			VersionUpdateKey, "", "", "", "", "", "", "", "", "", "", "",
		}
	default:
		base = []string{
			"Bezem- en conversieregeling", "", "", "", "", "", "",
			VersionUpdateKey, "", "", "", "", "", "", "", "", "",
		}
	}
	if columns > len(base) {
		columns = len(base)
	}

	labels := make([]string, columns)
	copy(labels, base[:columns])
	if datedMarker != "" && columns > 0 {
		labels[columns-1] = datedMarker
	}
	return labels
}
