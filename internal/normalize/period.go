package normalize

import (
	"regexp"
	"time"
)

// periodPattern extracts a YYYY-MM substring from a report filename such as
// "KDP-report-2024-03.xlsx".
var periodPattern = regexp.MustCompile(`\d{4}-\d{2}`)

// ReportingPeriod derives the YYYY-MM bucket a transaction belongs to.
//
// Priority: a YYYY-MM substring in the import's filename, then the row's
// sales date, then the current month. The three-tier fallback keeps every
// migrated row attributable to some period even when upstream metadata is
// incomplete; the possible misattribution is a known, accepted property.
func ReportingPeriod(fileName string, salesDate *time.Time, now time.Time) string {
	if match := periodPattern.FindString(fileName); match != "" {
		return match
	}

	if salesDate != nil {
		return salesDate.Format("2006-01")
	}

	return now.Format("2006-01")
}
