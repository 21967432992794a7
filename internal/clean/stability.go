package clean

import (
	"math"
	"time"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// stabilityMonths is the average tenure, in months, across employment
// entries with a parseable start date. An open-ended or unparseable end date
// counts up to now. Zero when no tenure is measurable.
func stabilityMonths(employment []domain.EmploymentEntry) float64 {
	now := time.Now()
	var total float64
	var counted int
	for _, e := range employment {
		from, ok := parseDate(e.From)
		if !ok {
			continue
		}
		to := now
		if e.To != presentMarker {
			if t, ok := parseDate(e.To); ok {
				to = t
			}
		}
		if to.Before(from) {
			continue
		}
		total += to.Sub(from).Hours() / 24 / 30.44
		counted++
	}
	if counted == 0 {
		return 0
	}
	return math.Round(total/float64(counted)*100) / 100
}
