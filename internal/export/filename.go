package export

import (
	"strconv"

	"incomebook/internal/report"
)

// Filename names the artifact for req: detailed reports carry both range
// bounds ("start"/"end" when open), monthly reports the year ("all" when
// unset) and yearly reports a fixed name.
func Filename(req report.Request, f Format) string {
	var base string
	switch r := req.(type) {
	case report.Detailed:
		from, to := "start", "end"
		if !r.From.IsZero() {
			from = r.From.String()
		}
		if !r.To.IsZero() {
			to = r.To.String()
		}
		base = "income-detailed-" + from + "-to-" + to
	case report.Monthly:
		year := "all"
		if r.Year != 0 {
			year = strconv.Itoa(r.Year)
		}
		base = "income-monthly-" + year
	default:
		base = "income-yearly"
	}
	return base + f.Extension()
}
