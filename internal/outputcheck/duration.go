package outputcheck

import (
	"fmt"
	"math"
)

// CheckDuration compares an output duration against the source within
// tolerance seconds. Duration drift is reported but treated as a warning by
// callers; a slightly short tail segment is not worth failing a delivery.
func CheckDuration(actualSeconds, expectedSeconds, toleranceSeconds float64) *Report {
	report := newReport("duration")

	if actualSeconds <= 0 {
		report.add("output_duration", false, "output duration unavailable")
		return report
	}
	report.add("output_duration", true, fmt.Sprintf("output duration %.3fs", actualSeconds))

	diff := math.Abs(actualSeconds - expectedSeconds)
	report.add("tolerance", diff <= toleranceSeconds,
		fmt.Sprintf("difference %.3fs against tolerance %.3fs", diff, toleranceSeconds))

	return report
}
