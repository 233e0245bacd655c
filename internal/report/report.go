// Package report formats the end-of-run timing summary printed to stdout,
// one "Time to …" line per measured phase, grounded on the original
// engine's printTime.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/lifegrid/lifegrid/pkg/liftime"
)

// unitNames and their successive divisors, applied while the value in the
// next coarser unit would still be >= 1 — the original's time_strings/divisor
// tables in shared_functions.cpp:printTime.
var unitNames = [...]string{"microseconds", "milliseconds", "seconds", "minutes", "hours", "days"}
var divisors = [...]float64{1, 1000, 1000, 60, 60, 24}

// FormatDuration chooses the largest unit among microseconds through days in
// which the value is >= 1 and < 1000, matching printTime's loop exactly.
func FormatDuration(d time.Duration) string {
	value := float64(d.Microseconds())
	choice := 0
	for choice < 5 && value >= divisors[choice+1] {
		choice++
		value /= divisors[choice]
	}
	return fmt.Sprintf("%.2f %s", value, unitNames[choice])
}

// WriteLine writes a single "Time to <msg>: <value> <unit>." line, the exact
// format the original CLI prints per measured phase.
func WriteLine(w io.Writer, msg string, d time.Duration) {
	fmt.Fprintf(w, "Time to %s: %s.\n", msg, FormatDuration(d))
}

// WriteSummary writes one WriteLine per phase recorded on timer, in the
// order the phases were started. No separate total line is written.
func WriteSummary(w io.Writer, timer *liftime.Timer) {
	for _, phase := range timer.GetPhases() {
		WriteLine(w, phase.Name, phase.Duration)
	}
}
