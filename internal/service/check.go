package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Some shift checks have two severity tiers: the same condition can be
// tolerable (log and continue) or fatal (abort) depending on how far it is
// over the line. A checkResult carries that tri-state instead of a bool so
// callers can log-and-continue on warn and reject on block.

type checkSeverity int

const (
	checkOK checkSeverity = iota
	checkWarn
	checkBlock
)

type checkResult struct {
	severity checkSeverity
	message  string
}

func (c checkResult) ok() bool    { return c.severity == checkOK }
func (c checkResult) warn() bool  { return c.severity == checkWarn }
func (c checkResult) block() bool { return c.severity == checkBlock }

// checkIndexContinuity compares the declared starting index against the
// nozzle's last recorded reading. Below the meter is a hard block (a meter
// never runs backwards); above it is a warning, since a gap signals
// un-reconciled drift but may be legitimate (maintenance, manual dispensing).
func checkIndexContinuity(indexStart, currentIndex decimal.Decimal) checkResult {
	switch {
	case indexStart.LessThan(currentIndex):
		return checkResult{checkBlock, fmt.Sprintf(
			"index_start %s is below the nozzle's current meter reading %s",
			indexStart.StringFixed(2), currentIndex.StringFixed(2))}
	case indexStart.GreaterThan(currentIndex):
		return checkResult{checkWarn, fmt.Sprintf(
			"index_start %s does not match the nozzle's last recorded reading %s (drift of %s L)",
			indexStart.StringFixed(2), currentIndex.StringFixed(2),
			indexStart.Sub(currentIndex).StringFixed(2))}
	default:
		return checkResult{checkOK, ""}
	}
}

// checkShiftDuration applies the two-tier duration policy: past softMax the
// close is allowed but flagged, past hardMax it is rejected.
func checkShiftDuration(startedAt, endedAt time.Time, softMax, hardMax time.Duration) checkResult {
	elapsed := endedAt.Sub(startedAt)
	switch {
	case elapsed > hardMax:
		return checkResult{checkBlock, fmt.Sprintf(
			"shift duration %.1fh exceeds the hard maximum of %.0fh",
			elapsed.Hours(), hardMax.Hours())}
	case elapsed > softMax:
		return checkResult{checkWarn, fmt.Sprintf(
			"shift duration %.1fh exceeds the expected maximum of %.0fh",
			elapsed.Hours(), softMax.Hours())}
	default:
		return checkResult{checkOK, ""}
	}
}
