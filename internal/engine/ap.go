package engine

import "time"

// RecoveryRule describes quantized AP regeneration: Amount points restored
// per whole Interval elapsed. Tiers without a rule never regenerate.
type RecoveryRule struct {
	Amount   int
	Interval time.Duration
}

// SyncAPState credits quantized AP recovery. Pure function: callers re-derive
// it on every action attempt and on a periodic timer.
//
// The returned timestamp advances by whole intervals only, never to now, so
// fractional progress toward the next interval survives repeated calls. A
// zero or future lastUpdated is treated as "now at first observation" rather
// than epoch zero, which would over-credit recovery.
func SyncAPState(currentAP int, lastUpdated, now time.Time, maxAP int, rec *RecoveryRule) (int, time.Time) {
	if lastUpdated.IsZero() || lastUpdated.After(now) {
		return currentAP, now
	}
	if rec == nil || rec.Amount <= 0 || rec.Interval <= 0 {
		return currentAP, lastUpdated
	}
	if currentAP >= maxAP {
		return currentAP, lastUpdated
	}
	elapsed := now.Sub(lastUpdated)
	if elapsed < rec.Interval {
		return currentAP, lastUpdated
	}
	intervals := int(elapsed / rec.Interval)
	recovered := intervals * rec.Amount
	ap := currentAP + recovered
	if ap > maxAP {
		ap = maxAP
	}
	return ap, lastUpdated.Add(time.Duration(intervals) * rec.Interval)
}

// MinutesUntilRecovery reports how long until the next AP point is credited,
// rounded up to whole minutes. Zero when the tier does not regenerate.
func MinutesUntilRecovery(lastUpdated, now time.Time, rec *RecoveryRule) int {
	if rec == nil || rec.Interval <= 0 {
		return 0
	}
	if lastUpdated.IsZero() || lastUpdated.After(now) {
		lastUpdated = now
	}
	remaining := rec.Interval - now.Sub(lastUpdated)%rec.Interval
	mins := int((remaining + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return mins
}
