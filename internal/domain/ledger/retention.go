package ledger

import "time"

// RetentionPolicy bounds the log by entry count and by age. Zero disables a bound.
type RetentionPolicy struct {
	MaxEntries int
	MaxAge     time.Duration
}

func (p RetentionPolicy) Enabled() bool {
	return p.MaxEntries > 0 || p.MaxAge > 0
}

// Cutoff is the oldest timestamp still retained by the age bound.
func (p RetentionPolicy) Cutoff(now time.Time) (time.Time, bool) {
	if p.MaxAge <= 0 {
		return time.Time{}, false
	}
	return now.Add(-p.MaxAge), true
}

// Expired reports whether an entry falls outside the age bound.
func (p RetentionPolicy) Expired(createdAt, now time.Time) bool {
	cutoff, ok := p.Cutoff(now)
	return ok && createdAt.Before(cutoff)
}

// Overflow returns how many of total entries exceed the count bound.
func (p RetentionPolicy) Overflow(total int) int {
	if p.MaxEntries <= 0 || total <= p.MaxEntries {
		return 0
	}
	return total - p.MaxEntries
}
