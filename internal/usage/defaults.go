package usage

import "time"

// DefaultMonthlyLimit applies when no limit is configured.
const DefaultMonthlyLimit = 50

const defaultPlan = "Free"

func defaultUsage(limit int, now time.Time) Usage {
	if limit <= 0 {
		limit = DefaultMonthlyLimit
	}
	return Usage{
		Plan:     defaultPlan,
		Limit:    limit,
		Used:     0,
		ResetsAt: nextMonthStart(now),
	}
}

// nextMonthStart returns midnight UTC on the first day of the following month.
func nextMonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
