package service

import (
	"alcyxob/gymhub/internal/domain"
	"fmt"
	"time"
)

// NextStreak folds a "present" day into prev. It is the only place a
// streak's Current and Best change.
//
//	no previous day      -> current = 1
//	day after lastDate   -> current + 1
//	same day as lastDate -> unchanged
//	gap of 2+ days       -> current = 1
//
// A day before lastDate (a backfilled entry) leaves the record untouched.
func NextStreak(prev domain.StreakRecord, day string) (domain.StreakRecord, error) {
	d, err := time.Parse(domain.DateLayout, day)
	if err != nil {
		return prev, fmt.Errorf("streak day %q: %w", day, err)
	}
	next := prev
	if prev.LastDate == "" {
		next.Current = 1
	} else {
		last, err := time.Parse(domain.DateLayout, prev.LastDate)
		if err != nil {
			// An unreadable stored date cannot be continued from.
			next.Current = 1
		} else {
			diff := int(d.Sub(last).Hours() / 24)
			switch {
			case diff < 0:
				return prev, nil
			case diff == 0:
			case diff == 1:
				next.Current = prev.Current + 1
			default:
				next.Current = 1
			}
		}
	}
	if next.Current < 1 {
		next.Current = 1
	}
	if next.Current > next.Best {
		next.Best = next.Current
	}
	next.LastDate = day
	return next, nil
}
