package model

import (
	"fmt"
	"time"
)

// seasonBoundaryMonth is the month a new season starts. Games from October
// onward belong to the season spanning (year, year+1).
const seasonBoundaryMonth = time.October

// SeasonOf returns the season label ("2025-26") for a game date.
func SeasonOf(d time.Time) string {
	year := d.Year()
	if d.Month() < seasonBoundaryMonth {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}
