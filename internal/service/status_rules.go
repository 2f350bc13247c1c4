package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/socialflow-api/internal/models"
)

// DeadlineFor derives the to-do comment from an activity's closing and late dates.
// A nil date is undefined.
func DeadlineFor(now time.Time, closing, late *time.Time) models.Deadline {
	switch {
	case late != nil:
		if now.Before(*late) {
			return models.Deadline{Kind: models.DeadlineLimit, Date: late}
		}
		if closing != nil && now.Before(*closing) {
			return models.Deadline{Kind: models.DeadlineLate, Date: closing}
		}
		return models.Deadline{Kind: models.DeadlineClosed}
	case closing != nil:
		if now.Before(*closing) {
			return models.Deadline{Kind: models.DeadlineLimit, Date: closing}
		}
		return models.Deadline{Kind: models.DeadlineClosed}
	}
	return models.Deadline{}
}

// FrequencyPercent expresses a frequency as a percentage rounded half up.
func FrequencyPercent(freq float64) int {
	return int(math.Floor(100*freq + 0.5))
}

// userListed reports whether userID appears in a comma separated id list.
func userListed(list *string, userID int64) bool {
	if list == nil || *list == "" {
		return false
	}
	want := strconv.FormatInt(userID, 10)
	for _, part := range strings.Split(*list, ",") {
		if strings.TrimSpace(part) == want {
			return true
		}
	}
	return false
}

// closingTime converts a stored closing date, treating the undefined marker as nil.
func closingTime(ts int64, loc *time.Location) *time.Time {
	if ts <= 0 || ts == models.UndefinedClosingDate {
		return nil
	}
	t := time.Unix(ts, 0).In(loc)
	return &t
}
