package poster

import (
	"fmt"
	"regexp"
	"time"
)

const (
	// TwitterMaxLength is the maximum weighted length of a post on X.
	TwitterMaxLength = 280

	// twitterURLLength is the fixed weight X assigns to every URL (t.co wrapping).
	twitterURLLength = 23

	// DateLayout is the format of the date query parameter.
	DateLayout = "2006-01-02"
)

// Tokyo is the fixed zone post dates are computed in. Japan has no DST, so
// the fixed +09:00 offset stands in when zoneinfo is unavailable.
var Tokyo = loadTokyo()

var urlPattern = regexp.MustCompile(`https?://\S+`)

func loadTokyo() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// Compose builds the post body for pt dated by now in Asia/Tokyo.
// The result depends only on (pt, now).
func Compose(pt PostType, now time.Time) (string, error) {
	return ComposeIn(pt, now, Tokyo)
}

// ComposeIn is Compose with an explicit time zone.
func ComposeIn(pt PostType, now time.Time, loc *time.Location) (string, error) {
	t, ok := templates[pt]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPostType, string(pt))
	}

	return fmt.Sprintf("%s\n%s\n%s", t.headline, AnalysisURL(pt, now.In(loc)), t.hashtags), nil
}

// AnalysisURL returns the daily analysis page for pt on the calendar date of t.
func AnalysisURL(pt PostType, t time.Time) string {
	return fmt.Sprintf("%s/analysis?date=%s", pt.SiteURL(), t.Format(DateLayout))
}

// WeightedLength approximates X's weighted character count: URLs count as 23,
// Latin and general punctuation ranges count 1, everything else (CJK, emoji) 2.
func WeightedLength(text string) int {
	n := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		n += twitterURLLength - weightOf(text[loc[0]:loc[1]])
	}
	return n + weightOf(text)
}

func weightOf(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r <= 0x10FF,
			r >= 0x2000 && r <= 0x200D,
			r >= 0x2010 && r <= 0x201F,
			r >= 0x2032 && r <= 0x2037:
			n++
		default:
			n += 2
		}
	}
	return n
}

// FitsInLimit checks if the formatted post fits within the limit.
func FitsInLimit(formatted string, limit int) bool {
	return WeightedLength(formatted) <= limit
}
