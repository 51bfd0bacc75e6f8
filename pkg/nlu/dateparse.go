package nlu

import (
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

// foundDate is one free-text date mention located in the prompt.
type foundDate struct {
	text string
	when time.Time
}

func dateparserConfig(now time.Time) *dps.Configuration {
	return &dps.Configuration{
		CurrentTime:     now,
		DefaultTimezone: time.UTC,
		Languages:       []string{"es"},
	}
}

// searchDates finds every date mention in free text, in document order.
// The Spanish restriction comes from the configuration's language list.
func searchDates(text string, now time.Time) []foundDate {
	_, results, err := dps.Search(dateparserConfig(now), text)
	if err != nil {
		return nil
	}
	found := make([]foundDate, 0, len(results))
	for _, r := range results {
		if r.Date.Time.IsZero() {
			continue
		}
		found = append(found, foundDate{text: r.Text, when: r.Date.Time})
	}
	return found
}

// parseDate parses the whole text as a single date phrase.
func parseDate(text string, now time.Time) (time.Time, bool) {
	dt, err := dps.Parse(dateparserConfig(now), text)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return dt.Time, true
}
