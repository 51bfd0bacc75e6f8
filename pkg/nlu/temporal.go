package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smartsales-io/report-engine/pkg/models"
	"github.com/smartsales-io/report-engine/pkg/textutil"
)

// DefaultWindowDays is the lookback applied when the prompt carries no
// temporal signal: [today-180d, today+1d).
const DefaultWindowDays = 180

var spanishMonths = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August,
	"septiembre": time.September, "setiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var monthWords = func() map[string]bool {
	words := map[string]bool{"mes": true}
	for m := range spanishMonths {
		words[m] = true
	}
	return words
}()

var (
	latamDateRe  = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	latamRangeRe = regexp.MustCompile(`(?i)(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})\s*(?:al|a|hasta|–|—|-|y)\s*(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	isoRangeRe   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}).*?(\d{4}-\d{2}-\d{2})`)
	monthNameRe  = regexp.MustCompile(`(?i)\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b\s*(\d{2,4})?`)
	bareYearRe   = regexp.MustCompile(`\b(20\d{2})\b`)
	periodRe     = regexp.MustCompile(`(?i)\b(?:(q|t)\s*([1-4])|(trimestre|cuatrimestre|semestre)\s*([1-4])?|(años?|anios?))\b(?:\s*(?:del?\s+)?(\d{4}))?`)
)

// temporalStage tries to extract a time range from text. On a match it
// returns the range plus the residual text with the date substring
// removed, so the substring cannot be re-read as an entity filter.
type temporalStage func(text string, today time.Time) (models.TimeRange, string, bool)

// TemporalResolver turns prompt text into a half-open date interval via
// an ordered cascade of extractors; the first stage that matches wins.
type TemporalResolver struct {
	now    func() time.Time
	stages []temporalStage
}

// NewTemporalResolver creates a resolver anchored at the wall clock.
func NewTemporalResolver() *TemporalResolver {
	return NewTemporalResolverAt(time.Now)
}

// NewTemporalResolverAt creates a resolver with an injectable clock.
func NewTemporalResolverAt(now func() time.Time) *TemporalResolver {
	r := &TemporalResolver{now: now}
	r.stages = []temporalStage{
		stageLocalizedRange,
		stageLocalizedSingle,
		stageSearchedDates,
		stageSingleParse,
		stageISORange,
		stageMonthNames,
		stagePeriodKeyword,
	}
	return r
}

// Resolve runs the cascade and returns the resolved range along with
// the residual text. The residual keeps the caller's casing so filter
// values captured from it stay readable. The fallback window is the
// last 180 days through tomorrow.
func (r *TemporalResolver) Resolve(text string) (models.TimeRange, string) {
	today := dateOnly(r.now())

	for _, stage := range r.stages {
		if tr, residual, ok := stage(text, today); ok {
			return tr.Normalized(), residual
		}
	}

	fallback := models.TimeRange{
		Start: today.AddDate(0, 0, -DefaultWindowDays),
		End:   today.AddDate(0, 0, 1),
	}
	return fallback, text
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// monthEnd is exclusive: the first day of the following month.
func monthEnd(y int, m time.Month) time.Time {
	return monthStart(y, m).AddDate(0, 1, 0)
}

// parseLocalizedDate parses DD/MM/YYYY (or DD-MM-YYYY). Two-digit years
// map 00-49 to 2000+ and 50-99 to 1900+.
func parseLocalizedDate(day, month, year string) (time.Time, bool) {
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if y < 100 {
		if y <= 49 {
			y += 2000
		} else {
			y += 1900
		}
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false // e.g. 31/02
	}
	return t, true
}

func cutMatch(text string, loc []int) string {
	return text[:loc[0]] + " " + text[loc[1]:]
}

func stageLocalizedRange(text string, _ time.Time) (models.TimeRange, string, bool) {
	loc := latamRangeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.TimeRange{}, "", false
	}
	m := latamRangeRe.FindStringSubmatch(text)
	start, ok1 := parseLocalizedDate(m[1], m[2], m[3])
	end, ok2 := parseLocalizedDate(m[4], m[5], m[6])
	if !ok1 || !ok2 {
		return models.TimeRange{}, "", false
	}
	if end.Before(start) {
		start, end = end, start
	}
	tr := models.TimeRange{Start: start, End: end.AddDate(0, 0, 1)}
	return tr, cutMatch(text, loc[:2]), true
}

func stageLocalizedSingle(text string, _ time.Time) (models.TimeRange, string, bool) {
	loc := latamDateRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.TimeRange{}, "", false
	}
	m := latamDateRe.FindStringSubmatch(text)
	day, ok := parseLocalizedDate(m[1], m[2], m[3])
	if !ok {
		return models.TimeRange{}, "", false
	}
	tr := models.TimeRange{Start: day, End: day.AddDate(0, 0, 1)}
	return tr, cutMatch(text, loc[:2]), true
}

// stageSearchedDates hands the text to the multilingual date search and
// takes the earliest and latest of two or more mentions as the bounds.
func stageSearchedDates(text string, today time.Time) (models.TimeRange, string, bool) {
	found := searchDates(text, today)
	if len(found) < 2 {
		return models.TimeRange{}, "", false
	}
	first, last := dateOnly(found[0].when), dateOnly(found[0].when)
	for _, f := range found[1:] {
		d := dateOnly(f.when)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	residual := text
	for _, f := range found {
		residual = strings.Replace(residual, f.text, " ", 1)
	}
	tr := models.TimeRange{Start: first, End: last.AddDate(0, 0, 1)}
	return tr, residual, true
}

// stageSingleParse parses the whole text as one date phrase and widens
// it to the mentioned calendar month or year.
func stageSingleParse(text string, today time.Time) (models.TimeRange, string, bool) {
	parsed, ok := parseDate(text, today)
	if !ok {
		return models.TimeRange{}, "", false
	}
	d := dateOnly(parsed)
	norm := textutil.Normalize(text)
	for _, word := range strings.Fields(norm) {
		if monthWords[word] {
			tr := models.TimeRange{Start: monthStart(d.Year(), d.Month()), End: monthEnd(d.Year(), d.Month())}
			return tr, text, true
		}
	}
	if strings.Contains(norm, "ano") || strings.Contains(norm, "anio") {
		tr := models.TimeRange{Start: monthStart(d.Year(), time.January), End: monthStart(d.Year()+1, time.January)}
		return tr, text, true
	}
	return models.TimeRange{}, "", false
}

func stageISORange(text string, _ time.Time) (models.TimeRange, string, bool) {
	loc := isoRangeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.TimeRange{}, "", false
	}
	m := isoRangeRe.FindStringSubmatch(text)
	start, err1 := time.ParseInLocation("2006-01-02", m[1], time.UTC)
	end, err2 := time.ParseInLocation("2006-01-02", m[2], time.UTC)
	if err1 != nil || err2 != nil {
		return models.TimeRange{}, "", false
	}
	residual := strings.Replace(text, m[1], " ", 1)
	residual = strings.Replace(residual, m[2], " ", 1)
	tr := models.TimeRange{Start: start, End: end.AddDate(0, 0, 1)}
	return tr, residual, true
}

// stageMonthNames spans from the first named month's start to the last
// named month's end; the year defaults to the current one.
func stageMonthNames(text string, today time.Time) (models.TimeRange, string, bool) {
	matches := monthNameRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return models.TimeRange{}, "", false
	}

	year := today.Year()
	explicit := false
	for _, m := range matches {
		if m[2] != "" {
			y, _ := strconv.Atoi(m[2])
			if y <= 100 {
				y += 2000
			}
			year, explicit = y, true
			break
		}
	}
	if !explicit {
		if ym := bareYearRe.FindStringSubmatch(text); ym != nil {
			year, _ = strconv.Atoi(ym[1])
		}
	}

	firstMonth := spanishMonths[strings.ToLower(matches[0][1])]
	lastMonth := spanishMonths[strings.ToLower(matches[len(matches)-1][1])]
	residual := monthNameRe.ReplaceAllString(text, " ")

	tr := models.TimeRange{Start: monthStart(year, firstMonth), End: monthEnd(year, lastMonth)}
	return tr, residual, true
}

// stagePeriodKeyword handles quarters, four-month periods, semesters
// and whole years, with an optional index and year.
func stagePeriodKeyword(text string, today time.Time) (models.TimeRange, string, bool) {
	loc := periodRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.TimeRange{}, "", false
	}
	m := periodRe.FindStringSubmatch(text)

	year := today.Year()
	if m[6] != "" {
		year, _ = strconv.Atoi(m[6])
	}

	index := 1
	switch {
	case m[2] != "": // q3 / t2
		index, _ = strconv.Atoi(m[2])
	case m[4] != "": // trimestre 3
		index, _ = strconv.Atoi(m[4])
	}

	var start, end time.Time
	keyword := strings.ToLower(m[3])
	switch {
	case m[1] != "" || keyword == "trimestre":
		start = monthStart(year, time.Month(3*(index-1)+1))
		end = start.AddDate(0, 3, 0)
	case keyword == "cuatrimestre":
		start = monthStart(year, time.Month(4*(index-1)+1))
		end = start.AddDate(0, 4, 0)
	case keyword == "semestre":
		start = monthStart(year, time.Month(6*(index-1)+1))
		end = start.AddDate(0, 6, 0)
	default: // año
		start = monthStart(year, time.January)
		end = monthStart(year+1, time.January)
	}

	tr := models.TimeRange{Start: start, End: end}
	return tr, cutMatch(text, loc[:2]), true
}
