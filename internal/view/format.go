package view

import (
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// relativeMagnitudes covers everything younger than a week. Older dates are
// printed as a calendar date.
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Minute, Format: "just now", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: time.Minute},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: time.Hour},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "yesterday", DivBy: humanize.Day},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
}

type dateLayout struct {
	tag    language.Tag
	layout string
}

// First entry is the fallback for unsupported locales.
var dateLayouts = []dateLayout{
	{language.AmericanEnglish, "1/2/2006"},
	{language.BritishEnglish, "02/01/2006"},
	{language.German, "2.1.2006"},
	{language.French, "02/01/2006"},
}

var layoutMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Formatter renders dates, numbers and labels for one locale.
type Formatter struct {
	tag    language.Tag
	layout string
	now    func() time.Time
}

// NewFormatter creates a Formatter for a BCP 47 locale such as "en-US".
// Unparseable locales fall back to American English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	_, idx, _ := layoutMatcher.Match(tag)
	return &Formatter{
		tag:    tag,
		layout: dateLayouts[idx].layout,
		now:    time.Now,
	}
}

const unknownDate = "-"

// RelativeDate describes t relative to now: "just now", "5 minutes ago",
// "yesterday", "3 days ago", or the locale date once t is a week old.
// Timestamps in the future count as "just now"; unknown ones print as a dash.
func (f *Formatter) RelativeDate(t time.Time) string {
	if t.IsZero() {
		return unknownDate
	}
	now := f.now()
	if t.After(now) {
		t = now
	}
	if now.Sub(t) >= humanize.Week {
		return f.Date(t)
	}
	return humanize.CustomRelTime(t, now, "ago", "from now", relativeMagnitudes)
}

// Date prints t as a short calendar date in the formatter's locale.
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return unknownDate
	}
	return t.Local().Format(f.layout)
}

// Number prints n with locale digit grouping.
func (f *Formatter) Number(n int) string {
	return message.NewPrinter(f.tag).Sprintf("%d", n)
}

// Percent prints a 0..100 rate with one decimal.
func (f *Formatter) Percent(v float64) string {
	return message.NewPrinter(f.tag).Sprintf("%.1f%%", v)
}

// Label title-cases a free-form status label.
func (f *Formatter) Label(s string) string {
	return cases.Title(f.tag).String(s)
}
