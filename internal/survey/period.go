package survey

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Period is a calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func (p Period) MonthName() string { return MonthName(p.Month) }

// String renders "Março/2025".
func (p Period) String() string { return fmt.Sprintf("%s/%d", p.MonthName(), p.Year) }

// Contains reports whether t falls in the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// DefaultPeriod is the month that was current 30 days before now.
func DefaultPeriod(now time.Time) Period {
	prev := now.AddDate(0, 0, -30)
	return Period{Year: prev.Year(), Month: prev.Month()}
}

// ParseMonth accepts a month number or a Portuguese month name, ignoring
// case and accents ("marco" is March).
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: month %d", ErrInvalidPeriod, n)
		}
		return time.Month(n), nil
	}
	folded := Fold(s)
	for i, name := range monthNames {
		if Fold(name) == folded {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("%w: month %q", ErrInvalidPeriod, s)
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lower-cases s and strips its diacritics.
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Years lists the years with responses, ascending.
func (d *Dataset) Years() []int {
	var years []int
	for _, r := range d.Responses {
		if !slices.Contains(years, r.At.Year()) {
			years = append(years, r.At.Year())
		}
	}
	slices.Sort(years)
	return years
}

// Months lists the months of year with responses, in calendar order.
func (d *Dataset) Months(year int) []time.Month {
	var seen [13]bool
	for _, r := range d.Responses {
		if r.At.Year() == year {
			seen[r.At.Month()] = true
		}
	}
	var months []time.Month
	for m := time.January; m <= time.December; m++ {
		if seen[m] {
			months = append(months, m)
		}
	}
	return months
}

// Periods lists every month with responses, oldest first.
func (d *Dataset) Periods() []Period {
	var out []Period
	for _, y := range d.Years() {
		for _, m := range d.Months(y) {
			out = append(out, Period{Year: y, Month: m})
		}
	}
	return out
}

// Resolve fills in a partially specified period. A zero year selects the
// default year when it has responses, else the first year; a zero month does
// the same within the chosen year.
func (d *Dataset) Resolve(year int, month time.Month, now time.Time) (Period, error) {
	def := DefaultPeriod(now)
	years := d.Years()
	if len(years) == 0 {
		return Period{}, ErrNoData
	}
	if year == 0 {
		year = years[0]
		if slices.Contains(years, def.Year) {
			year = def.Year
		}
	}
	if month == 0 {
		months := d.Months(year)
		if len(months) == 0 {
			return Period{}, fmt.Errorf("%w: %d", ErrNoData, year)
		}
		month = months[0]
		if slices.Contains(months, def.Month) {
			month = def.Month
		}
	}
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return Period{Year: year, Month: month}, nil
}

// Filter returns the responses within p.
func (d *Dataset) Filter(p Period) *Dataset {
	out := &Dataset{Header: d.Header, layout: d.layout}
	for _, r := range d.Responses {
		if p.Contains(r.At) {
			out.Responses = append(out.Responses, r)
		}
	}
	return out
}
