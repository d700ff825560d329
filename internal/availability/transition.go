package availability

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// lastDayOrder is the DayOrder value meaning "last occurrence in the month".
const lastDayOrder = 5

var weekdays = map[string]rrule.Weekday{
	"Monday":    rrule.MO,
	"Tuesday":   rrule.TU,
	"Wednesday": rrule.WE,
	"Thursday":  rrule.TH,
	"Friday":    rrule.FR,
	"Saturday":  rrule.SA,
	"Sunday":    rrule.SU,
}

// TransitionRule is a yearly recurring rule such as "last Sunday of October
// at 04:00". DayOrder counts occurrences of DayOfWeek within Month, 5 meaning
// the last one.
type TransitionRule struct {
	Time      string
	DayOrder  int
	Month     int
	DayOfWeek string
}

func (r TransitionRule) descriptor(bias int) *TransitionDescriptor {
	return &TransitionDescriptor{
		Bias:      bias,
		Time:      r.Time,
		DayOrder:  r.DayOrder,
		Month:     r.Month,
		DayOfWeek: r.DayOfWeek,
	}
}

// RRule returns the rule in iCalendar RRULE form.
func (r TransitionRule) RRule() (string, error) {
	opt, err := r.options(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return "", err
	}
	opt.Count = 0
	return opt.RRuleString(), nil
}

// Occurrence returns the wall-clock instant in loc at which the rule fires in year.
func (r TransitionRule) Occurrence(year int, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04:05", r.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transition time %q: %w", r.Time, err)
	}

	start := time.Date(year, time.January, 1, clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
	opt, err := r.options(start)
	if err != nil {
		return time.Time{}, err
	}

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build transition rule: %w", err)
	}

	occurrences := rule.All()
	if len(occurrences) == 0 {
		return time.Time{}, fmt.Errorf("transition rule has no occurrence in %d", year)
	}
	return occurrences[0], nil
}

func (r TransitionRule) options(dtstart time.Time) (*rrule.ROption, error) {
	wd, ok := weekdays[r.DayOfWeek]
	if !ok {
		return nil, fmt.Errorf("invalid transition weekday %q", r.DayOfWeek)
	}
	if r.Month < 1 || r.Month > 12 {
		return nil, fmt.Errorf("invalid transition month %d", r.Month)
	}
	if r.DayOrder < 1 || r.DayOrder > lastDayOrder {
		return nil, fmt.Errorf("invalid transition day order %d", r.DayOrder)
	}

	n := r.DayOrder
	if n == lastDayOrder {
		n = -1
	}

	return &rrule.ROption{
		Freq:      rrule.YEARLY,
		Dtstart:   dtstart,
		Count:     1,
		Bymonth:   []int{r.Month},
		Byweekday: []rrule.Weekday{wd.Nth(n)},
	}, nil
}
