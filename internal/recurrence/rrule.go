package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/teambition/rrule-go"
)

var (
	// ErrInvalidArgument reports an out-of-range argument such as month 13.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedInput reports stored rule text that does not decode.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNoRule reports that an event carries no recurrence rule.
	ErrNoRule = errors.New("no recurrence rule")
)

// Freq is a recurrence frequency as stored on an event.
type Freq string

const (
	Yearly  Freq = "YEARLY"
	Monthly Freq = "MONTHLY"
	Weekly  Freq = "WEEKLY"
	Daily   Freq = "DAILY"
)

var freqs = map[Freq]rrule.Frequency{
	Yearly:  rrule.YEARLY,
	Monthly: rrule.MONTHLY,
	Weekly:  rrule.WEEKLY,
	Daily:   rrule.DAILY,
}

// rrule-go numbers weekdays from Monday.
var rruleDays = [...]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

var dayAbbrev = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

var dayIndex = map[string]int{
	"MO": 0,
	"TU": 1,
	"WE": 2,
	"TH": 3,
	"FR": 4,
	"SA": 5,
	"SU": 6,
}

var dayNames = map[string]string{
	"MONDAY":    "MO",
	"TUESDAY":   "TU",
	"WEDNESDAY": "WE",
	"THURSDAY":  "TH",
	"FRIDAY":    "FR",
	"SATURDAY":  "SA",
	"SUNDAY":    "SU",
}

// ParseFreq maps stored frequency text onto the closed set of frequencies.
// The empty string is valid and means no frequency.
func ParseFreq(s string) (Freq, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	f := Freq(s)
	if _, ok := freqs[f]; !ok {
		return "", fmt.Errorf("unknown frequency %q: %w", s, ErrMalformedInput)
	}
	return f, nil
}

// ParseWeekdays decodes a stored weekday selector set. It accepts a bracketed
// list (["MO","WE"] or ['MO', 'WE'], optionally with one trailing comma) or a
// bare comma list (MO,WE). Tokens may carry an ordinal either as +1MO or MO(+1).
func ParseWeekdays(text string) ([]rrule.Weekday, error) {
	text = strings.TrimSpace(text)
	if len(text) >= 2 && text[0] == '[' && text[len(text)-1] == ']' {
		text = strings.TrimSpace(text[1 : len(text)-1])
		if trimmed, ok := strings.CutSuffix(text, ","); ok {
			if text = strings.TrimSpace(trimmed); text == "" {
				return nil, fmt.Errorf("empty weekday list with trailing comma: %w", ErrMalformedInput)
			}
		}
	}
	if text == "" {
		return nil, nil
	}

	var days []rrule.Weekday
	for _, raw := range strings.Split(text, ",") {
		tok := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
		wd, err := parseWeekday(tok)
		if err != nil {
			return nil, err
		}
		days = append(days, wd)
	}
	return days, nil
}

func parseWeekday(tok string) (rrule.Weekday, error) {
	s := strings.ToUpper(tok)
	n := 0

	if i := strings.IndexByte(s, '('); i > 0 && strings.HasSuffix(s, ")") {
		v, err := strconv.Atoi(s[i+1 : len(s)-1])
		if err != nil || v == 0 {
			return rrule.Weekday{}, fmt.Errorf("invalid weekday ordinal %q: %w", tok, ErrMalformedInput)
		}
		n, s = v, s[:i]
	} else if j := strings.IndexFunc(s, unicode.IsLetter); j > 0 {
		v, err := strconv.Atoi(s[:j])
		if err != nil || v == 0 {
			return rrule.Weekday{}, fmt.Errorf("invalid weekday ordinal %q: %w", tok, ErrMalformedInput)
		}
		n, s = v, s[j:]
	}

	if code, ok := dayNames[s]; ok {
		s = code
	}
	idx, ok := dayIndex[s]
	if !ok {
		return rrule.Weekday{}, fmt.Errorf("unknown weekday %q: %w", tok, ErrMalformedInput)
	}
	if n < -53 || n > 53 {
		return rrule.Weekday{}, fmt.Errorf("weekday ordinal out of range %q: %w", tok, ErrMalformedInput)
	}
	if n != 0 {
		return rruleDays[idx].Nth(n), nil
	}
	return rruleDays[idx], nil
}

// FormatWeekdays renders days in the canonical stored form, e.g. "MO,+1FR".
func FormatWeekdays(days []rrule.Weekday) string {
	parts := make([]string, 0, len(days))
	for i := range days {
		d := &days[i]
		code := dayAbbrev[d.Day()]
		if n := d.N(); n != 0 {
			code = fmt.Sprintf("%+d%s", n, code)
		}
		parts = append(parts, code)
	}
	return strings.Join(parts, ",")
}

// Params is the bundle of rule modifiers handed to the recurrence engine.
type Params struct {
	ByWeekday []rrule.Weekday
	Until     *time.Time
}

// New builds a recurrence rule anchored at dtstart.
func New(freq Freq, dtstart time.Time, p Params) (*rrule.RRule, error) {
	f, ok := freqs[freq]
	if !ok {
		return nil, fmt.Errorf("frequency %q: %w", freq, ErrMalformedInput)
	}

	opt := rrule.ROption{
		Freq:      f,
		Dtstart:   dtstart,
		Byweekday: p.ByWeekday,
	}
	if p.Until != nil {
		opt.Until = *p.Until
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule: %w", err)
	}
	return r, nil
}

// Between returns the rule's hits between start and end in ascending order.
func Between(r *rrule.RRule, start, end time.Time, inclusive bool) []time.Time {
	return r.Between(start, end, inclusive)
}

// Format serializes a rule as an RFC 5545 RRULE value, without DTSTART.
func Format(freq Freq, p Params) string {
	parts := []string{"FREQ=" + string(freq)}

	if len(p.ByWeekday) > 0 {
		parts = append(parts, "BYDAY="+FormatWeekdays(p.ByWeekday))
	}

	if p.Until != nil {
		parts = append(parts, "UNTIL="+p.Until.UTC().Format("20060102T150405Z"))
	}

	return strings.Join(parts, ";")
}
