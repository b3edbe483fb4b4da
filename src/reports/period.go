package reports

import (
	"errors"
	"fmt"
	"time"
)

// Report periods are resolved against the business timezone (Turkey, UTC+3):
// a "day" is local midnight to local midnight, while records are stored in UTC.
const (
	turkeyOffset   = 3 * time.Hour
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

var (
	ErrMissingParameter = errors.New("required parameter missing")
	ErrInvalidPeriod    = errors.New("invalid period value")
)

// Display names stay in Turkish; the reporting UI is Turkish-facing.
// dayNames is indexed by time.Weekday (Sunday first).
var dayNames = [7]string{"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi"}

var monthNames = [12]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
	PeriodCustom  PeriodType = "custom"
)

// Period is the resolved query boundary for a report. Start and End are the
// values handed to the data layer: full UTC timestamps for the daily path,
// plain calendar dates for the others. The remaining fields describe the
// period for the response envelope.
type Period struct {
	Type      PeriodType `json:"type"`
	Start     string     `json:"startDate"`
	End       string     `json:"endDate"`
	Date      string     `json:"date,omitempty"`
	DayName   string     `json:"dayName,omitempty"`
	Year      int        `json:"year,omitempty"`
	Week      int        `json:"week,omitempty"`
	Month     int        `json:"month,omitempty"`
	MonthName string     `json:"monthName,omitempty"`
	DayCount  int        `json:"dayCount,omitempty"`
}

// ResolveDaily expands a business-local calendar day to its UTC instant range.
// For "2024-07-20" that is 2024-07-19T21:00:00 .. 2024-07-20T20:59:59, because
// the Turkey day starts and ends three hours before the UTC one.
func ResolveDaily(dateStr string) (Period, error) {
	if dateStr == "" {
		return Period{}, fmt.Errorf("%w: date", ErrMissingParameter)
	}
	day, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: date %q", ErrInvalidPeriod, dateStr)
	}
	start := day.Add(-turkeyOffset)
	end := day.Add(24*time.Hour - time.Second).Add(-turkeyOffset)
	return Period{
		Type:    PeriodDaily,
		Start:   start.Format(DateTimeLayout),
		End:     end.Format(DateTimeLayout),
		Date:    dateStr,
		DayName: dayNames[int(day.Weekday())],
	}, nil
}

// ResolveWeekly computes the week boundary as Jan 1 plus (week-1)*7 days.
// Unlike the daily path it deliberately applies no timezone shift; the
// boundaries are plain calendar dates.
func ResolveWeekly(year, week int, now time.Time) Period {
	if year == 0 {
		year = now.Year()
	}
	startOfYear := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if week == 0 {
		elapsed := now.Sub(startOfYear)
		week = int((elapsed + 7*24*time.Hour - 1) / (7 * 24 * time.Hour))
		if week < 1 {
			week = 1
		}
	}
	startOfWeek := startOfYear.Add(time.Duration(week-1) * 7 * 24 * time.Hour)
	endOfWeek := startOfWeek.Add(6 * 24 * time.Hour)
	return Period{
		Type:  PeriodWeekly,
		Start: startOfWeek.Format(DateLayout),
		End:   endOfWeek.Format(DateLayout),
		Year:  year,
		Week:  week,
	}
}

// ResolveMonthly returns the first and last calendar day of the month.
func ResolveMonthly(year, month int) (Period, error) {
	if year == 0 || month == 0 {
		return Period{}, fmt.Errorf("%w: year and month", ErrMissingParameter)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	// Day zero of the next month is the last day of this one.
	end := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
	return Period{
		Type:      PeriodMonthly,
		Start:     start.Format(DateLayout),
		End:       end.Format(DateLayout),
		Year:      year,
		Month:     month,
		MonthName: monthNames[month-1],
		DayCount:  end.Day(),
	}, nil
}

// ResolveYearly accepts years between 2000 and 3000.
func ResolveYearly(year int) (Period, error) {
	if year == 0 {
		return Period{}, fmt.Errorf("%w: year", ErrMissingParameter)
	}
	if year < 2000 || year > 3000 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return Period{
		Type:  PeriodYearly,
		Start: fmt.Sprintf("%d-01-01", year),
		End:   fmt.Sprintf("%d-12-31", year),
		Year:  year,
	}, nil
}

// ResolveCustom passes the caller-supplied bounds through. A single-day range
// (start == end) gets the same UTC+3 expansion as the daily path; anything
// longer keeps its calendar-date bounds.
func ResolveCustom(startDate, endDate string) (Period, error) {
	if startDate == "" || endDate == "" {
		return Period{}, fmt.Errorf("%w: startDate and endDate", ErrMissingParameter)
	}
	start, err := time.ParseInLocation(DateLayout, startDate, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: startDate %q", ErrInvalidPeriod, startDate)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("%w: endDate %q", ErrInvalidPeriod, endDate)
	}
	if end.Before(start) {
		return Period{}, fmt.Errorf("%w: endDate before startDate", ErrInvalidPeriod)
	}
	if startDate == endDate {
		p, err := ResolveDaily(startDate)
		if err != nil {
			return Period{}, err
		}
		p.Type = PeriodCustom
		return p, nil
	}
	return Period{
		Type:  PeriodCustom,
		Start: startDate,
		End:   endDate,
	}, nil
}
