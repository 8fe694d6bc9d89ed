package utils

import "time"

const DateLayout = "2006-01-02"

// TruncateToDay отбрасывает время, оставляя календарную дату в UTC.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today - текущая дата без времени.
func Today() time.Time {
	return TruncateToDay(time.Now())
}

// DaysBetween - число полных дней между датами, отрицательное если to раньше from.
func DaysBetween(from, to time.Time) int {
	return int(TruncateToDay(to).Sub(TruncateToDay(from)).Hours() / 24)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatNullableDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
