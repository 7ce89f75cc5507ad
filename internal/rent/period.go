// Package rent проверяет выбранный период аренды и считает его длительность в сутках.
package rent

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout - формат даты из поля выбора даты.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// InputError - ошибка ввода периода; показывается пользователю сразу
// и никогда не попадает в хранилище состояния.
type InputError struct {
	Field   string // "rent_from", "rent_to" или пусто для периода целиком
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Ошибки проверки периода.
var (
	ErrPeriodUnset = &InputError{Message: "Выберите период аренды."}
	ErrStartInPast = &InputError{
		Field:   "rent_from",
		Message: "Дата начала аренды должна быть не раньше сегодняшней.",
	}
	ErrEndTooEarly = &InputError{
		Field:   "rent_to",
		Message: "Дата окончания аренды должна быть хотя бы на день позже даты начала.",
	}
)

// Period - выбранное окно аренды. Нулевое время означает "дата не выбрана".
type Period struct {
	From time.Time
	To   time.Time
}

// IsSet сообщает, что обе даты выбраны.
func (p Period) IsSet() bool {
	return !p.From.IsZero() && !p.To.IsZero()
}

// FromString возвращает дату начала в формате YYYY-MM-DD.
func (p Period) FromString() string {
	return formatDate(p.From)
}

// ToString возвращает дату окончания в формате YYYY-MM-DD.
func (p Period) ToString() string {
	return formatDate(p.To)
}

// ParseDate разбирает дату YYYY-MM-DD. Пустая строка - "дата не выбрана".
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("неверный формат даты %q, ожидается ГГГГ-ММ-ДД: %w", value, err)
	}
	return t, nil
}

// ParsePeriod разбирает обе даты периода.
func ParsePeriod(from, to string) (Period, error) {
	fromDate, err := ParseDate(from)
	if err != nil {
		return Period{}, err
	}
	toDate, err := ParseDate(to)
	if err != nil {
		return Period{}, err
	}
	return Period{From: fromDate, To: toDate}, nil
}

// Days возвращает ceil((to - from) в сутках), не меньше 0.
// Для невыбранных дат возвращает 0.
func Days(p Period) int {
	if !p.IsSet() {
		return 0
	}
	diff := calendarDate(p.To).Sub(calendarDate(p.From))
	days := int(math.Ceil(float64(diff) / float64(day)))
	if days < 0 {
		return 0
	}
	return days
}

// Duration - то же, что Days, для пары дат; используется для "живой"
// суммы, пока пользователь выбирает даты.
func Duration(from, to time.Time) int {
	return Days(Period{From: from, To: to})
}

// Calculator проверяет период относительно сегодняшней даты.
type Calculator struct {
	// Now возвращает текущее время в локальной зоне клиента.
	Now func() time.Time
}

// NewCalculator создает Calculator на системных часах.
func NewCalculator() Calculator {
	return Calculator{Now: time.Now}
}

// Today возвращает текущую календарную дату.
func (c Calculator) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return calendarDate(now())
}

// Validate проверяет период и возвращает число оплачиваемых суток (>= 1).
func (c Calculator) Validate(p Period) (int, error) {
	if !p.IsSet() {
		return 0, ErrPeriodUnset
	}
	today := c.Today()
	from := calendarDate(p.From)
	to := calendarDate(p.To)

	if from.Before(today) {
		return 0, ErrStartInPast
	}
	minimumEnd := from.AddDate(0, 0, 1)
	if to.Before(minimumEnd) {
		return 0, ErrEndTooEarly
	}
	return Days(p), nil
}

// calendarDate отбрасывает время суток, сохраняя календарную дату в зоне t,
// и переносит ее в UTC, чтобы разница дат всегда была кратна суткам.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return calendarDate(t).Format(DateLayout)
}
