// Package validation collects rule violations so that a request is rejected
// with every broken rule at once instead of the first one.
package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/senyabanana/licitagora/internal/models"
)

// DateLayout - формат календарной даты в запросах.
const DateLayout = "2006-01-02"

type Violations struct {
	list []string
}

func (v *Violations) Add(format string, args ...any) {
	v.list = append(v.list, fmt.Sprintf(format, args...))
}

func (v *Violations) Empty() bool { return len(v.list) == 0 }

func (v *Violations) List() []string { return v.list }

// Err возвращает ошибку валидации или nil, если нарушений нет.
func (v *Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return models.NewValidationError(v.list)
}

// Required проверяет, что строка не пустая после обрезки пробелов.
func (v *Violations) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add("%s is required", field)
		return false
	}
	return true
}

// Number разбирает обязательное числовое поле.
func (v *Violations) Number(field string, value models.NumberField) (float64, bool) {
	raw := strings.TrimSpace(string(value))
	if raw == "" {
		v.Add("%s is required", field)
		return 0, false
	}
	num, err := ParseNumber(raw)
	if err != nil {
		v.Add("%s must be a valid number", field)
		return 0, false
	}
	return num, true
}

// Date разбирает обязательную дату.
func (v *Violations) Date(field, value string) (time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		v.Add("%s is required", field)
		return time.Time{}, false
	}
	return v.OptionalDate(field, value)
}

// OptionalDate разбирает дату, если она передана.
func (v *Violations) OptionalDate(field, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	date, err := ParseDate(value)
	if err != nil {
		v.Add("%s must be a valid date (YYYY-MM-DD)", field)
		return time.Time{}, false
	}
	return date, true
}

// ParseNumber принимает точку или запятую как десятичный разделитель.
func ParseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ",") && !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return num, nil
}

// ParseDate принимает YYYY-MM-DD или RFC 3339 и возвращает дату в UTC.
func ParseDate(value string) (time.Time, error) {
	if date, err := time.Parse(DateLayout, value); err == nil {
		return date, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return ts.UTC(), nil
}

// TrimmedOrNil обрезает пробелы и возвращает nil для пустой строки.
func TrimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
