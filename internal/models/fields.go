package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NumberField хранит сырое значение числового поля запроса.
// Принимает как JSON-число, так и строку ("1500.50", "1500,50"),
// разбор выполняется при валидации, чтобы вернуть все ошибки сразу.
type NumberField string

// UnmarshalJSON принимает число, строку или null.
func (n *NumberField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberField(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("number field: %w", err)
	}
	*n = NumberField(num.String())
	return nil
}

// NumberFieldOf формирует значение поля из числа.
func NumberFieldOf(v float64) NumberField {
	return NumberField(fmt.Sprintf("%g", v))
}
