package validation

import (
	"testing"
	"time"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "1500", want: 1500},
		{raw: " 1500.75 ", want: 1500.75},
		{raw: "1500,75", want: 1500.75},
		{raw: "-3", want: -3},
		{raw: "1.500,75", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "Inf", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseNumber(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), date)

	date, err = ParseDate("2024-01-10T01:30:00-03:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 10, 4, 30, 0, 0, time.UTC), date)

	for _, bad := range []string{"2024-02-30", "10/01/2024", "2024-1-5", "tomorrow"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestViolations_CollectsEveryRule(t *testing.T) {
	var v Violations
	assert.True(t, v.Empty())
	assert.NoError(t, v.Err())

	assert.False(t, v.Required("number", "  "))
	assert.True(t, v.Required("object", "Aquisição"))

	_, ok := v.Number("estimatedValue", models.NumberField(""))
	assert.False(t, ok)
	_, ok = v.Number("estimatedProfit", models.NumberField("12x"))
	assert.False(t, ok)
	value, ok := v.Number("finalValue", models.NumberField("12,5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, value)

	_, ok = v.Date("openingDate", "")
	assert.False(t, ok)
	_, ok = v.OptionalDate("closingDate", "")
	assert.False(t, ok)
	_, ok = v.OptionalDate("closingDate", "31/12/2024")
	assert.False(t, ok)

	err := v.Err()
	require.Error(t, err)
	errResp, isResp := err.(*models.ErrorResponse)
	require.True(t, isResp)
	assert.Equal(t, models.ValidationErrorKind, errResp.Kind)
	assert.Equal(t, []string{
		"number is required",
		"estimatedValue is required",
		"estimatedProfit must be a valid number",
		"openingDate is required",
		"closingDate must be a valid date (YYYY-MM-DD)",
	}, errResp.Details)
}

func TestTrimmedOrNil(t *testing.T) {
	assert.Nil(t, TrimmedOrNil(nil))

	blank := "   "
	assert.Nil(t, TrimmedOrNil(&blank))

	value := "  preço alto "
	got := TrimmedOrNil(&value)
	require.NotNil(t, got)
	assert.Equal(t, "preço alto", *got)
}
