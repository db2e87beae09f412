package sportwinner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGameDate(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  time.Time
		valid bool
	}{
		{
			name:  "full german format",
			raw:   "14.09.2025 19:30",
			want:  time.Date(2025, time.September, 14, 19, 30, 0, 0, time.Local),
			valid: true,
		},
		{
			name:  "two digit year",
			raw:   "14.09.25 19:30",
			want:  time.Date(2025, time.September, 14, 19, 30, 0, 0, time.Local),
			valid: true,
		},
		{
			name:  "date only defaults to midnight",
			raw:   "1.2.2026",
			want:  time.Date(2026, time.February, 1, 0, 0, 0, 0, time.Local),
			valid: true,
		},
		{
			name:  "surrounding text",
			raw:   "So. 14.09.2025 10:00 Uhr",
			want:  time.Date(2025, time.September, 14, 10, 0, 0, 0, time.Local),
			valid: true,
		},
		{
			name:  "rfc3339 fallback",
			raw:   "2025-09-14T19:30:00Z",
			want:  time.Date(2025, time.September, 14, 19, 30, 0, 0, time.UTC),
			valid: true,
		},
		{name: "empty", raw: "", valid: false},
		{name: "whitespace", raw: "   ", valid: false},
		{name: "garbage", raw: "demnächst", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseGameDate(tt.raw)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestParseCellNumber(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"512", 512, true},
		{" 512 ", 512, true},
		{"512,5", 512.5, true},
		{"-", 0, false},
		{"–", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCellNumber(tt.raw)
		assert.Equal(t, tt.valid, ok, "raw=%q", tt.raw)
		if tt.valid {
			assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
		}
	}
}

func TestRowCell(t *testing.T) {
	row := Row{"  a ", nil, float64(42), float64(2.5), true}
	assert.Equal(t, "a", row.Cell(0))
	assert.Equal(t, "", row.Cell(1))
	assert.Equal(t, "42", row.Cell(2))
	assert.Equal(t, "2.5", row.Cell(3))
	assert.Equal(t, "", row.Cell(99))
	assert.Equal(t, "", row.Cell(-1))
}
