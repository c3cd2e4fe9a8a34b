package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/kudos/internal/models"
)

func TestCurrentPeriod(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want models.Period
	}{
		{
			name: "mid month",
			now:  time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC),
			want: models.Period{Month: 6, Year: 2024},
		},
		{
			name: "last second of the year",
			now:  time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC),
			want: models.Period{Month: 12, Year: 2024},
		},
		{
			name: "location shifts the month",
			now:  time.Date(2024, time.July, 1, 2, 0, 0, 0, time.UTC),
			loc:  time.FixedZone("UTC-5", -5*60*60),
			want: models.Period{Month: 6, Year: 2024},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewPeriodCalculator(FixedClock(tt.now), tt.loc)
			if got := calc.CurrentPeriod(); got != tt.want {
				t.Errorf("CurrentPeriod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolvePeriod(t *testing.T) {
	calc := NewPeriodCalculator(FixedClock(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)), nil)

	tests := []struct {
		name    string
		in      *models.Period
		want    models.Period
		wantErr bool
	}{
		{name: "nil uses current", in: nil, want: models.Period{Month: 6, Year: 2024}},
		{name: "explicit", in: &models.Period{Month: 2, Year: 2023}, want: models.Period{Month: 2, Year: 2023}},
		{name: "month only", in: &models.Period{Month: 3}, want: models.Period{Month: 3, Year: 2024}},
		{name: "year only", in: &models.Period{Year: 2022}, want: models.Period{Month: 6, Year: 2022}},
		{name: "month out of range", in: &models.Period{Month: 13, Year: 2024}, wantErr: true},
		{name: "negative year", in: &models.Period{Month: 1, Year: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Resolve(tt.in)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidPeriod) {
					t.Fatalf("Resolve(%v) error = %v, want ErrInvalidPeriod", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%v) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPeriodNext(t *testing.T) {
	if got := (models.Period{Month: 12, Year: 2024}).Next(); got != (models.Period{Month: 1, Year: 2025}) {
		t.Errorf("Next() of 2024-12 = %v", got)
	}
	if got := (models.Period{Month: 6, Year: 2024}).Next(); got.String() != "2024-07" {
		t.Errorf("Next() of 2024-06 = %v", got)
	}
}
