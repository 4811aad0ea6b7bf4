package survey

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultPeriod(t *testing.T) {
	tests := []struct {
		now  time.Time
		want Period
	}{
		{time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC), Period{2025, time.March}},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Period{2024, time.December}},
		{time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), Period{2025, time.March}},
	}
	for _, tt := range tests {
		if got := DefaultPeriod(tt.now); got != tt.want {
			t.Errorf("DefaultPeriod(%s) = %v, want %v", tt.now.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Month
		wantErr bool
	}{
		{"Março", time.March, false},
		{"marco", time.March, false},
		{" FEVEREIRO ", time.February, false},
		{"12", time.December, false},
		{"0", 0, true},
		{"13", 0, true},
		{"March", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Errorf("ParseMonth(%q) expected ErrInvalidPeriod, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMonth(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestPeriodString(t *testing.T) {
	p := Period{Year: 2025, Month: time.March}
	if p.String() != "Março/2025" {
		t.Errorf("unexpected %q", p.String())
	}
}

func TestYearsAndMonths(t *testing.T) {
	d := testDataset(t)
	years := d.Years()
	if len(years) != 2 || years[0] != 2024 || years[1] != 2025 {
		t.Errorf("unexpected years %v", years)
	}
	months := d.Months(2025)
	if len(months) != 2 || months[0] != time.March || months[1] != time.April {
		t.Errorf("unexpected months %v", months)
	}
	if got := len(d.Periods()); got != 3 {
		t.Errorf("expected 3 periods, got %d", got)
	}
}

func TestResolve(t *testing.T) {
	d := testDataset(t)
	april := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		year  int
		month time.Month
		now   time.Time
		want  Period
	}{
		{"default available", 0, 0, april, Period{2025, time.March}},
		{"default year missing falls back to first", 0, 0, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), Period{2024, time.December}},
		{"default month missing falls back to first of year", 2024, 0, april, Period{2024, time.December}},
		{"explicit", 2025, time.April, april, Period{2025, time.April}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Resolve(tt.year, tt.month, tt.now)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := d.Resolve(2019, 0, april); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for a year without responses, got %v", err)
	}
	empty := &Dataset{}
	if _, err := empty.Resolve(0, 0, april); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for an empty dataset, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	d := testDataset(t)
	march := d.Filter(Period{2025, time.March})
	if march.Len() != 2 {
		t.Fatalf("expected 2 responses in March, got %d", march.Len())
	}
	if len(march.Questions()) != 2 {
		t.Error("filtered dataset should keep its layout")
	}
	if d.Filter(Period{2023, time.March}).Len() != 0 {
		t.Error("expected no responses for 2023")
	}
}

func TestFold(t *testing.T) {
	if got := Fold(" Não se Aplica "); got != "nao se aplica" {
		t.Errorf("unexpected fold %q", got)
	}
}
