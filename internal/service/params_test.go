package service

import (
	"testing"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/core"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	e, ok := err.(*core.Error)
	if !ok {
		t.Fatalf("expected *core.Error, got %T (%v)", err, err)
	}
	if e.Kind != core.KindValidation {
		t.Fatalf("kind = %s, want %s", e.Kind, core.KindValidation)
	}
	return e.Field
}

func TestParseReportFilterDefaults(t *testing.T) {
	filter, err := ParseReportFilter(RawQuery{}, time.UTC, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Limit != 10 || filter.LookbackDays != 30 || filter.Granularity != core.GranularityDay {
		t.Fatalf("unexpected defaults %+v", filter)
	}
	if filter.BranchID != nil || !filter.Window.IsOpen() {
		t.Fatalf("expected no branch and an open window, got %+v", filter)
	}
}

func TestParseReportFilterValues(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		loc = time.FixedZone("ART", -3*3600)
	}

	filter, err := ParseReportFilter(RawQuery{
		DateFrom:     "2024-03-01",
		DateTo:       "2024-03-31",
		BranchID:     "4",
		Limit:        "5",
		Period:       "mes",
		LookbackDays: "180",
	}, loc, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *filter.BranchID != 4 || filter.Limit != 5 || filter.LookbackDays != 180 {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if filter.Granularity != core.GranularityMonth {
		t.Fatalf("granularity = %s", filter.Granularity)
	}
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	wantTo := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
	if !filter.Window.From.Equal(wantFrom) || !filter.Window.To.Equal(wantTo) {
		t.Fatalf("window = %v..%v, want %v..%v", filter.Window.From, filter.Window.To, wantFrom, wantTo)
	}
}

func TestParseReportFilterLimitPolicy(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 10},
		{"0", 0},
		{"25", 25},
		{"5000", 100},
	}
	for _, tt := range tests {
		filter, err := ParseReportFilter(RawQuery{Limit: tt.raw}, time.UTC, 100)
		if err != nil {
			t.Fatalf("limit %q: unexpected error %v", tt.raw, err)
		}
		if filter.Limit != tt.want {
			t.Errorf("limit %q = %d, want %d", tt.raw, filter.Limit, tt.want)
		}
	}
}

func TestParseReportFilterErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawQuery
		field string
	}{
		{"branch not a number", RawQuery{BranchID: "abc"}, "sucursalId"},
		{"negative limit", RawQuery{Limit: "-1"}, "limit"},
		{"limit not a number", RawQuery{Limit: "diez"}, "limit"},
		{"zero days", RawQuery{LookbackDays: "0"}, "dias"},
		{"days beyond ten years", RawQuery{LookbackDays: "999999999"}, "dias"},
		{"bad start date", RawQuery{DateFrom: "01/03/2024"}, "fechaInicio"},
		{"bad end date", RawQuery{DateTo: "2024-13-01"}, "fechaFin"},
		{"inverted window", RawQuery{DateFrom: "2024-03-10", DateTo: "2024-03-01"}, "fechaInicio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReportFilter(tt.raw, time.UTC, 100)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := fieldOf(t, err); got != tt.field {
				t.Fatalf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestParseDateWindowSameDay(t *testing.T) {
	window, err := ParseDateWindow("2024-03-05", "2024-03-05", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := window.To.Sub(*window.From); got != 24*time.Hour {
		t.Fatalf("window spans %v, want one day", got)
	}
}

func TestParseGranularity(t *testing.T) {
	tests := map[string]core.Granularity{
		"dia":    core.GranularityDay,
		"":       core.GranularityDay,
		"semana": core.GranularityWeek,
		"WEEK":   core.GranularityWeek,
		"mes":    core.GranularityMonth,
		"año":    core.GranularityDay,
	}
	for raw, want := range tests {
		if got := parseGranularity(raw); got != want {
			t.Errorf("parseGranularity(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("id", " 12 "); err != nil || id != 12 {
		t.Fatalf("ParseID = %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-3", "x"} {
		if _, err := ParseID("id", raw); err == nil {
			t.Errorf("ParseID(%q) expected error", raw)
		}
	}
}

func TestLookbackDaysUpperBound(t *testing.T) {
	filter, err := ParseReportFilter(RawQuery{LookbackDays: "3650"}, time.UTC, 100)
	if err != nil || filter.LookbackDays != 3650 {
		t.Fatalf("3650 days = %d, %v", filter.LookbackDays, err)
	}
	_, err = ParseReportFilter(RawQuery{LookbackDays: "3651"}, time.UTC, 100)
	if field := fieldOf(t, err); field != "dias" {
		t.Fatalf("field = %q, want dias", field)
	}
}
