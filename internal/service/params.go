package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/tp-bda/dashboard-ventas/internal/core"
)

const (
	dateLayout          = "2006-01-02"
	defaultLimit        = 10
	defaultLookbackDays = 30
	maxLookbackDays     = 3650
)

// RawQuery carries the optional report parameters exactly as the client sent them
type RawQuery struct {
	DateFrom     string
	DateTo       string
	BranchID     string
	Limit        string
	Period       string
	LookbackDays string
}

// ParseReportFilter validates and defaults the report parameters.
// Dates are read as calendar days in loc; the end date is widened to the start of the next day.
// maxLimit caps the top-N size when positive.
func ParseReportFilter(raw RawQuery, loc *time.Location, maxLimit int) (core.ReportFilter, error) {
	filter := core.ReportFilter{
		Limit:        defaultLimit,
		Granularity:  parseGranularity(raw.Period),
		LookbackDays: defaultLookbackDays,
	}

	window, err := ParseDateWindow(raw.DateFrom, raw.DateTo, loc)
	if err != nil {
		return filter, err
	}
	filter.Window = window

	if s := strings.TrimSpace(raw.BranchID); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return filter, core.NewValidationError("sucursalId", "ID de sucursal inválido")
		}
		filter.BranchID = &id
	}

	if s := strings.TrimSpace(raw.Limit); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return filter, core.NewValidationError("limit", "limit debe ser un entero no negativo")
		}
		if maxLimit > 0 && limit > maxLimit {
			limit = maxLimit
		}
		filter.Limit = limit
	}

	if s := strings.TrimSpace(raw.LookbackDays); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days < 1 {
			return filter, core.NewValidationError("dias", "dias debe ser un entero positivo")
		}
		if days > maxLookbackDays {
			return filter, core.NewValidationError("dias", "dias no puede superar "+strconv.Itoa(maxLookbackDays))
		}
		filter.LookbackDays = days
	}

	return filter, nil
}

// ParseDateWindow parses the fechaInicio/fechaFin pair into a half-open window
func ParseDateWindow(from, to string, loc *time.Location) (core.DateWindow, error) {
	var window core.DateWindow
	if loc == nil {
		loc = time.UTC
	}

	if s := strings.TrimSpace(from); s != "" {
		start, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return window, core.NewValidationError("fechaInicio", "fechaInicio debe tener formato YYYY-MM-DD")
		}
		window.From = &start
	}

	if s := strings.TrimSpace(to); s != "" {
		day, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return window, core.NewValidationError("fechaFin", "fechaFin debe tener formato YYYY-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		window.To = &end
	}

	if window.From != nil && window.To != nil && !window.From.Before(*window.To) {
		return window, core.NewValidationError("fechaInicio", "fechaInicio no puede ser posterior a fechaFin")
	}

	return window, nil
}

// ParseID parses a positive integer path parameter
func ParseID(field, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(field, "ID inválido")
	}
	return id, nil
}

func parseGranularity(raw string) core.Granularity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "semana", "week":
		return core.GranularityWeek
	case "mes", "month":
		return core.GranularityMonth
	default:
		return core.GranularityDay
	}
}
