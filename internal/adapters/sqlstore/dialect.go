package sqlstore

import (
	"fmt"

	"github.com/tp-bda/dashboard-ventas/internal/core"
)

// dialect isolates the few SQL expressions that differ between the supported engines.
// Every returned fragment is a fixed template; values always travel as bind parameters.
type dialect interface {
	// periodKey renders col as the YYYY-MM-DD key of its day, ISO week (Monday) or month (day 01)
	periodKey(g core.Granularity, col string) string
	// daysSince renders the fractional days from col to one bound reference time
	daysSince(col string) string
	// emailDomain renders the lowercased domain part of an email column
	emailDomain(col string) string
}

type postgresDialect struct{}

func (postgresDialect) periodKey(g core.Granularity, col string) string {
	switch g {
	case core.GranularityWeek:
		return fmt.Sprintf("TO_CHAR(DATE_TRUNC('week', %s), 'YYYY-MM-DD')", col)
	case core.GranularityMonth:
		return fmt.Sprintf("TO_CHAR(DATE_TRUNC('month', %s), 'YYYY-MM-DD')", col)
	default:
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", col)
	}
}

func (postgresDialect) daysSince(col string) string {
	return fmt.Sprintf("EXTRACT(EPOCH FROM (CAST(? AS timestamptz) - %s)) / 86400.0", col)
}

func (postgresDialect) emailDomain(col string) string {
	return fmt.Sprintf("LOWER(TRIM(SPLIT_PART(%s, '@', 2)))", col)
}

type mysqlDialect struct{}

func (mysqlDialect) periodKey(g core.Granularity, col string) string {
	switch g {
	case core.GranularityWeek:
		return fmt.Sprintf("DATE_FORMAT(DATE_SUB(DATE(%[1]s), INTERVAL WEEKDAY(%[1]s) DAY), '%%Y-%%m-%%d')", col)
	case core.GranularityMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-01')", col)
	default:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", col)
	}
}

func (mysqlDialect) daysSince(col string) string {
	return fmt.Sprintf("TIMESTAMPDIFF(SECOND, %s, ?) / 86400.0", col)
}

func (mysqlDialect) emailDomain(col string) string {
	return fmt.Sprintf("LOWER(TRIM(SUBSTRING_INDEX(%s, '@', -1)))", col)
}
