package sqlstore

import (
	"strings"

	"github.com/tp-bda/dashboard-ventas/internal/core"
	"gorm.io/gorm"
)

// predicate is a fixed SQL fragment with its bind parameters
type predicate struct {
	sql  string
	args []any
}

// conditions collects optional filters as typed predicate/parameter pairs
type conditions []predicate

func (c *conditions) add(sql string, args ...any) {
	*c = append(*c, predicate{sql: sql, args: args})
}

// apply adds every predicate to the WHERE clause of db
func (c conditions) apply(db *gorm.DB) *gorm.DB {
	for _, p := range c {
		db = db.Where(p.sql, p.args...)
	}
	return db
}

// joinClause renders the predicates as an " AND ..." suffix for a JOIN ... ON clause,
// so outer joins keep rows without matches.
func (c conditions) joinClause() (string, []any) {
	if len(c) == 0 {
		return "", nil
	}
	parts := make([]string, len(c))
	var args []any
	for i, p := range c {
		parts[i] = p.sql
		args = append(args, p.args...)
	}
	return " AND " + strings.Join(parts, " AND "), args
}

// windowConditions bounds col by a half-open date window
func windowConditions(col string, window core.DateWindow) conditions {
	var c conditions
	if window.From != nil {
		c.add(col+" >= ?", *window.From)
	}
	if window.To != nil {
		c.add(col+" < ?", *window.To)
	}
	return c
}

// salesConditions narrows purchases aliased as alias by branch and date window
func salesConditions(alias string, filter core.SalesFilter) conditions {
	c := windowConditions(alias+".purchased_at", filter.Window)
	if filter.BranchID != nil {
		c.add(alias+".branch_id = ?", *filter.BranchID)
	}
	return c
}
