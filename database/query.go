package database

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query describes a filtered, ordered and paginated list read. Column names
// come from code, never from request input.
type Query struct {
	Conditions    []clause.Expression
	Scopes        []func(*gorm.DB) *gorm.DB
	Search        string
	SearchColumns []string
	Order         string
	Page          int
	Limit         int
	Preloads      []string
}

// Where adds an equality predicate; a nil value becomes IS NULL
func (q Query) Where(column string, value interface{}) Query {
	q.Conditions = append(q.Conditions, clause.Eq{Column: clause.Column{Name: column}, Value: value})
	return q
}

// WhereIn adds an IN predicate
func (q Query) WhereIn(column string, values ...interface{}) Query {
	q.Conditions = append(q.Conditions, clause.IN{Column: clause.Column{Name: column}, Values: values})
	return q
}

// Scope adds an arbitrary query scope, for joins and role scoping
func (q Query) Scope(fn func(*gorm.DB) *gorm.DB) Query {
	q.Scopes = append(q.Scopes, fn)
	return q
}

// OrderBy sets the ORDER BY clause
func (q Query) OrderBy(order string) Query {
	q.Order = order
	return q
}

// Paginate sets page and limit, clamped to sane bounds
func (q Query) Paginate(page, limit int) Query {
	q.Page, q.Limit = NormalizePage(page, limit)
	return q
}

// With adds relations to preload
func (q Query) With(preloads ...string) Query {
	q.Preloads = append(q.Preloads, preloads...)
	return q
}

// SearchIn sets a case-insensitive substring search across columns
func (q Query) SearchIn(term string, columns ...string) Query {
	q.Search = strings.TrimSpace(term)
	q.SearchColumns = columns
	return q
}

// Offset is the row offset for the current page
func (q Query) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// NormalizePage clamps page and limit the same way response.CalculatePagination does
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// filter applies predicates, scopes and search, but not order or paging
func (q Query) filter(db *gorm.DB) *gorm.DB {
	if len(q.Conditions) > 0 {
		db = db.Clauses(clause.Where{Exprs: q.Conditions})
	}
	for _, scope := range q.Scopes {
		db = db.Scopes(scope)
	}
	if q.Search != "" && len(q.SearchColumns) > 0 {
		parts := make([]string, len(q.SearchColumns))
		args := make([]interface{}, len(q.SearchColumns))
		pattern := "%" + q.Search + "%"
		for i, col := range q.SearchColumns {
			parts[i] = col + " ILIKE ?"
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	return db
}

// page applies preloads, order and pagination
func (q Query) page(db *gorm.DB) *gorm.DB {
	for _, p := range q.Preloads {
		db = db.Preload(p)
	}
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit).Offset(q.Offset())
	}
	return db
}
