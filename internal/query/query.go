// Package query turns list-endpoint query strings into filtered, sorted and paginated gorm
// queries. One Spec describes each resource; the same engine serves all of them.
package query

import (
	"strconv"
	"strings"

	"pitchside/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// FilterKind selects how a filter value is interpreted.
type FilterKind int

const (
	// Exact compares the raw string value.
	Exact FilterKind = iota
	// Bool treats "true" as true and any other non-empty value as false.
	Bool
	// ID requires a positive integer.
	ID
)

// Filter binds a query parameter to a column.
type Filter struct {
	Param  string
	Column string
	Kind   FilterKind
}

// Join populates an association with a projected column list.
type Join struct {
	Association string
	Fields      []string
}

// CategoryJoin embeds a referenced category's id, name and slug.
var CategoryJoin = Join{Association: "Category", Fields: []string{"id", "name", "slug"}}

// Spec describes how one resource is listed.
type Spec struct {
	SearchColumn string
	Filters      []Filter
	// Sortable maps JSON field names accepted in ?sort= to columns.
	Sortable    map[string]string
	DefaultSort string
	Populate    []Join
}

// Params is a parsed list request.
type Params struct {
	Page   int
	Limit  int
	Sort   string
	Search string
	// Values holds the non-empty filter values keyed by parameter name.
	Values map[string]string
}

// Offset returns the number of rows skipped before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page, limit, sort, search and the spec's filters through get, which is usually
// fiber's c.Query. Empty filter values are treated as absent.
func (s Spec) Parse(get func(key string, defaultValue ...string) string) (Params, error) {
	p := Params{
		Page:   positiveInt(get("page"), DefaultPage),
		Limit:  positiveInt(get("limit"), DefaultLimit),
		Sort:   strings.TrimSpace(get("sort")),
		Search: strings.TrimSpace(get("search")),
		Values: make(map[string]string, len(s.Filters)),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	for _, f := range s.Filters {
		v := strings.TrimSpace(get(f.Param))
		if v == "" {
			continue
		}
		if f.Kind == ID {
			if _, err := models.ParseCategoryID(v); err != nil {
				return Params{}, models.NewValidationError("Invalid " + f.Param)
			}
		}
		p.Values[f.Param] = v
	}
	return p, nil
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Where applies the search term and filters in p to db.
func (s Spec) Where(db *gorm.DB, p Params) *gorm.DB {
	if p.Search != "" && s.SearchColumn != "" {
		db = db.Where(clause.Expr{
			SQL:  `LOWER(?) LIKE ? ESCAPE '\'`,
			Vars: []any{clause.Column{Name: s.SearchColumn}, "%" + escapeLike(strings.ToLower(p.Search)) + "%"},
		})
	}

	for _, f := range s.Filters {
		v, ok := p.Values[f.Param]
		if !ok {
			continue
		}
		var value any = v
		switch f.Kind {
		case Bool:
			value = v == "true"
		case ID:
			id, err := models.ParseCategoryID(v)
			if err != nil {
				continue
			}
			value = id
		}
		db = db.Where(clause.Eq{Column: clause.Column{Name: f.Column}, Value: value})
	}
	return db
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// OrderBy resolves a sort expression such as "-priority -createdAt" against the whitelist.
// Unknown fields are dropped; when nothing usable remains the default sort applies. The
// primary key is always the final key so pages are stable.
func (s Spec) OrderBy(sort string) clause.OrderBy {
	cols := s.orderColumns(sort)
	if len(cols) == 0 {
		cols = s.orderColumns(s.DefaultSort)
	}

	hasID := false
	for _, c := range cols {
		if c.Column.Name == "id" {
			hasID = true
		}
	}
	if !hasID {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: cols}
}

func (s Spec) orderColumns(sort string) []clause.OrderByColumn {
	fields := strings.FieldsFunc(sort, func(r rune) bool { return r == ' ' || r == ',' })
	cols := make([]clause.OrderByColumn, 0, len(fields))
	seen := make(map[string]bool, len(fields))

	for _, f := range fields {
		desc := false
		switch {
		case strings.HasPrefix(f, "-"):
			desc = true
			f = f[1:]
		case strings.HasPrefix(f, "+"):
			f = f[1:]
		}
		col, ok := s.Sortable[f]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	}
	return cols
}

// Preload applies the spec's joins to db.
func (s Spec) Preload(db *gorm.DB) *gorm.DB {
	return PreloadJoins(db, s.Populate)
}

// PreloadJoins loads each association with only its projected columns.
func PreloadJoins(db *gorm.DB, joins []Join) *gorm.DB {
	for _, j := range joins {
		fields := j.Fields
		db = db.Preload(j.Association, func(tx *gorm.DB) *gorm.DB {
			return tx.Select(fields)
		})
	}
	return db
}
