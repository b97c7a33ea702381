package query

import (
	"testing"

	"pitchside/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var streamSpec = Spec{
	SearchColumn: "title",
	Filters: []Filter{
		{Param: "category", Column: "category_id", Kind: ID},
		{Param: "isLive", Column: "is_live", Kind: Bool},
	},
	Sortable: map[string]string{
		"date":      "date",
		"createdAt": "created_at",
		"title":     "title",
		"id":        "id",
	},
	DefaultSort: "-date",
	Populate:    []Join{CategoryJoin},
}

func getter(values map[string]string) func(string, ...string) string {
	return func(key string, _ ...string) string { return values[key] }
}

func TestParse_Defaults(t *testing.T) {
	p, err := streamSpec.Parse(getter(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset())
	assert.Empty(t, p.Values)
}

func TestParse_PageAndLimitBounds(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"3", "20", 3, 20},
		{"0", "0", 1, 10},
		{"-2", "-5", 1, 10},
		{"abc", "xyz", 1, 10},
		{"2", "1000", 2, 100},
	}
	for _, tt := range tests {
		p, err := streamSpec.Parse(getter(map[string]string{"page": tt.page, "limit": tt.limit}))
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, p.Page, "page=%q", tt.page)
		assert.Equal(t, tt.wantLimit, p.Limit, "limit=%q", tt.limit)
	}
}

func TestParse_EmptyFilterIsAbsent(t *testing.T) {
	p, err := streamSpec.Parse(getter(map[string]string{"isLive": "", "category": "  "}))
	require.NoError(t, err)
	assert.NotContains(t, p.Values, "isLive")
	assert.NotContains(t, p.Values, "category")
}

func TestParse_InvalidCategory(t *testing.T) {
	_, err := streamSpec.Parse(getter(map[string]string{"category": "football"}))
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Invalid category", appErr.Message)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func orderNames(ob clause.OrderBy) []string {
	out := make([]string, 0, len(ob.Columns))
	for _, c := range ob.Columns {
		name := c.Column.Name
		if c.Desc {
			name = "-" + name
		}
		out = append(out, name)
	}
	return out
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sort string
		want []string
	}{
		{"default", "", []string{"-date", "id"}},
		{"single ascending", "title", []string{"title", "id"}},
		{"descending", "-createdAt", []string{"-created_at", "id"}},
		{"multi key with spaces", "-date title", []string{"-date", "title", "id"}},
		{"multi key with commas", "title,-createdAt", []string{"title", "-created_at", "id"}},
		{"unknown dropped", "-bogus title", []string{"title", "id"}},
		{"only unknown falls back", "password", []string{"-date", "id"}},
		{"explicit id not duplicated", "-id", []string{"-id"}},
		{"duplicate collapsed", "title -title", []string{"title", "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderNames(streamSpec.OrderBy(tt.sort)))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\d`, escapeLike(`c:\d`))
}

func TestWhere_BuildsFilters(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	p, err := streamSpec.Parse(getter(map[string]string{
		"search":   "Final",
		"isLive":   "yes",
		"category": "4",
	}))
	require.NoError(t, err)

	var out []models.Stream
	stmt := streamSpec.Where(db.Model(&models.Stream{}), p).Find(&out).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "LOWER(`title`) LIKE ?")
	assert.Contains(t, sql, "`category_id` = ?")
	assert.Contains(t, sql, "`is_live` = ?")
	assert.Contains(t, stmt.Vars, "%final%")
	assert.Contains(t, stmt.Vars, false)
	assert.Contains(t, stmt.Vars, uint(4))
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total       int64
		page, limit int
		wantPages   int
		next, prev  bool
	}{
		{0, 1, 10, 0, false, false},
		{1, 1, 10, 1, false, false},
		{10, 1, 10, 1, false, false},
		{11, 1, 10, 2, true, false},
		{11, 2, 10, 2, false, true},
		{25, 2, 5, 5, true, true},
		{25, 6, 5, 5, false, true},
		{7, 1, 1, 7, true, false},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, tt.page, tt.limit)
		assert.Equal(t, tt.wantPages, p.Pages, "total=%d limit=%d", tt.total, tt.limit)
		assert.Equal(t, tt.next, p.HasNext, "hasNext total=%d page=%d", tt.total, tt.page)
		assert.Equal(t, tt.prev, p.HasPrev, "hasPrev page=%d", tt.page)
		assert.Equal(t, tt.page < p.Pages, p.HasNext)
		assert.Equal(t, tt.page > 1, p.HasPrev)
	}
}
