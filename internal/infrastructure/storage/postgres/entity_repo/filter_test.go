package entity_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/core/apperror"
	"registrar/internal/core/entity"
	"registrar/internal/domain"
	"registrar/internal/domain/filter"
	"registrar/internal/metadata"
)

type seminar struct {
	entity.BaseEntity
	entity.SoftDeleteFields
	Title   string `db:"title"`
	Credits int    `db:"credits"`
}

func (*seminar) EntityName() string { return "seminar" }

type badge struct {
	entity.BaseEntity
	Name string `db:"name"`
}

func (*badge) EntityName() string { return "badge" }

func newSeminarRepo() *Repo[*seminar] {
	return New[*seminar](nil, Config[*seminar]{
		Def:        metadata.Describe[*seminar]("seminars", "Seminar"),
		Searchable: []string{"title"},
		New:        func() *seminar { return &seminar{} },
	})
}

const seminarCols = "id, version, is_deleted, deleted_at, deleted_by, title, credits"

func TestApplyAdvancedFilters_Operators(t *testing.T) {
	repo := newSeminarRepo()

	tests := []struct {
		name     string
		item     filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Greater",
			item:     filter.Item{Field: "credits", Operator: filter.Greater, Value: 3},
			wantSQL:  "SELECT " + seminarCols + " FROM seminars WHERE credits > $1",
			wantArgs: []any{3},
		},
		{
			name:     "Less",
			item:     filter.Item{Field: "credits", Operator: filter.Less, Value: 5},
			wantSQL:  "SELECT " + seminarCols + " FROM seminars WHERE credits < $1",
			wantArgs: []any{5},
		},
		{
			name:     "Contains",
			item:     filter.Item{Field: "title", Operator: filter.Contains, Value: "algebra"},
			wantSQL:  "SELECT " + seminarCols + " FROM seminars WHERE title ILIKE $1",
			wantArgs: []any{"%algebra%"},
		},
		{
			name:    "IsNull",
			item:    filter.Item{Field: "deleted_by", Operator: filter.IsNull},
			wantSQL: "SELECT " + seminarCols + " FROM seminars WHERE deleted_by IS NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{tt.item})
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, len(tt.wantArgs), len(args))
			if len(tt.wantArgs) > 0 {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestApplyAdvancedFilters_RejectsUnknownColumn(t *testing.T) {
	repo := newSeminarRepo()
	_, err := repo.applyAdvancedFilters(repo.baseSelect(), []filter.Item{
		{Field: "title; DROP TABLE seminars", Operator: filter.Equal, Value: 1},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestFiltered_HidesDeletedUnlessAsked(t *testing.T) {
	repo := newSeminarRepo()

	q, err := repo.filtered(domain.ListFilter{Search: "alg"})
	require.NoError(t, err)
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT "+seminarCols+" FROM seminars WHERE is_deleted = $1 AND (title ILIKE $2)", sql)
	assert.Equal(t, []any{false, "%alg%"}, args)

	q, err = repo.filtered(domain.ListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	sql, _, err = q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "is_deleted", "still selected as a column")
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "is_deleted = $")
}

func TestFiltered_PlainEntityHasNoDeletedFilter(t *testing.T) {
	repo := New[*badge](nil, Config[*badge]{
		Def: metadata.Describe[*badge]("badges", "Badge"),
		New: func() *badge { return &badge{} },
	})
	q, err := repo.filtered(domain.ListFilter{})
	require.NoError(t, err)
	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, version, name FROM badges", sql)
}

func TestParseOrderBy(t *testing.T) {
	repo := newSeminarRepo()

	got, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "id ASC", got)

	got, err = repo.parseOrderBy("-credits")
	require.NoError(t, err)
	assert.Equal(t, "credits DESC", got)

	_, err = repo.parseOrderBy("password")
	assert.Error(t, err)
}
