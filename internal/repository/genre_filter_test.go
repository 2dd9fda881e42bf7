package repository

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	"PlayHorizon/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func seedGenreCatalog(t *testing.T, repo GameRepository) {
	seedGame(t, repo, &model.Game{AppID: 1, Name: "Alpha", Price: price("5")}, map[string][]string{FamilyGenres: {"Action"}})
	seedGame(t, repo, &model.Game{AppID: 2, Name: "Bravo", Price: price("60")}, map[string][]string{FamilyGenres: {"Action", "RPG"}})
	seedGame(t, repo, &model.Game{AppID: 3, Name: "Charlie", Price: price("150")}, map[string][]string{FamilyGenres: {"Action"}})
	seedGame(t, repo, &model.Game{AppID: 4, Name: "Delta"}, map[string][]string{FamilyGenres: {"Puzzle"}})
	seedGame(t, repo, &model.Game{AppID: 5, Name: "Echo", Price: price("20")}, map[string][]string{FamilyGenres: {"RPG"}})
}

func TestQueryGenreFilter(t *testing.T) {
	db := newTestDB(t)
	seedGenreCatalog(t, NewGameRepository(db))
	f := NewGenreFilter("query", db)
	ctx := context.Background()

	rows, meta, err := f.Filter(ctx, GenreFilterParams{Genre: "Action", MinPrice: 0, MaxPrice: 100, Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].Name)
	assert.Equal(t, "Bravo", rows[1].Name)
	assert.Equal(t, []string{"Action", "RPG"}, rows[1].Genres)
	assert.Equal(t, GenreFilterMeta{TotalCount: 2, CurrentPage: 1, TotalPages: 1, PageSize: 20}, meta)

	// 空类型 = 不限类型；无价格视为 0
	rows, meta, err = f.Filter(ctx, GenreFilterParams{MinPrice: 0, MaxPrice: 100, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, meta.TotalCount)
	assert.Equal(t, 2, meta.TotalPages)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].Name)

	rows, meta, err = f.Filter(ctx, GenreFilterParams{MinPrice: 0, MaxPrice: 100, Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 3, meta.CurrentPage)

	rows, _, err = f.Filter(ctx, GenreFilterParams{Genre: "Nope", MaxPrice: 100})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, meta, err = f.Filter(ctx, GenreFilterParams{Genre: "Action", MaxPrice: 100, Page: math.MaxInt / 10, PageSize: 100})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.EqualValues(t, 2, meta.TotalCount)
	assert.Equal(t, math.MaxInt/10, meta.CurrentPage)
}

func TestPageOffset(t *testing.T) {
	cases := []struct {
		page, pageSize, want int
		ok                   bool
	}{
		{1, 10, 0, true},
		{0, 10, 0, true},
		{3, 10, 20, true},
		{5, 0, 0, true},
		{math.MaxInt/100 + 1, 100, (math.MaxInt / 100) * 100, true},
		{math.MaxInt/100 + 2, 100, 0, false},
		{99999999999999999, 100, 0, false},
		{math.MaxInt, 1, math.MaxInt - 1, true},
	}
	for _, c := range cases {
		got, ok := pageOffset(c.page, c.pageSize)
		assert.Equal(t, c.ok, ok, "page=%d pageSize=%d", c.page, c.pageSize)
		if c.ok {
			assert.Equal(t, c.want, got, "page=%d pageSize=%d", c.page, c.pageSize)
		}
	}
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestProcedureGenreFilter(t *testing.T) {
	db, mock := newMockGorm(t)

	games := sqlmock.NewRows([]string{"app_id", "name", "release_date", "price", "header_image", "genres", "extra"}).
		AddRow(int64(10), []byte("Hades"), []byte("2020-09-17"), []byte("24.99"), []byte("https://img/hades.jpg"), []byte("Action,Indie,RPG"), []byte("ignored")).
		AddRow(int64(11), []byte("Free Thing"), nil, nil, nil, nil, nil)
	meta := sqlmock.NewRows([]string{"totalCount", "currentPage", "totalPages", "pageSize"}).
		AddRow(int64(42), int64(2), int64(3), int64(20))

	mock.ExpectQuery(regexp.QuoteMeta("CALL GetGamesByGenre(?, ?, ?, ?, ?)")).
		WithArgs("Action", float64(0), float64(100), int64(2), int64(20)).
		WillReturnRows(games, meta)

	f := NewGenreFilter("procedure", db)
	rows, m, err := f.Filter(context.Background(), GenreFilterParams{Genre: "Action", MinPrice: 0, MaxPrice: 100, Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, GenreFilterMeta{TotalCount: 42, CurrentPage: 2, TotalPages: 3, PageSize: 20}, m)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 10, rows[0].AppID)
	assert.Equal(t, "Hades", rows[0].Name)
	require.NotNil(t, rows[0].ReleaseDate)
	assert.Equal(t, time.Date(2020, 9, 17, 0, 0, 0, 0, time.UTC), *rows[0].ReleaseDate)
	assert.Equal(t, "24.99", rows[0].Price.Decimal.String())
	assert.Equal(t, []string{"Action", "Indie", "RPG"}, rows[0].Genres)

	assert.Equal(t, "Free Thing", rows[1].Name)
	assert.False(t, rows[1].Price.Valid)
	assert.Nil(t, rows[1].ReleaseDate)
	assert.Equal(t, []string{}, rows[1].Genres)
}

func TestProcedureGenreFilterError(t *testing.T) {
	db, mock := newMockGorm(t)
	mock.ExpectQuery(regexp.QuoteMeta("CALL GetGamesByGenre")).WillReturnError(assertErr("PROCEDURE does not exist"))

	_, _, err := NewGenreFilter("procedure", db).Filter(context.Background(), GenreFilterParams{})
	assert.Error(t, err)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
