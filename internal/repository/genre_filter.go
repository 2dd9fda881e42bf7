package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"PlayHorizon/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GenreFilterParams 按类型 + 价格区间分页筛选
type GenreFilterParams struct {
	Genre    string
	MinPrice float64
	MaxPrice float64
	Page     int
	PageSize int
}

// GenreFilterMeta 分页元信息，对应 X-Total-Count 等响应头
type GenreFilterMeta struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
}

// GenreGameRow 筛选结果行
type GenreGameRow struct {
	AppID           int64               `json:"app_id"`
	Name            string              `json:"name"`
	ReleaseDate     *time.Time          `json:"release_date"`
	Price           decimal.NullDecimal `json:"price"`
	HeaderImage     *string             `json:"header_image"`
	MetacriticScore *int                `json:"metacritic_score"`
	PositiveReviews int                 `json:"positive_reviews"`
	NegativeReviews int                 `json:"negative_reviews"`
	Genres          []string            `json:"genres"`
}

// GenreFilter 两种实现：可移植查询 / 外部存储过程
type GenreFilter interface {
	Filter(ctx context.Context, p GenreFilterParams) ([]*GenreGameRow, GenreFilterMeta, error)
}

// NewGenreFilter mode: query（默认）/ procedure
func NewGenreFilter(mode string, db *gorm.DB) GenreFilter {
	if mode == "procedure" {
		return &procedureGenreFilter{db: db}
	}
	return &queryGenreFilter{db: db}
}

func normalizeFilterParams(p GenreFilterParams) GenreFilterParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	p.Genre = strings.TrimSpace(p.Genre)
	return p
}

// pageOffset 1-based 页码对应的偏移；ok=false 表示偏移超出 int 范围，必然越过末页
func pageOffset(page, pageSize int) (int, bool) {
	if page <= 1 || pageSize <= 0 {
		return 0, true
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

type queryGenreFilter struct {
	db *gorm.DB
}

func (f *queryGenreFilter) Filter(ctx context.Context, p GenreFilterParams) ([]*GenreGameRow, GenreFilterMeta, error) {
	p = normalizeFilterParams(p)

	db := f.db.WithContext(ctx).Model(&model.Game{}).
		Where("COALESCE(games.price, 0) BETWEEN ? AND ?", p.MinPrice, p.MaxPrice)
	if p.Genre != "" {
		db = db.Where("EXISTS (SELECT 1 FROM game_genres gg JOIN genres g ON g.id = gg.genre_id WHERE gg.app_id = games.app_id AND g.name = ?)", p.Genre)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, GenreFilterMeta{}, err
	}
	meta := GenreFilterMeta{
		TotalCount:  total,
		CurrentPage: p.Page,
		TotalPages:  totalPages(total, p.PageSize),
		PageSize:    p.PageSize,
	}

	offset, ok := pageOffset(p.Page, p.PageSize)
	if !ok {
		return []*GenreGameRow{}, meta, nil
	}
	var games []*model.Game
	if err := db.Order("games.name ASC, games.app_id ASC").
		Offset(offset).
		Limit(p.PageSize).
		Find(&games).Error; err != nil {
		return nil, GenreFilterMeta{}, err
	}

	ids := make([]int64, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.AppID)
	}
	related, err := loadRelatedNames(ctx, f.db, ids, FamilyGenres)
	if err != nil {
		return nil, GenreFilterMeta{}, err
	}

	rows := make([]*GenreGameRow, 0, len(games))
	for _, g := range games {
		rows = append(rows, &GenreGameRow{
			AppID:           g.AppID,
			Name:            g.Name,
			ReleaseDate:     g.ReleaseDate,
			Price:           g.Price,
			HeaderImage:     g.HeaderImage,
			MetacriticScore: g.MetacriticScore,
			PositiveReviews: g.PositiveReviews,
			NegativeReviews: g.NegativeReviews,
			Genres:          related.Get(FamilyGenres, g.AppID),
		})
	}
	return rows, meta, nil
}

// procedureGenreFilter 调用库中已安装的 GetGamesByGenre 存储过程（仅 MySQL），
// 第一个结果集为游戏行，第二个结果集为分页信息
type procedureGenreFilter struct {
	db *gorm.DB
}

func (f *procedureGenreFilter) Filter(ctx context.Context, p GenreFilterParams) ([]*GenreGameRow, GenreFilterMeta, error) {
	p = normalizeFilterParams(p)

	rows, err := f.db.WithContext(ctx).
		Raw("CALL GetGamesByGenre(?, ?, ?, ?, ?)", p.Genre, p.MinPrice, p.MaxPrice, p.Page, p.PageSize).
		Rows()
	if err != nil {
		return nil, GenreFilterMeta{}, fmt.Errorf("调用GetGamesByGenre失败: %w", err)
	}
	defer rows.Close()

	games := []*GenreGameRow{}
	if err := scanEach(rows, func(values map[string]interface{}) {
		games = append(games, rowFromColumns(values))
	}); err != nil {
		return nil, GenreFilterMeta{}, err
	}

	meta := GenreFilterMeta{CurrentPage: p.Page, PageSize: p.PageSize}
	if rows.NextResultSet() {
		if err := scanEach(rows, func(values map[string]interface{}) {
			meta.TotalCount = toInt64(values["totalCount"])
			if v, ok := values["currentPage"]; ok {
				meta.CurrentPage = int(toInt64(v))
			}
			if v, ok := values["totalPages"]; ok {
				meta.TotalPages = int(toInt64(v))
			}
			if v, ok := values["pageSize"]; ok {
				meta.PageSize = int(toInt64(v))
			}
		}); err != nil {
			return nil, GenreFilterMeta{}, err
		}
	} else {
		meta.TotalCount = int64(len(games))
		meta.TotalPages = totalPages(meta.TotalCount, meta.PageSize)
	}
	if err := rows.Err(); err != nil {
		return nil, GenreFilterMeta{}, err
	}
	return games, meta, nil
}

// scanEach 逐行读取当前结果集，按列名交给 fn
func scanEach(rows *sql.Rows, fn func(map[string]interface{})) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		values := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			values[c] = raw[i]
		}
		fn(values)
	}
	return rows.Err()
}

func rowFromColumns(values map[string]interface{}) *GenreGameRow {
	row := &GenreGameRow{Genres: []string{}}
	for col, v := range values {
		switch col {
		case "app_id":
			row.AppID = toInt64(v)
		case "name":
			row.Name = toString(v)
		case "release_date":
			row.ReleaseDate = toTime(v)
		case "price":
			if s := toString(v); s != "" {
				if d, err := decimal.NewFromString(s); err == nil {
					row.Price = decimal.NewNullDecimal(d)
				}
			}
		case "header_image":
			if v != nil {
				s := toString(v)
				row.HeaderImage = &s
			}
		case "metacritic_score":
			if v != nil {
				n := int(toInt64(v))
				row.MetacriticScore = &n
			}
		case "positive_reviews":
			row.PositiveReviews = int(toInt64(v))
		case "negative_reviews":
			row.NegativeReviews = int(toInt64(v))
		case "genres":
			// 存储过程以逗号拼接返回
			row.Genres = cleanNames(strings.Split(toString(v), ","))
		}
	}
	return row
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprint(x)
	}
}

func toInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint64:
		return int64(x)
	case float64:
		return int64(x)
	case []byte, string:
		s := strings.TrimSpace(toString(x))
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(fl)
		}
	}
	return 0
}

func toTime(v interface{}) *time.Time {
	switch x := v.(type) {
	case time.Time:
		return &x
	case []byte, string:
		s := toString(x)
		for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}
