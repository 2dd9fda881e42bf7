package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"PlayHorizon/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GamePatch 一次管理员更新：Columns 为需要改动的 games 列（nil 表示置空）；
// Related / Media 中出现的族整体替换，未出现的族不动
type GamePatch struct {
	Columns map[string]interface{}
	Related map[string][]string
	Media   map[string][]string
}

// GameRepository 游戏目录仓储接口
type GameRepository interface {
	// ListGames 分页列表（按 app_id 排序），同时返回总数
	ListGames(ctx context.Context, page, pageSize int) ([]*model.Game, int64, error)
	// SearchGames 名称不区分大小写的子串匹配
	SearchGames(ctx context.Context, query string, limit int) ([]*model.Game, error)
	// GetGame 通过 app_id 获取游戏
	GetGame(ctx context.Context, appID int64) (*model.Game, error)
	// LoadRelated 批量加载属性族名称
	LoadRelated(ctx context.Context, appIDs []int64, fams ...string) (RelatedNames, error)
	// LoadMedia 加载截图、视频地址
	LoadMedia(ctx context.Context, appID int64) (screenshots, movies []string, err error)
	// CreateGame 新建游戏及其关联数据（单事务）
	CreateGame(ctx context.Context, game *model.Game, related, media map[string][]string) error
	// UpdateGame 更新游戏及其关联数据（单事务）
	UpdateGame(ctx context.Context, appID int64, patch GamePatch) error
	// DeleteGame 删除游戏及所有关联数据（单事务）
	DeleteGame(ctx context.Context, appID int64) error
	// ListPriceHistory 价格变更记录，新的在前
	ListPriceHistory(ctx context.Context, appID int64) ([]*model.GamePriceHistory, error)
	// ScanTrendingCandidates 按 app_id 分批遍历全部热门候选，fn 返回错误时中止
	ScanTrendingCandidates(ctx context.Context, releasedSince time.Time, minReviews, batchSize int, fn func([]*model.Game) error) error
	// ListGenres 至少关联了一个游戏的类型
	ListGenres(ctx context.Context) ([]*model.Genre, error)
	// GameMetrics 同类型游戏的 Metacritic 均值、成就数与类型数
	GameMetrics(ctx context.Context, appID int64) (*GameMetrics, error)
}

// GameMetrics 单个游戏的统计；同类型里没有评分时 AverageGenreMetacritic 为 nil
type GameMetrics struct {
	AppID                  int64
	AverageGenreMetacritic *float64
	Achievements           *int
	GenreCount             int64
}

type gameRepository struct {
	db *gorm.DB
}

// NewGameRepository 创建 GameRepository 实例
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) ListGames(ctx context.Context, page, pageSize int) ([]*model.Game, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Game{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	games := []*model.Game{}
	offset, ok := pageOffset(page, pageSize)
	if !ok {
		return games, total, nil
	}
	if err := r.db.WithContext(ctx).
		Order("app_id ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&games).Error; err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

// escapeLike 转义 LIKE 通配符，配合 ESCAPE '!'
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func (r *gameRepository) SearchGames(ctx context.Context, query string, limit int) ([]*model.Game, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	games := []*model.Game{}
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!'", pattern).
		Order("name ASC, app_id ASC").
		Limit(limit).
		Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) GetGame(ctx context.Context, appID int64) (*model.Game, error) {
	var game model.Game
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).First(&game).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (r *gameRepository) LoadRelated(ctx context.Context, appIDs []int64, fams ...string) (RelatedNames, error) {
	return loadRelatedNames(ctx, r.db, appIDs, fams...)
}

func (r *gameRepository) LoadMedia(ctx context.Context, appID int64) ([]string, []string, error) {
	screenshots, err := loadMediaURLs(ctx, r.db, MediaScreenshots, appID)
	if err != nil {
		return nil, nil, err
	}
	movies, err := loadMediaURLs(ctx, r.db, MediaMovies, appID)
	if err != nil {
		return nil, nil, err
	}
	return screenshots, movies, nil
}

// applyRelated 按固定顺序替换出现的属性族与媒体族
func applyRelated(tx *gorm.DB, appID int64, related, media map[string][]string) error {
	for _, fam := range AllFamilies {
		names, ok := related[fam]
		if !ok {
			continue
		}
		if err := replaceRelated(tx, fam, appID, names); err != nil {
			return err
		}
	}
	for _, m := range []string{MediaScreenshots, MediaMovies} {
		urls, ok := media[m]
		if !ok {
			continue
		}
		if err := replaceMedia(tx, m, appID, urls); err != nil {
			return err
		}
	}
	return nil
}

func (r *gameRepository) CreateGame(ctx context.Context, game *model.Game, related, media map[string][]string) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := tx.Create(game).Error; err != nil {
		tx.Rollback()
		if isDuplicateKey(err) {
			return ErrGameExists
		}
		return fmt.Errorf("保存游戏失败: %w, app_id: %d", err, game.AppID)
	}
	if err := applyRelated(tx, game.AppID, related, media); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func priceChanged(old decimal.NullDecimal, next interface{}) (decimal.NullDecimal, bool) {
	var nv decimal.NullDecimal
	switch v := next.(type) {
	case nil:
	case decimal.Decimal:
		nv = decimal.NewNullDecimal(v)
	case decimal.NullDecimal:
		nv = v
	default:
		return nv, false
	}
	if old.Valid != nv.Valid {
		return nv, true
	}
	return nv, old.Valid && !old.Decimal.Equal(nv.Decimal)
}

func (r *gameRepository) UpdateGame(ctx context.Context, appID int64, patch GamePatch) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// 1. 确认游戏存在，同时拿到旧价格
	var current model.Game
	if err := tx.Select("app_id", "price").Where("app_id = ?", appID).First(&current).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return fmt.Errorf("查询游戏失败: %w", err)
	}

	// 2. 更新主表
	if len(patch.Columns) > 0 {
		if err := tx.Model(&model.Game{}).Where("app_id = ?", appID).Updates(patch.Columns).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("更新游戏失败: %w, app_id: %d", err, appID)
		}
	}

	// 3. 价格变化留痕
	if next, ok := patch.Columns["price"]; ok {
		if nv, changed := priceChanged(current.Price, next); changed {
			record := &model.GamePriceHistory{AppID: appID, OldPrice: current.Price, NewPrice: nv}
			if err := tx.Create(record).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("记录价格变更失败: %w", err)
			}
		}
	}

	// 4. 关联数据
	if err := applyRelated(tx, appID, patch.Related, patch.Media); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *gameRepository) DeleteGame(ctx context.Context, appID int64) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	dependents := []interface{}{
		&model.GamePriceHistory{},
		&model.GameCategory{},
		&model.GameDeveloper{},
		&model.GamePublisher{},
		&model.GameGenre{},
		&model.GameTag{},
		&model.Screenshot{},
		&model.Movie{},
		&model.UserGame{},
	}
	for _, m := range dependents {
		if err := tx.Where("app_id = ?", appID).Delete(m).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("删除关联数据失败: %w, app_id: %d", err, appID)
		}
	}

	res := tx.Where("app_id = ?", appID).Delete(&model.Game{})
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("删除游戏失败: %w, app_id: %d", res.Error, appID)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrGameNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func (r *gameRepository) ListPriceHistory(ctx context.Context, appID int64) ([]*model.GamePriceHistory, error) {
	list := []*model.GamePriceHistory{}
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Order("changed_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gameRepository) ScanTrendingCandidates(ctx context.Context, releasedSince time.Time, minReviews, batchSize int, fn func([]*model.Game) error) error {
	if batchSize <= 0 {
		batchSize = 1000
	}
	var batch []*model.Game
	return r.db.WithContext(ctx).
		Where("release_date IS NOT NULL AND release_date >= ?", releasedSince).
		Where("positive_reviews + negative_reviews > ?", minReviews).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}

func (r *gameRepository) ListGenres(ctx context.Context) ([]*model.Genre, error) {
	genres := []*model.Genre{}
	if err := r.db.WithContext(ctx).
		Model(&model.Genre{}).
		Distinct("genres.id", "genres.name").
		Joins("JOIN game_genres ON game_genres.genre_id = genres.id").
		Order("genres.name ASC").
		Find(&genres).Error; err != nil {
		return nil, err
	}
	return genres, nil
}

// GameMetrics 均值按 join 行计算，与多个类型重合的游戏会被重复计入
func (r *gameRepository) GameMetrics(ctx context.Context, appID int64) (*GameMetrics, error) {
	game, err := r.GetGame(ctx, appID)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var avg sql.NullFloat64
	genreIDs := db.Model(&model.GameGenre{}).Select("genre_id").Where("app_id = ?", appID)
	if err := db.Table("games AS g").
		Select("AVG(g.metacritic_score)").
		Joins("JOIN game_genres AS gg ON gg.app_id = g.app_id").
		Where("gg.genre_id IN (?)", genreIDs).
		Where("g.app_id <> ? AND g.metacritic_score IS NOT NULL", appID).
		Row().Scan(&avg); err != nil {
		return nil, fmt.Errorf("统计同类型评分失败: %w", err)
	}

	var genres int64
	if err := db.Model(&model.GameGenre{}).Where("app_id = ?", appID).Count(&genres).Error; err != nil {
		return nil, fmt.Errorf("统计类型数失败: %w", err)
	}

	m := &GameMetrics{AppID: appID, Achievements: game.Achievements, GenreCount: genres}
	if avg.Valid {
		m.AverageGenreMetacritic = &avg.Float64
	}
	return m, nil
}
