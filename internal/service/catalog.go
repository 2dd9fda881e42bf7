package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"PlayHorizon/internal/config"
	"PlayHorizon/internal/model"
	"PlayHorizon/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GameSummary 列表/搜索条目
type GameSummary struct {
	AppID                  int64               `json:"app_id"`
	Name                   string              `json:"name"`
	ReleaseDate            *time.Time          `json:"release_date"`
	Price                  decimal.NullDecimal `json:"price"`
	HeaderImage            *string             `json:"header_image"`
	MetacriticScore        *int                `json:"metacritic_score"`
	PositiveReviews        int                 `json:"positive_reviews"`
	NegativeReviews        int                 `json:"negative_reviews"`
	AveragePlaytimeForever int                 `json:"average_playtime_forever"`
	Genres                 []string            `json:"genres"`
	Developers             []string            `json:"developers"`
	ReviewPercentage       *int                `json:"review_percentage"`
	PlaytimeHours          *int                `json:"playtime_hours,omitempty"`
}

// GameListResult GET /api/games 响应
type GameListResult struct {
	Games      []*GameSummary `json:"games"`
	Pagination Pagination     `json:"pagination"`
}

// PlaytimeStat 单位：小时
type PlaytimeStat struct {
	Forever  int `json:"forever"`
	TwoWeeks int `json:"two_weeks"`
}

type Playtime struct {
	Average PlaytimeStat `json:"average"`
	Median  PlaytimeStat `json:"median"`
}

// GameDetail 游戏详情：全部列 + 关联列表 + 派生字段
type GameDetail struct {
	AppID                   int64               `json:"app_id"`
	Name                    string              `json:"name"`
	ReleaseDate             *time.Time          `json:"release_date"`
	EstimatedOwners         *string             `json:"estimated_owners"`
	PeakCCU                 *int                `json:"peak_ccu"`
	RequiredAge             *int                `json:"required_age"`
	Price                   decimal.NullDecimal `json:"price"`
	DLCCount                *int                `json:"dlc_count"`
	AboutTheGame            *string             `json:"about_the_game"`
	SupportedLanguages      []string            `json:"supported_languages"`
	FullAudioLanguages      []string            `json:"full_audio_languages"`
	Reviews                 *string             `json:"reviews"`
	HeaderImage             *string             `json:"header_image"`
	Website                 *string             `json:"website"`
	SupportURL              *string             `json:"support_url"`
	SupportEmail            *string             `json:"support_email"`
	Windows                 bool                `json:"windows"`
	Mac                     bool                `json:"mac"`
	Linux                   bool                `json:"linux"`
	MetacriticScore         *int                `json:"metacritic_score"`
	MetacriticURL           *string             `json:"metacritic_url"`
	UserScore               *int                `json:"user_score"`
	PositiveReviews         int                 `json:"positive_reviews"`
	NegativeReviews         int                 `json:"negative_reviews"`
	ScoreRank               *string             `json:"score_rank"`
	Achievements            *int                `json:"achievements"`
	Recommendations         *int                `json:"recommendations"`
	Notes                   *string             `json:"notes"`
	AveragePlaytimeForever  int                 `json:"average_playtime_forever"`
	AveragePlaytimeTwoWeeks int                 `json:"average_playtime_two_weeks"`
	MedianPlaytimeForever   int                 `json:"median_playtime_forever"`
	MedianPlaytimeTwoWeeks  int                 `json:"median_playtime_two_weeks"`
	Developers              []string            `json:"developers"`
	Publishers              []string            `json:"publishers"`
	Categories              []string            `json:"categories"`
	Genres                  []string            `json:"genres"`
	Tags                    []string            `json:"tags"`
	Screenshots             []string            `json:"screenshots"`
	Movies                  []string            `json:"movies"`
	ReviewScore             *int                `json:"review_score"`
	Playtime                Playtime            `json:"playtime"`
}

// TrendingGame 热门榜条目
type TrendingGame struct {
	AppID                  int64               `json:"app_id"`
	Name                   string              `json:"name"`
	HeaderImage            *string             `json:"header_image"`
	ReleaseDate            *time.Time          `json:"release_date"`
	Price                  decimal.NullDecimal `json:"price"`
	MetacriticScore        *int                `json:"metacritic_score"`
	PositiveReviews        int                 `json:"positive_reviews"`
	NegativeReviews        int                 `json:"negative_reviews"`
	AveragePlaytimeForever int                 `json:"average_playtime_forever"`
	Genres                 []string            `json:"genres"`
	ReviewScore            *int                `json:"review_score"`
	PlaytimeHours          int                 `json:"playtime_hours"`
	TrendingScore          int                 `json:"trending_score"`
}

// GenreItem /api/genres 条目
type GenreItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// PriceChange 价格变更记录
type PriceChange struct {
	OldPrice  decimal.NullDecimal `json:"old_price"`
	NewPrice  decimal.NullDecimal `json:"new_price"`
	ChangedAt time.Time           `json:"changed_at"`
}

// RelatedLists 新建/更新时可附带的关联列表
type RelatedLists struct {
	Genres      []string `json:"genres"`
	Developers  []string `json:"developers"`
	Publishers  []string `json:"publishers"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	Screenshots []string `json:"screenshots"`
	Movies      []string `json:"movies"`
}

// CreateGameInput POST /api/games
type CreateGameInput struct {
	AppID           int64            `json:"app_id"`
	Name            string           `json:"name"`
	ReleaseDate     string           `json:"release_date"`
	Price           *decimal.Decimal `json:"price"`
	HeaderImage     *string          `json:"header_image"`
	MetacriticScore *int             `json:"metacritic_score"`
	AboutTheGame    *string          `json:"about_the_game"`
	RelatedLists
}

// UpdateGameInput PUT /api/games/:appId；未出现的字段保持不变，null 表示清空
type UpdateGameInput struct {
	Name                    model.Field[string]          `json:"name"`
	ReleaseDate             model.Field[string]          `json:"release_date"`
	EstimatedOwners         model.Field[string]          `json:"estimated_owners"`
	PeakCCU                 model.Field[int]             `json:"peak_ccu"`
	RequiredAge             model.Field[int]             `json:"required_age"`
	Price                   model.Field[decimal.Decimal] `json:"price"`
	DLCCount                model.Field[int]             `json:"dlc_count"`
	AboutTheGame            model.Field[string]          `json:"about_the_game"`
	SupportedLanguages      model.Field[[]string]        `json:"supported_languages"`
	FullAudioLanguages      model.Field[[]string]        `json:"full_audio_languages"`
	Reviews                 model.Field[string]          `json:"reviews"`
	HeaderImage             model.Field[string]          `json:"header_image"`
	Website                 model.Field[string]          `json:"website"`
	SupportURL              model.Field[string]          `json:"support_url"`
	SupportEmail            model.Field[string]          `json:"support_email"`
	Windows                 model.Field[bool]            `json:"windows"`
	Mac                     model.Field[bool]            `json:"mac"`
	Linux                   model.Field[bool]            `json:"linux"`
	MetacriticScore         model.Field[int]             `json:"metacritic_score"`
	MetacriticURL           model.Field[string]          `json:"metacritic_url"`
	UserScore               model.Field[int]             `json:"user_score"`
	PositiveReviews         model.Field[int]             `json:"positive_reviews"`
	NegativeReviews         model.Field[int]             `json:"negative_reviews"`
	ScoreRank               model.Field[string]          `json:"score_rank"`
	Achievements            model.Field[int]             `json:"achievements"`
	Recommendations         model.Field[int]             `json:"recommendations"`
	Notes                   model.Field[string]          `json:"notes"`
	AveragePlaytimeForever  model.Field[int]             `json:"average_playtime_forever"`
	AveragePlaytimeTwoWeeks model.Field[int]             `json:"average_playtime_two_weeks"`
	MedianPlaytimeForever   model.Field[int]             `json:"median_playtime_forever"`
	MedianPlaytimeTwoWeeks  model.Field[int]             `json:"median_playtime_two_weeks"`

	Genres      model.Field[[]string] `json:"genres"`
	Developers  model.Field[[]string] `json:"developers"`
	Publishers  model.Field[[]string] `json:"publishers"`
	Categories  model.Field[[]string] `json:"categories"`
	Tags        model.Field[[]string] `json:"tags"`
	Screenshots model.Field[[]string] `json:"screenshots"`
	Movies      model.Field[[]string] `json:"movies"`
}

// CatalogService 游戏目录业务
type CatalogService struct {
	games  repository.GameRepository
	filter repository.GenreFilter
	cfg    config.CatalogConfig
	logger *logrus.Logger
	now    func() time.Time
}

// NewCatalogService 创建 CatalogService
func NewCatalogService(games repository.GameRepository, filter repository.GenreFilter, cfg config.CatalogConfig, logger *logrus.Logger) *CatalogService {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.TrendingLimit <= 0 {
		cfg.TrendingLimit = TrendingLimit
	}
	if cfg.TrendingBatchSize <= 0 {
		cfg.TrendingBatchSize = 1000
	}
	return &CatalogService{games: games, filter: filter, cfg: cfg, logger: logger, now: time.Now}
}

func appIDs(games []*model.Game) []int64 {
	ids := make([]int64, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.AppID)
	}
	return ids
}

func (s *CatalogService) summaries(ctx context.Context, games []*model.Game, withPlaytime bool) ([]*GameSummary, error) {
	related, err := s.games.LoadRelated(ctx, appIDs(games), repository.FamilyGenres, repository.FamilyDevelopers)
	if err != nil {
		return nil, err
	}
	out := make([]*GameSummary, 0, len(games))
	for _, g := range games {
		item := &GameSummary{
			AppID:                  g.AppID,
			Name:                   g.Name,
			ReleaseDate:            g.ReleaseDate,
			Price:                  g.Price,
			HeaderImage:            g.HeaderImage,
			MetacriticScore:        g.MetacriticScore,
			PositiveReviews:        g.PositiveReviews,
			NegativeReviews:        g.NegativeReviews,
			AveragePlaytimeForever: g.AveragePlaytimeForever,
			Genres:                 related.Get(repository.FamilyGenres, g.AppID),
			Developers:             related.Get(repository.FamilyDevelopers, g.AppID),
			ReviewPercentage:       ReviewPercentage(g.PositiveReviews, g.NegativeReviews),
		}
		if withPlaytime {
			h := PlaytimeHours(g.AveragePlaytimeForever)
			item.PlaytimeHours = &h
		}
		out = append(out, item)
	}
	return out, nil
}

// ListGames 分页列表，totalCount 为全表数量
func (s *CatalogService) ListGames(ctx context.Context, page, pageSize int) (*GameListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	games, total, err := s.games.ListGames(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询游戏列表失败: %w", err)
	}
	items, err := s.summaries(ctx, games, false)
	if err != nil {
		return nil, err
	}
	return &GameListResult{
		Games: items,
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalCount:  total,
			TotalPages:  TotalPages(total, pageSize),
		},
	}, nil
}

// SearchGames 名称模糊搜索，空查询返回参数错误
func (s *CatalogService) SearchGames(ctx context.Context, query string) ([]*GameSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptySearchQuery
	}
	games, err := s.games.SearchGames(ctx, query, s.cfg.SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("搜索失败: %w", err)
	}
	return s.summaries(ctx, games, true)
}

// GetGameDetail 详情；不存在返回 repository.ErrGameNotFound
func (s *CatalogService) GetGameDetail(ctx context.Context, appID int64) (*GameDetail, error) {
	g, err := s.games.GetGame(ctx, appID)
	if err != nil {
		return nil, err
	}
	related, err := s.games.LoadRelated(ctx, []int64{appID}, repository.AllFamilies...)
	if err != nil {
		return nil, err
	}
	screenshots, movies, err := s.games.LoadMedia(ctx, appID)
	if err != nil {
		return nil, err
	}
	if screenshots == nil {
		screenshots = []string{}
	}
	if movies == nil {
		movies = []string{}
	}

	return &GameDetail{
		AppID:                   g.AppID,
		Name:                    g.Name,
		ReleaseDate:             g.ReleaseDate,
		EstimatedOwners:         g.EstimatedOwners,
		PeakCCU:                 g.PeakCCU,
		RequiredAge:             g.RequiredAge,
		Price:                   g.Price,
		DLCCount:                g.DLCCount,
		AboutTheGame:            g.AboutTheGame,
		SupportedLanguages:      ParseLanguages(g.SupportedLanguages, s.logger),
		FullAudioLanguages:      ParseLanguages(g.FullAudioLanguages, s.logger),
		Reviews:                 g.Reviews,
		HeaderImage:             g.HeaderImage,
		Website:                 g.Website,
		SupportURL:              g.SupportURL,
		SupportEmail:            g.SupportEmail,
		Windows:                 boolValue(g.Windows),
		Mac:                     boolValue(g.Mac),
		Linux:                   boolValue(g.Linux),
		MetacriticScore:         g.MetacriticScore,
		MetacriticURL:           g.MetacriticURL,
		UserScore:               g.UserScore,
		PositiveReviews:         g.PositiveReviews,
		NegativeReviews:         g.NegativeReviews,
		ScoreRank:               g.ScoreRank,
		Achievements:            g.Achievements,
		Recommendations:         g.Recommendations,
		Notes:                   g.Notes,
		AveragePlaytimeForever:  g.AveragePlaytimeForever,
		AveragePlaytimeTwoWeeks: g.AveragePlaytimeTwoWeeks,
		MedianPlaytimeForever:   g.MedianPlaytimeForever,
		MedianPlaytimeTwoWeeks:  g.MedianPlaytimeTwoWeeks,
		Developers:              related.Get(repository.FamilyDevelopers, appID),
		Publishers:              related.Get(repository.FamilyPublishers, appID),
		Categories:              related.Get(repository.FamilyCategories, appID),
		Genres:                  related.Get(repository.FamilyGenres, appID),
		Tags:                    related.Get(repository.FamilyTags, appID),
		Screenshots:             screenshots,
		Movies:                  movies,
		ReviewScore:             ReviewPercentage(g.PositiveReviews, g.NegativeReviews),
		Playtime: Playtime{
			Average: PlaytimeStat{Forever: PlaytimeHours(g.AveragePlaytimeForever), TwoWeeks: PlaytimeHours(g.AveragePlaytimeTwoWeeks)},
			Median:  PlaytimeStat{Forever: PlaytimeHours(g.MedianPlaytimeForever), TwoWeeks: PlaytimeHours(g.MedianPlaytimeTwoWeeks)},
		},
	}, nil
}

// Trending 热门榜：分批扫描全部候选，内存里只保留当前前 N 名
func (s *CatalogService) Trending(ctx context.Context) ([]*TrendingGame, error) {
	now := s.now()
	var ranked []RankedGame
	err := s.games.ScanTrendingCandidates(ctx, TrendingSince, TrendingMinReviews, s.cfg.TrendingBatchSize, func(batch []*model.Game) error {
		pool := make([]*model.Game, 0, len(ranked)+len(batch))
		for _, r := range ranked {
			pool = append(pool, r.Game)
		}
		pool = append(pool, batch...)
		ranked = Rank(pool, now, s.cfg.TrendingLimit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("查询热门候选失败: %w", err)
	}

	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Game.AppID)
	}
	related, err := s.games.LoadRelated(ctx, ids, repository.FamilyGenres)
	if err != nil {
		return nil, err
	}

	out := make([]*TrendingGame, 0, len(ranked))
	for _, r := range ranked {
		g := r.Game
		out = append(out, &TrendingGame{
			AppID:                  g.AppID,
			Name:                   g.Name,
			HeaderImage:            g.HeaderImage,
			ReleaseDate:            g.ReleaseDate,
			Price:                  g.Price,
			MetacriticScore:        g.MetacriticScore,
			PositiveReviews:        g.PositiveReviews,
			NegativeReviews:        g.NegativeReviews,
			AveragePlaytimeForever: g.AveragePlaytimeForever,
			Genres:                 related.Get(repository.FamilyGenres, g.AppID),
			ReviewScore:            ReviewPercentage(g.PositiveReviews, g.NegativeReviews),
			PlaytimeHours:          PlaytimeHours(g.AveragePlaytimeForever),
			TrendingScore:          DisplayScore(r.Score),
		})
	}
	return out, nil
}

// FilterByGenre 类型 + 价格筛选
func (s *CatalogService) FilterByGenre(ctx context.Context, p repository.GenreFilterParams) ([]*repository.GenreGameRow, repository.GenreFilterMeta, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultGenrePageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.MinPrice > p.MaxPrice {
		return nil, repository.GenreFilterMeta{}, invalid("minPrice must not exceed maxPrice")
	}
	return s.filter.Filter(ctx, p)
}

// ListGenres 有游戏关联的全部类型
func (s *CatalogService) ListGenres(ctx context.Context) ([]GenreItem, error) {
	genres, err := s.games.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GenreItem, 0, len(genres))
	for _, g := range genres {
		out = append(out, GenreItem{ID: g.ID, Name: g.Name})
	}
	return out, nil
}

// GameMetrics GET /api/games/:appId/metrics 的响应
type GameMetrics struct {
	AppID                  int64    `json:"app_id"`
	AverageGenreMetacritic *float64 `json:"average_genre_metacritic"`
	AchievementCount       *int     `json:"achievement_count"`
	NumberOfGenres         int64    `json:"number_of_genres"`
}

// GameMetrics 同类型评分均值保留两位小数；游戏不存在返回 ErrGameNotFound
func (s *CatalogService) GameMetrics(ctx context.Context, appID int64) (*GameMetrics, error) {
	m, err := s.games.GameMetrics(ctx, appID)
	if err != nil {
		return nil, err
	}
	out := &GameMetrics{AppID: m.AppID, AchievementCount: m.Achievements, NumberOfGenres: m.GenreCount}
	if m.AverageGenreMetacritic != nil {
		avg := decimal.NewFromFloat(*m.AverageGenreMetacritic).Round(2).InexactFloat64()
		out.AverageGenreMetacritic = &avg
	}
	return out, nil
}

// PriceHistory 价格变更记录；游戏不存在返回 ErrGameNotFound
func (s *CatalogService) PriceHistory(ctx context.Context, appID int64) ([]PriceChange, error) {
	if _, err := s.games.GetGame(ctx, appID); err != nil {
		return nil, err
	}
	list, err := s.games.ListPriceHistory(ctx, appID)
	if err != nil {
		return nil, err
	}
	out := make([]PriceChange, 0, len(list))
	for _, h := range list {
		out = append(out, PriceChange{OldPrice: h.OldPrice, NewPrice: h.NewPrice, ChangedAt: h.ChangedAt})
	}
	return out, nil
}

func parseReleaseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, invalid("release_date must be YYYY-MM-DD")
	}
	return &t, nil
}

func validMetacritic(score int) error {
	if score < 0 || score > 100 {
		return invalid("metacritic_score must be between 0 and 100")
	}
	return nil
}

func validPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return invalid("price must not be negative")
	}
	return nil
}

func (r RelatedLists) related() (map[string][]string, map[string][]string) {
	related := map[string][]string{}
	media := map[string][]string{}
	put := func(m map[string][]string, key string, v []string) {
		if v != nil {
			m[key] = v
		}
	}
	put(related, repository.FamilyGenres, r.Genres)
	put(related, repository.FamilyDevelopers, r.Developers)
	put(related, repository.FamilyPublishers, r.Publishers)
	put(related, repository.FamilyCategories, r.Categories)
	put(related, repository.FamilyTags, r.Tags)
	put(media, repository.MediaScreenshots, r.Screenshots)
	put(media, repository.MediaMovies, r.Movies)
	return related, media
}

// CreateGame 新建游戏（管理员）
func (s *CatalogService) CreateGame(ctx context.Context, in *CreateGameInput) error {
	if in.AppID <= 0 {
		return invalid("app_id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return invalid("name is required")
	}
	release, err := parseReleaseDate(in.ReleaseDate)
	if err != nil {
		return err
	}
	game := &model.Game{
		AppID:           in.AppID,
		Name:            name,
		ReleaseDate:     release,
		HeaderImage:     in.HeaderImage,
		MetacriticScore: in.MetacriticScore,
		AboutTheGame:    in.AboutTheGame,
	}
	if in.Price != nil {
		if err := validPrice(*in.Price); err != nil {
			return err
		}
		game.Price = decimal.NewNullDecimal(*in.Price)
	}
	if in.MetacriticScore != nil {
		if err := validMetacritic(*in.MetacriticScore); err != nil {
			return err
		}
	}

	related, media := in.RelatedLists.related()
	if err := s.games.CreateGame(ctx, game, related, media); err != nil {
		return err
	}
	s.logger.WithField("app_id", in.AppID).Info("game created")
	return nil
}

func putField[T any](cols map[string]interface{}, col string, f model.Field[T]) {
	if !f.Set {
		return
	}
	if f.Null {
		cols[col] = nil
		return
	}
	cols[col] = f.Value
}

// putCount 非空计数列：不允许 null 与负数
func putCount(cols map[string]interface{}, col string, f model.Field[int]) error {
	if !f.Set {
		return nil
	}
	if f.Null {
		return invalid(col + " cannot be null")
	}
	if f.Value < 0 {
		return invalid(col + " must not be negative")
	}
	cols[col] = f.Value
	return nil
}

func putLanguages(cols map[string]interface{}, col string, f model.Field[[]string]) error {
	if !f.Set {
		return nil
	}
	if f.Null {
		cols[col] = nil
		return nil
	}
	list := f.Value
	if list == nil {
		list = []string{}
	}
	raw, err := jsonList(list)
	if err != nil {
		return err
	}
	cols[col] = raw
	return nil
}

// toPatch 把可选字段请求转换为仓储层的更新描述
func (in *UpdateGameInput) toPatch() (repository.GamePatch, error) {
	cols := map[string]interface{}{}

	if in.Name.Set {
		if in.Name.Null || strings.TrimSpace(in.Name.Value) == "" {
			return repository.GamePatch{}, invalid("name cannot be empty")
		}
		cols["name"] = strings.TrimSpace(in.Name.Value)
	}
	if in.ReleaseDate.Set {
		if in.ReleaseDate.Null {
			cols["release_date"] = nil
		} else {
			t, err := parseReleaseDate(in.ReleaseDate.Value)
			if err != nil {
				return repository.GamePatch{}, err
			}
			if t == nil {
				cols["release_date"] = nil
			} else {
				cols["release_date"] = *t
			}
		}
	}
	if in.Price.Present() {
		if err := validPrice(in.Price.Value); err != nil {
			return repository.GamePatch{}, err
		}
	}
	if in.MetacriticScore.Present() {
		if err := validMetacritic(in.MetacriticScore.Value); err != nil {
			return repository.GamePatch{}, err
		}
	}

	putField(cols, "estimated_owners", in.EstimatedOwners)
	putField(cols, "peak_ccu", in.PeakCCU)
	putField(cols, "required_age", in.RequiredAge)
	putField(cols, "price", in.Price)
	putField(cols, "dlc_count", in.DLCCount)
	putField(cols, "about_the_game", in.AboutTheGame)
	putField(cols, "reviews", in.Reviews)
	putField(cols, "header_image", in.HeaderImage)
	putField(cols, "website", in.Website)
	putField(cols, "support_url", in.SupportURL)
	putField(cols, "support_email", in.SupportEmail)
	putField(cols, "windows", in.Windows)
	putField(cols, "mac", in.Mac)
	putField(cols, "linux", in.Linux)
	putField(cols, "metacritic_score", in.MetacriticScore)
	putField(cols, "metacritic_url", in.MetacriticURL)
	putField(cols, "user_score", in.UserScore)
	putField(cols, "score_rank", in.ScoreRank)
	putField(cols, "achievements", in.Achievements)
	putField(cols, "recommendations", in.Recommendations)
	putField(cols, "notes", in.Notes)

	for col, f := range map[string]model.Field[int]{
		"positive_reviews":           in.PositiveReviews,
		"negative_reviews":           in.NegativeReviews,
		"average_playtime_forever":   in.AveragePlaytimeForever,
		"average_playtime_two_weeks": in.AveragePlaytimeTwoWeeks,
		"median_playtime_forever":    in.MedianPlaytimeForever,
		"median_playtime_two_weeks":  in.MedianPlaytimeTwoWeeks,
	} {
		if err := putCount(cols, col, f); err != nil {
			return repository.GamePatch{}, err
		}
	}
	if err := putLanguages(cols, "supported_languages", in.SupportedLanguages); err != nil {
		return repository.GamePatch{}, err
	}
	if err := putLanguages(cols, "full_audio_languages", in.FullAudioLanguages); err != nil {
		return repository.GamePatch{}, err
	}

	related := map[string][]string{}
	media := map[string][]string{}
	for key, f := range map[string]model.Field[[]string]{
		repository.FamilyGenres:     in.Genres,
		repository.FamilyDevelopers: in.Developers,
		repository.FamilyPublishers: in.Publishers,
		repository.FamilyCategories: in.Categories,
		repository.FamilyTags:       in.Tags,
	} {
		if f.Set {
			related[key] = f.Value
		}
	}
	for key, f := range map[string]model.Field[[]string]{
		repository.MediaScreenshots: in.Screenshots,
		repository.MediaMovies:      in.Movies,
	} {
		if f.Set {
			media[key] = f.Value
		}
	}

	return repository.GamePatch{Columns: cols, Related: related, Media: media}, nil
}

// UpdateGame 更新游戏及关联数据（单事务）
func (s *CatalogService) UpdateGame(ctx context.Context, appID int64, in *UpdateGameInput) error {
	patch, err := in.toPatch()
	if err != nil {
		return err
	}
	if err := s.games.UpdateGame(ctx, appID, patch); err != nil {
		return err
	}
	s.logger.WithField("app_id", appID).Info("game updated")
	return nil
}

// DeleteGame 删除游戏及全部关联数据
func (s *CatalogService) DeleteGame(ctx context.Context, appID int64) error {
	if err := s.games.DeleteGame(ctx, appID); err != nil {
		return err
	}
	s.logger.WithField("app_id", appID).Info("game deleted")
	return nil
}
