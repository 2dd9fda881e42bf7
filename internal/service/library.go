package service

import (
	"context"
	"time"

	"PlayHorizon/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LibraryGame 游戏库条目
type LibraryGame struct {
	AppID           int64               `json:"app_id"`
	Name            string              `json:"name"`
	HeaderImage     *string             `json:"header_image"`
	Price           decimal.NullDecimal `json:"price"`
	Description     *string             `json:"description"`
	Genres          []string            `json:"genres"`
	PlaytimeMinutes int                 `json:"playtime_minutes"`
	PlaytimeHours   int                 `json:"playtime_hours"`
	LastPlayed      *time.Time          `json:"last_played"`
	AddedAt         time.Time           `json:"added_at"`
}

// LibraryItem 增改后返回的库记录
type LibraryItem struct {
	UserID          uint64     `json:"user_id"`
	AppID           int64      `json:"app_id"`
	PlaytimeMinutes int        `json:"playtime_minutes"`
	PlaytimeHours   int        `json:"playtime_hours"`
	LastPlayed      *time.Time `json:"last_played"`
	AddedAt         time.Time  `json:"added_at"`
}

// LibraryService 用户游戏库
type LibraryService struct {
	library repository.LibraryRepository
	games   repository.GameRepository
	logger  *logrus.Logger
	now     func() time.Time
}

// NewLibraryService 创建 LibraryService
func NewLibraryService(library repository.LibraryRepository, games repository.GameRepository, logger *logrus.Logger) *LibraryService {
	return &LibraryService{library: library, games: games, logger: logger, now: time.Now}
}

// List 按加入时间倒序
func (s *LibraryService) List(ctx context.Context, userID uint64) ([]*LibraryGame, error) {
	entries, err := s.library.ListLibrary(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AppID)
	}
	related, err := s.games.LoadRelated(ctx, ids, repository.FamilyGenres)
	if err != nil {
		return nil, err
	}

	out := make([]*LibraryGame, 0, len(entries))
	for _, e := range entries {
		out = append(out, &LibraryGame{
			AppID:           e.AppID,
			Name:            e.Name,
			HeaderImage:     e.HeaderImage,
			Price:           e.Price,
			Description:     e.Description,
			Genres:          related.Get(repository.FamilyGenres, e.AppID),
			PlaytimeMinutes: e.PlaytimeMinutes,
			PlaytimeHours:   PlaytimeHours(e.PlaytimeMinutes),
			LastPlayed:      e.LastPlayed,
			AddedAt:         e.AddedAt,
		})
	}
	return out, nil
}

// Add 加入游戏库
func (s *LibraryService) Add(ctx context.Context, userID uint64, appID int64) (*LibraryItem, error) {
	if appID <= 0 {
		return nil, invalid("app_id is required")
	}
	entry, err := s.library.AddToLibrary(ctx, userID, appID)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "app_id": appID}).Info("game added to library")
	return &LibraryItem{
		UserID:          entry.UserID,
		AppID:           entry.AppID,
		PlaytimeMinutes: entry.PlaytimeMinutes,
		PlaytimeHours:   PlaytimeHours(entry.PlaytimeMinutes),
		LastPlayed:      entry.LastPlayed,
		AddedAt:         entry.AddedAt,
	}, nil
}

// Remove 移出游戏库
func (s *LibraryService) Remove(ctx context.Context, userID uint64, appID int64) error {
	return s.library.RemoveFromLibrary(ctx, userID, appID)
}

// AddPlaytime 累加游玩时长
func (s *LibraryService) AddPlaytime(ctx context.Context, userID uint64, appID int64, minutes int) (*LibraryItem, error) {
	if minutes <= 0 {
		return nil, invalid("minutes_played must be a positive number")
	}
	entry, err := s.library.AddPlaytime(ctx, userID, appID, minutes, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &LibraryItem{
		UserID:          entry.UserID,
		AppID:           entry.AppID,
		PlaytimeMinutes: entry.PlaytimeMinutes,
		PlaytimeHours:   PlaytimeHours(entry.PlaytimeMinutes),
		LastPlayed:      entry.LastPlayed,
		AddedAt:         entry.AddedAt,
	}, nil
}
