package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PlayHorizon/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LibraryEntry 用户游戏库中的一条记录（带游戏基本信息）
type LibraryEntry struct {
	AppID           int64               `gorm:"column:app_id"`
	Name            string              `gorm:"column:name"`
	HeaderImage     *string             `gorm:"column:header_image"`
	Price           decimal.NullDecimal `gorm:"column:price"`
	Description     *string             `gorm:"column:description"`
	PlaytimeMinutes int                 `gorm:"column:playtime_minutes"`
	LastPlayed      *time.Time          `gorm:"column:last_played"`
	AddedAt         time.Time           `gorm:"column:added_at"`
}

// LibraryRepository 用户游戏库
type LibraryRepository interface {
	ListLibrary(ctx context.Context, userID uint64) ([]*LibraryEntry, error)
	AddToLibrary(ctx context.Context, userID uint64, appID int64) (*model.UserGame, error)
	RemoveFromLibrary(ctx context.Context, userID uint64, appID int64) error
	AddPlaytime(ctx context.Context, userID uint64, appID int64, minutes int, at time.Time) (*model.UserGame, error)
}

type libraryRepository struct {
	db *gorm.DB
}

// NewLibraryRepository 创建游戏库仓储
func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) ListLibrary(ctx context.Context, userID uint64) ([]*LibraryEntry, error) {
	list := []*LibraryEntry{}
	if err := r.db.WithContext(ctx).
		Table("user_games AS ug").
		Select("ug.app_id, g.name, g.header_image, g.price, g.about_the_game AS description, ug.playtime_minutes, ug.last_played, ug.added_at").
		Joins("JOIN games g ON g.app_id = ug.app_id").
		Where("ug.user_id = ?", userID).
		Order("ug.added_at DESC, ug.id DESC").
		Scan(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *libraryRepository) AddToLibrary(ctx context.Context, userID uint64, appID int64) (*model.UserGame, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	var exists int64
	if err := tx.Model(&model.Game{}).Where("app_id = ?", appID).Count(&exists).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("查询游戏失败: %w", err)
	}
	if exists == 0 {
		tx.Rollback()
		return nil, ErrGameNotFound
	}

	entry := &model.UserGame{UserID: userID, AppID: appID}
	if err := tx.Create(entry).Error; err != nil {
		tx.Rollback()
		if isDuplicateKey(err) {
			return nil, ErrEntryExists
		}
		return nil, fmt.Errorf("加入游戏库失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return entry, nil
}

func (r *libraryRepository) RemoveFromLibrary(ctx context.Context, userID uint64, appID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND app_id = ?", userID, appID).
		Delete(&model.UserGame{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// AddPlaytime 累加游玩分钟并刷新 last_played
func (r *libraryRepository) AddPlaytime(ctx context.Context, userID uint64, appID int64, minutes int, at time.Time) (*model.UserGame, error) {
	res := r.db.WithContext(ctx).Model(&model.UserGame{}).
		Where("user_id = ? AND app_id = ?", userID, appID).
		Updates(map[string]interface{}{
			"playtime_minutes": gorm.Expr("playtime_minutes + ?", minutes),
			"last_played":      at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrEntryNotFound
	}

	var entry model.UserGame
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND app_id = ?", userID, appID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}
