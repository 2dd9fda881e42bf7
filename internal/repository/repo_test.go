package repository

import (
	"context"
	"testing"
	"time"

	"PlayHorizon/internal/config"
	"PlayHorizon/internal/database"
	"PlayHorizon/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, logrus.New())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func seedGame(t *testing.T, repo GameRepository, g *model.Game, related map[string][]string) {
	t.Helper()
	require.NoError(t, repo.CreateGame(context.Background(), g, related, nil))
}

func countRows(t *testing.T, db *gorm.DB, m interface{}, appID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Where("app_id = ?", appID).Count(&n).Error)
	return n
}
