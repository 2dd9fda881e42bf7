package repository

import (
	"context"
	"testing"
	"time"

	"PlayHorizon/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryLifecycle(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepository(db)
	users := NewUserRepository(db)
	lib := NewLibraryRepository(db)
	ctx := context.Background()

	seedGame(t, games, &model.Game{AppID: 100, Name: "Celeste", AboutTheGame: strPtr("Climb the mountain"), Price: price("19.99")}, nil)
	seedGame(t, games, &model.Game{AppID: 200, Name: "Hollow Knight"}, nil)
	u := &model.User{Username: "carol", Email: "carol@example.com", PasswordHash: "h"}
	require.NoError(t, users.CreateUser(ctx, u))

	entry, err := lib.AddToLibrary(ctx, u.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, entry.PlaytimeMinutes)

	_, err = lib.AddToLibrary(ctx, u.ID, 100)
	assert.ErrorIs(t, err, ErrEntryExists)

	_, err = lib.AddToLibrary(ctx, u.ID, 999)
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = lib.AddToLibrary(ctx, u.ID, 200)
	require.NoError(t, err)

	list, err := lib.ListLibrary(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 200, list[0].AppID)
	assert.EqualValues(t, 100, list[1].AppID)
	require.NotNil(t, list[1].Description)
	assert.Equal(t, "Climb the mountain", *list[1].Description)
	assert.Equal(t, "Celeste", list[1].Name)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated, err := lib.AddPlaytime(ctx, u.ID, 100, 90, at)
	require.NoError(t, err)
	assert.Equal(t, 90, updated.PlaytimeMinutes)
	updated, err = lib.AddPlaytime(ctx, u.ID, 100, 30, at)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.PlaytimeMinutes)
	require.NotNil(t, updated.LastPlayed)
	assert.True(t, at.Equal(*updated.LastPlayed))

	_, err = lib.AddPlaytime(ctx, u.ID, 999, 10, at)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, lib.RemoveFromLibrary(ctx, u.ID, 100))
	assert.ErrorIs(t, lib.RemoveFromLibrary(ctx, u.ID, 100), ErrEntryNotFound)

	list, err = lib.ListLibrary(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 200, list[0].AppID)
}

func TestLibraryIsPerUser(t *testing.T) {
	db := newTestDB(t)
	seedGame(t, NewGameRepository(db), &model.Game{AppID: 1, Name: "Shared"}, nil)
	users := NewUserRepository(db)
	lib := NewLibraryRepository(db)
	ctx := context.Background()

	a := &model.User{Username: "a", Email: "a@x", PasswordHash: "h"}
	b := &model.User{Username: "b", Email: "b@x", PasswordHash: "h"}
	require.NoError(t, users.CreateUser(ctx, a))
	require.NoError(t, users.CreateUser(ctx, b))

	_, err := lib.AddToLibrary(ctx, a.ID, 1)
	require.NoError(t, err)
	_, err = lib.AddToLibrary(ctx, b.ID, 1)
	require.NoError(t, err)

	require.NoError(t, lib.RemoveFromLibrary(ctx, a.ID, 1))
	list, err := lib.ListLibrary(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
