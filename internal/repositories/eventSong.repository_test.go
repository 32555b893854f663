package repositories_test

import (
	"context"
	"testing"

	"qrate/internal/database"
	"qrate/internal/models"
	"qrate/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err, "failed to open gorm db")

	return database.DB{SQL: gormDB}, mock
}

func TestIncrementOrInsertUpserts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := repositories.NewEventSongRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "event_songs" .*ON CONFLICT \("event_code","track_id","track_name","artist_name"\) DO UPDATE SET "frequency"=event_songs\.frequency \+ 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	song := &models.EventSong{
		EventCode:  "PARTY1",
		TrackID:    "t1",
		TrackName:  "Track One",
		ArtistName: "Artist A",
	}

	err := repo.IncrementOrInsert(context.Background(), song)
	require.NoError(t, err)
	assert.Equal(t, 1, song.Frequency, "first sight should start the counter at 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementOrInsertPropagatesError(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := repositories.NewEventSongRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "event_songs"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	song := &models.EventSong{
		EventCode:  "PARTY1",
		TrackID:    "t1",
		TrackName:  "Track One",
		ArtistName: "Artist A",
	}

	err := repo.IncrementOrInsert(context.Background(), song)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
