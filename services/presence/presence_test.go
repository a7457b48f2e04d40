package presence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mockedRegistry(t *testing.T) (*Registry, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(pgdriver.New(pgdriver.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open GORM over sqlmock: %v", err)
	}
	return NewRegistry(nil, gormDB), mock
}

func TestMarkPlayingSetsBusyFlag(t *testing.T) {
	registry, mock := mockedRegistry(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "game_profiles" SET "is_in_a_game"=\$1 WHERE username IN \(\$2,\$3\)`).
		WithArgs(true, "alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := registry.MarkPlaying(context.Background(), []string{"alice", "bob"}, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPlayingClearsBusyFlag(t *testing.T) {
	registry, mock := mockedRegistry(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "game_profiles" SET "is_in_a_game"=\$1 WHERE username IN \(\$2\)`).
		WithArgs(false, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := registry.MarkPlaying(context.Background(), []string{"alice"}, false)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPlayingNoUsernamesIsNoOp(t *testing.T) {
	registry, mock := mockedRegistry(t)

	err := registry.MarkPlaying(context.Background(), nil, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
