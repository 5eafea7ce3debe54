package repositories

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbm "deseos/internal/models/db_models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database shared. It also serializes statements, so the
	// concurrent tests check that the conditional UPDATE beats a stale pre-check, not lock contention.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(dbm.All()...))
	return db
}

type fixture struct {
	owner dbm.Account
	list  dbm.GiftList
	gift  dbm.Gift
}

func seed(t *testing.T, db *gorm.DB, price int64, stock int) fixture {
	t.Helper()
	ctx := context.Background()

	owner := dbm.Account{Name: "Owner", Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: dbm.RoleUser}
	require.NoError(t, db.WithContext(ctx).Create(&owner).Error)

	list := dbm.GiftList{
		OwnerID:    owner.ID,
		Title:      "Matrimonio",
		ShareToken: uuid.NewString(),
		Visibility: dbm.VisibilityPublic,
	}
	require.NoError(t, NewGiftListRepository(db).Create(ctx, &list))

	gift := dbm.Gift{
		GiftListID: list.ID,
		Name:       "Tostadora",
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
	}
	require.NoError(t, NewGiftRepository(db).Create(ctx, &gift))

	return fixture{owner: owner, list: list, gift: gift}
}
