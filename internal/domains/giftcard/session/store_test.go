package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcard-backend/internal/domains/giftcard/model"
	infracache "giftcard-backend/internal/infrastructure/cache"
)

func newStoreWithMock(t *testing.T) (*Store, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return NewStore(infracache.NewRedisCache(client), 48*time.Hour), mock
}

func samplePending() *model.PendingRedemption {
	return &model.PendingRedemption{
		Code:      "GIFT-SESSION",
		Amount:    decimal.NewFromInt(30),
		AppliedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store, mock := newStoreWithMock(t)
	pending := samplePending()

	data, err := json.Marshal(pending)
	require.NoError(t, err)

	mock.ExpectSet("giftcard:session:tok-1", data, 48*time.Hour).SetVal("OK")
	require.NoError(t, store.Save(context.Background(), "tok-1", pending))

	mock.ExpectGet("giftcard:session:tok-1").SetVal(string(data))
	got, found, err := store.Get(context.Background(), "tok-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pending.Code, got.Code)
	assert.True(t, pending.Amount.Equal(got.Amount))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMiss(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectGet("giftcard:session:expired").RedisNil()

	got, found, err := store.Get(context.Background(), "expired")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	store, mock := newStoreWithMock(t)

	mock.ExpectDel("giftcard:session:tok-1").SetVal(1)

	require.NoError(t, store.Delete(context.Background(), "tok-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
