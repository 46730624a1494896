package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	redisclient "github.com/richxcame/neighborly/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Condition string  `json:"condition"`
	Temp      float64 `json:"temp"`
}

func newManager() (*Manager, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	return NewManager(&redisclient.Client{Client: db}), mock
}

func TestManagerSetThenGet(t *testing.T) {
	m, mock := newManager()
	ctx := context.Background()

	mock.ExpectSet("weather:872830828ffffff", `{"condition":"Rain","temp":12.5}`, time.Minute).SetVal("OK")
	mock.ExpectGet("weather:872830828ffffff").SetVal(`{"condition":"Rain","temp":12.5}`)

	require.NoError(t, m.Set(ctx, Keys.Weather("872830828ffffff"), payload{Condition: "Rain", Temp: 12.5}, time.Minute))

	var got payload
	require.NoError(t, m.Get(ctx, Keys.Weather("872830828ffffff"), &got))
	assert.Equal(t, "Rain", got.Condition)
	assert.Equal(t, 12.5, got.Temp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerGetMiss(t *testing.T) {
	m, mock := newManager()
	mock.ExpectGet("trending:24:5").RedisNil()

	var got []string
	err := m.Get(context.Background(), Keys.Trending(24, 5), &got)
	assert.True(t, redisclient.IsNil(err))
}

func TestManagerGetCorruptValue(t *testing.T) {
	m, mock := newManager()
	mock.ExpectGet("trending:24:5").SetVal("not-json")

	var got []string
	err := m.Get(context.Background(), Keys.Trending(24, 5), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestManagerZeroTTLSkipsWrite(t *testing.T) {
	m, mock := newManager()
	require.NoError(t, m.Set(context.Background(), "k", "v", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerInvalidate(t *testing.T) {
	m, mock := newManager()
	mock.ExpectScan(0, "trending:*", 100).SetVal([]string{"trending:24:5", "trending:1:10"}, 0)
	mock.ExpectDel("trending:24:5", "trending:1:10").SetVal(2)

	n, err := m.Invalidate(context.Background(), Keys.TrendingPattern())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManagerInvalidateScanError(t *testing.T) {
	m, mock := newManager()
	mock.ExpectScan(0, "trending:*", 100).SetErr(errors.New("connection refused"))

	_, err := m.Invalidate(context.Background(), Keys.TrendingPattern())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan")
}

func TestNilManagerIsDisabled(t *testing.T) {
	m := NewManager(nil)
	var out string
	assert.ErrorIs(t, m.Get(context.Background(), "k", &out), ErrDisabled)
	assert.NoError(t, m.Set(context.Background(), "k", "v", time.Minute))
	n, err := m.Invalidate(context.Background(), "*")
	assert.NoError(t, err)
	assert.Zero(t, n)
}
