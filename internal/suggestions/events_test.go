package suggestions

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/richxcame/neighborly/pkg/cache"
	"github.com/richxcame/neighborly/pkg/eventbus"
	redisclient "github.com/richxcame/neighborly/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubscriber struct {
	mock.Mock
}

func (m *mockSubscriber) Subscribe(ctx context.Context, subject, consumerName string, handler eventbus.HandlerFunc) error {
	args := m.Called(ctx, subject, consumerName, handler)
	return args.Error(0)
}

func newListener() (*EventListener, redismock.ClientMock) {
	db, redisMock := redismock.NewClientMock()
	return NewEventListener(cache.NewManager(&redisclient.Client{Client: db})), redisMock
}

func lifecycleEvent(t *testing.T, subject string, data eventbus.RequestLifecycleData) *eventbus.Event {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &eventbus.Event{ID: uuid.NewString(), Type: subject, Source: "requests-service", Data: raw}
}

func TestEventListener_StartSubscribesToAllRequestSubjects(t *testing.T) {
	listener, _ := newListener()
	sub := new(mockSubscriber)
	sub.On("Subscribe", mock.Anything, eventbus.SubjectRequestsAll, "suggestions-trending", mock.Anything).Return(nil)

	require.NoError(t, listener.Start(context.Background(), sub))
	sub.AssertExpectations(t)
}

func TestEventListener_InvalidatesTrendingCache(t *testing.T) {
	listener, redisMock := newListener()
	redisMock.ExpectScan(0, "trending:*", 100).SetVal([]string{"trending:24:5", "trending:72:3"}, 0)
	redisMock.ExpectDel("trending:24:5", "trending:72:3").SetVal(2)

	event := lifecycleEvent(t, eventbus.SubjectRequestCreated, eventbus.RequestLifecycleData{
		RequestID: uuid.New(),
		Category:  "groceries",
		Status:    "open",
	})

	require.NoError(t, listener.HandleEvent(context.Background(), event))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEventListener_MalformedPayloadIsAcked(t *testing.T) {
	listener, redisMock := newListener()

	event := &eventbus.Event{ID: "evt-1", Type: eventbus.SubjectRequestUpdated, Data: []byte(`"not an object"`)}
	assert.NoError(t, listener.HandleEvent(context.Background(), event))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEventListener_InvalidPayloadIsAcked(t *testing.T) {
	listener, redisMock := newListener()
	badLat := 123.0

	for name, data := range map[string]eventbus.RequestLifecycleData{
		"missing request id": {Category: "groceries", Status: "open"},
		"unknown status":     {RequestID: uuid.New(), Status: "archived"},
		"latitude off range": {RequestID: uuid.New(), Latitude: &badLat},
	} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, listener.HandleEvent(context.Background(), lifecycleEvent(t, eventbus.SubjectRequestUpdated, data)))
		})
	}
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEventListener_RedisFailureNacks(t *testing.T) {
	listener, redisMock := newListener()
	redisMock.ExpectScan(0, "trending:*", 100).SetErr(errors.New("connection reset"))

	event := lifecycleEvent(t, eventbus.SubjectRequestCompleted, eventbus.RequestLifecycleData{RequestID: uuid.New()})

	assert.Error(t, listener.HandleEvent(context.Background(), event))
}
