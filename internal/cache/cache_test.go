package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-chain/models"
)

func TestCache_GetJSON_Miss(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	defer redisMock.ClearExpect()

	redisMock.ExpectGet("event:detail:ev-1").RedisNil()

	c := New(db, 30*time.Second)
	var event models.Event
	err := c.GetJSON(context.Background(), EventDetailKey("ev-1"), &event)
	assert.ErrorIs(t, err, ErrMiss)
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCache_SetThenGet(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	defer redisMock.ClearExpect()

	event := models.Event{ID: "ev-1", Name: "Concert"}
	payload := `{"id":"ev-1","organizer_id":"","name":"Concert","description":"","venue":"","status":""}`

	redisMock.ExpectSet("event:detail:ev-1", []byte(payload), 30*time.Second).SetVal("OK")
	redisMock.ExpectGet("event:detail:ev-1").SetVal(payload)

	c := New(db, 30*time.Second)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, EventDetailKey("ev-1"), event))

	var got models.Event
	require.NoError(t, c.GetJSON(ctx, EventDetailKey("ev-1"), &got))
	assert.Equal(t, "Concert", got.Name)
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCache_InvalidateEvent_DropsDetailAndListPages(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	defer redisMock.ClearExpect()

	redisMock.ExpectScan(0, "event:list:*", 0).SetVal([]string{"event:list:1:20", "event:list:2:20"}, 0)
	redisMock.ExpectDel("event:detail:ev-1", "event:list:1:20", "event:list:2:20").SetVal(3)

	c := New(db, 30*time.Second)
	require.NoError(t, c.InvalidateEvent(context.Background(), "ev-1"))
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCache_InvalidateTicket(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	defer redisMock.ClearExpect()

	redisMock.ExpectDel("ticket:detail:t-1", "ticket:list:0xabc").SetVal(2)

	c := New(db, time.Minute)
	require.NoError(t, c.InvalidateTicket(context.Background(), "t-1", "0xabc"))
	require.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCache_KeyShapes(t *testing.T) {
	assert.Equal(t, "event:list:1:20", EventListKey(1, 20))
	assert.Equal(t, "event:detail:ev-9", EventDetailKey("ev-9"))
	assert.Equal(t, "ticket:list:0xabc", TicketListKey("0xabc"))
	assert.Equal(t, "ticket:detail:t-3", TicketDetailKey("t-3"))
}
