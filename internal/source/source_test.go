package source

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridcal/internal/model"
)

func TestMemory_SetRecordsNotifies(t *testing.T) {
	mem := NewMemory(nil)

	notified := 0
	unsubscribe := mem.Subscribe(func() { notified++ })

	mem.SetRecords([]model.RawRecord{{"title": "a"}})
	assert.Equal(t, 1, notified)

	records, err := mem.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0]["title"])

	unsubscribe()
	mem.SetRecords(nil)
	assert.Equal(t, 1, notified, "unsubscribed callback must not fire")
}

func TestMemory_SelectionWriteBack(t *testing.T) {
	mem := NewMemory(nil)
	ctx := context.Background()

	rec := model.RawRecord{"title": "x"}
	require.NoError(t, mem.SetSelectedEntity(ctx, rec))
	require.NoError(t, mem.SetSelectedDate(ctx, model.CalendarDate{Year: 2024, Month: time.February, Day: 14}))

	assert.Equal(t, rec, mem.SelectedEntity)
	assert.Equal(t, "2024-02-14", mem.SelectedDate.String())
}

func TestRedis_Records(t *testing.T) {
	client := NewFakeClient()
	src := NewRedis(client, "t")
	ctx := context.Background()

	records := []model.RawRecord{
		{"title": "a", "start": "2024-02-13", "end": "2024-02-14"},
		{"title": "b", "start": "2024-02-15", "end": "2024-02-15"},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, client.Set(ctx, "t:records", string(data)))

	got, err := src.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestRedis_EmptyKeyYieldsNoRecords(t *testing.T) {
	src := NewRedis(NewFakeClient(), "t")

	got, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedis_MalformedDocumentFails(t *testing.T) {
	client := NewFakeClient()
	src := NewRedis(client, "t")
	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "t:records", "{not json"))

	_, err := src.Records(ctx)
	assert.Error(t, err)
}

func TestRedis_SubscribeReceivesPublishes(t *testing.T) {
	client := NewFakeClient()
	src := NewRedis(client, "t")

	changed := make(chan struct{}, 1)
	unsubscribe := src.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	client.Publish("t:changed", "1")

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification")
	}
}

func TestRedis_SelectionWriteBack(t *testing.T) {
	client := NewFakeClient()
	src := NewRedis(client, "t")
	ctx := context.Background()

	require.NoError(t, src.SetSelectedDate(ctx, model.CalendarDate{Year: 2024, Month: time.February, Day: 16}))
	val, err := client.Get(ctx, "t:selected_date")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-16", val)

	rec := model.RawRecord{"title": "x"}
	require.NoError(t, src.SetSelectedEntity(ctx, rec))
	val, err = client.Get(ctx, "t:selected_entity")
	require.NoError(t, err)

	var got model.RawRecord
	require.NoError(t, json.Unmarshal([]byte(val), &got))
	assert.Equal(t, rec, got)
}
