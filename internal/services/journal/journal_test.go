package journal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iwtcode/tankRtu/internal/adapters/repositories/memory"
	"github.com/iwtcode/tankRtu/internal/config"
	"github.com/iwtcode/tankRtu/internal/domain/entities"
	"github.com/iwtcode/tankRtu/internal/middleware/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	key   string
	value []byte
}

type recordingProducer struct {
	mu       sync.Mutex
	messages []message
}

func (p *recordingProducer) Produce(ctx context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message{key: string(key), value: value})
	return nil
}

func (p *recordingProducer) Close() error { return nil }

// blockingProducer имитирует недоступный брокер: отправка ждет отмены контекста.
type blockingProducer struct{}

func (blockingProducer) Produce(ctx context.Context, key, value []byte) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingProducer) Close() error { return nil }

func (p *recordingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func items() map[string]*entities.ConfigItem {
	out := map[string]*entities.ConfigItem{}
	for _, item := range config.DefaultPoints() {
		out[item.Name] = item
	}
	return out
}

func point(item *entities.ConfigItem, raw uint16, failures int) entities.Point {
	return entities.NewPoint(entities.PointState{
		ID:                  item.Identifier(),
		Item:                item,
		RawValue:            raw,
		Stale:               failures > 0,
		ConsecutiveFailures: failures,
	})
}

func drain(j *Journal) []entities.PointEvent {
	var out []entities.PointEvent
	for {
		select {
		case e := <-j.queue:
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventTypes(events []entities.PointEvent) []string {
	var out []string
	for _, e := range events {
		out = append(out, e.EventType)
	}
	return out
}

func TestAlarmTransitions(t *testing.T) {
	j := New(memory.NewPointEventRepository(10), &recordingProducer{}, 3, 16, logging.NewNopLogger())
	level := items()["L"]

	j.PointChanged(point(level, 5000, 0), point(level, 5100, 0))
	assert.Empty(t, drain(j))

	j.PointChanged(point(level, 10400, 0), point(level, 10600, 0))
	events := drain(j)
	require.Len(t, events, 1)
	assert.Equal(t, entities.EventAlarmRaised, events[0].EventType)
	assert.Equal(t, entities.HighAlarm, events[0].Alarm)
	assert.Equal(t, uint16(10400), events[0].PreviousValue)
	assert.Equal(t, uint16(10600), events[0].Value)
	assert.NotEmpty(t, events[0].ID)

	j.PointChanged(point(level, 10600, 0), point(level, 9000, 0))
	events = drain(j)
	require.Len(t, events, 1)
	assert.Equal(t, entities.EventAlarmCleared, events[0].EventType)
	assert.Equal(t, entities.HighAlarm, events[0].Alarm)
}

func TestDigitalStateChange(t *testing.T) {
	j := New(memory.NewPointEventRepository(10), &recordingProducer{}, 3, 16, logging.NewNopLogger())
	pump := items()["P1"]

	j.PointChanged(point(pump, 0, 0), point(pump, 1, 0))
	assert.Equal(t, []string{entities.EventAlarmRaised, entities.EventStateChange}, eventTypes(drain(j)))

	j.PointChanged(point(pump, 1, 0), point(pump, 1, 0))
	assert.Empty(t, drain(j))
}

func TestCommunicationFailureThreshold(t *testing.T) {
	j := New(memory.NewPointEventRepository(10), &recordingProducer{}, 3, 16, logging.NewNopLogger())
	level := items()["L"]
	cause := errors.New("timeout")

	for failures := 1; failures <= 5; failures++ {
		j.CommandFailed(point(level, 5000, failures), "READ_HOLDING_REGISTERS", cause)
	}
	events := drain(j)
	require.Len(t, events, 1)
	assert.Equal(t, entities.EventCommFailure, events[0].EventType)
	assert.Equal(t, 3, events[0].Failures)
	assert.Contains(t, events[0].Message, "timeout")

	j.PointChanged(point(level, 5000, 5), point(level, 5000, 0))
	assert.Equal(t, []string{entities.EventCommRestored}, eventTypes(drain(j)))

	j.CommandFailed(point(level, 5000, 0), "WRITE_SINGLE_REGISTER", cause)
	assert.Equal(t, []string{entities.EventCommandFailed}, eventTypes(drain(j)))
}

func TestFullQueueDropsWithoutBlocking(t *testing.T) {
	j := New(memory.NewPointEventRepository(10), &recordingProducer{}, 1, 1, logging.NewNopLogger())
	level := items()["L"]

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			j.CommandFailed(point(level, 0, 0), "WRITE_SINGLE_REGISTER", errors.New("x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked")
	}
	assert.Equal(t, uint64(4), j.Dropped())
}

func TestWorkerPersistsAndPublishes(t *testing.T) {
	repo := memory.NewPointEventRepository(10)
	producer := &recordingProducer{}
	j := New(repo, producer, 3, 16, logging.NewNopLogger())
	level := items()["L"]

	j.Start(context.Background())
	j.PointChanged(point(level, 10000, 0), point(level, 11000, 0))
	require.Eventually(t, func() bool { return producer.count() == 1 }, time.Second, 5*time.Millisecond)

	j.PointChanged(point(level, 11000, 0), point(level, 9000, 0))
	j.Stop(context.Background())

	events, err := j.Recent(10)
	require.NoError(t, err)
	assert.Equal(t, []string{entities.EventAlarmCleared, entities.EventAlarmRaised}, eventTypes(events))

	require.Equal(t, 2, producer.count())
	assert.Equal(t, "L", producer.messages[0].key)
	var decoded entities.PointEvent
	require.NoError(t, json.Unmarshal(producer.messages[0].value, &decoded))
	assert.Equal(t, entities.EventAlarmRaised, decoded.EventType)
}

func TestStopIsBoundedByContextWhenBrokerIsDown(t *testing.T) {
	repo := memory.NewPointEventRepository(10)
	j := New(repo, blockingProducer{}, 3, 16, logging.NewNopLogger())
	level := items()["L"]
	for i := 0; i < 3; i++ {
		j.CommandFailed(point(level, 0, 0), "WRITE_SINGLE_REGISTER", errors.New("x"))
	}

	j.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	started := time.Now()
	j.Stop(ctx)
	assert.Less(t, time.Since(started), time.Second)

	stored, err := repo.Recent(0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, j.Dropped(), uint64(1))
	assert.Equal(t, uint64(3), uint64(len(stored))+j.Dropped(), "every queued event is either stored or counted as dropped")
}
