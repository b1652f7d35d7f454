package repository

import (
	"context"
	"encoding/json"
	"testing"

	"PairPulse/internal/domain/models"
	"PairPulse/pkg/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafkago.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaSamplePublisher(t *testing.T) {
	w := &captureWriter{}
	pub := NewKafkaSamplePublisher(kafka.NewProducerWithWriter(w, "snappy"), "pairpulse.samples")

	ev := models.SampleEvent{
		Instrument: models.Instrument{ChainID: "solana", PairAddress: "PAIR1"},
		Generation: 3,
		Timestamp:  1700000000,
		Price:      0.42,
	}
	require.NoError(t, pub.PublishSample(context.Background(), ev))
	require.NoError(t, pub.Close())

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "pairpulse.samples", msg.Topic)
	assert.Equal(t, "PAIR1", string(msg.Key))

	var got models.SampleEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, ev, got)
	assert.Contains(t, string(msg.Value), `"t":1700000000`)
}
