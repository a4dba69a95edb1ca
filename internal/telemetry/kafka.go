package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/IBM/sarama"

	"github.com/rescuedogs/rescue-edge/internal/core/observability"
)

// KafkaReporter publishes batches as JSON through an async producer. A full
// queue drops the batch, as does reporting after Close.
type KafkaReporter struct {
	topic   string
	batches chan Batch
	prod    sarama.AsyncProducer
	log     *slog.Logger
	stopped chan struct{}

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

func NewKafkaReporter(brokers []string, topic string, queueSize int, logger *slog.Logger) (*KafkaReporter, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create async producer: %w", err)
	}
	return newKafkaReporter(prod, topic, queueSize, logger), nil
}

func newKafkaReporter(prod sarama.AsyncProducer, topic string, queueSize int, logger *slog.Logger) *KafkaReporter {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &KafkaReporter{
		topic:   topic,
		batches: make(chan Batch, queueSize),
		prod:    prod,
		log:     logger,
		stopped: make(chan struct{}),
	}

	go func() {
		defer close(r.stopped)
		for b := range r.batches {
			payload, err := json.Marshal(b)
			if err != nil {
				r.log.Error("telemetry: marshal batch", "err", err)
				observability.IncTelemetryBatch("kafka", err)
				continue
			}
			r.prod.Input() <- &sarama.ProducerMessage{
				Topic: r.topic,
				Value: sarama.ByteEncoder(payload),
			}
			observability.IncTelemetryBatch("kafka", nil)
		}
	}()

	go func() {
		for err := range r.prod.Errors() {
			if err != nil {
				r.log.Warn("telemetry: producer error", "err", err)
				observability.IncTelemetryBatch("kafka", err)
			}
		}
	}()

	return r
}

func (r *KafkaReporter) Report(b Batch) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		observability.IncTelemetryBatch("kafka_closed", nil)
		return
	}
	select {
	case r.batches <- b:
	default:
		observability.IncTelemetryBatch("kafka_dropped", nil)
	}
}

// Close flushes queued batches and closes the producer. Later calls return
// the first call's result.
func (r *KafkaReporter) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.batches)
		r.mu.Unlock()

		if r.stopped != nil {
			<-r.stopped
		}
		if err := r.prod.Close(); err != nil {
			r.closeErr = fmt.Errorf("telemetry: close producer: %w", err)
		}
	})
	return r.closeErr
}
