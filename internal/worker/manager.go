package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"omegavideos/internal/logging"
	"omegavideos/internal/metrics"
	"omegavideos/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second

	readErrorBackoff = time.Second
)

// Manager runs worker goroutines that drain the notification stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	log         zerolog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// NewManager creates a new worker manager. Zero config values take defaults.
func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
		log:         logging.Component("Manager"),
	}
}

// Start ensures the consumer group and launches the workers. Call Stop to
// shut down.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	if err := m.consumer.EnsureGroup(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotifications); err != nil {
		m.cancel()
		return err
	}

	for i := 1; i <= m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(i, consumerNameForWorker(i))
	}

	m.log.Info().
		Int("workers", m.workerCount).
		Str("stream", queue.StreamNotifications).
		Str("group", queue.ConsumerGroupNotifications).
		Msg("Workers started")
	return nil
}

// Stop cancels the workers and waits for them to return.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.log.Info().Msg("All workers stopped")
}

func (m *Manager) runWorker(workerID int, consumerName string) {
	defer m.wg.Done()

	log := m.log.With().Int("worker", workerID).Str("consumer", consumerName).Logger()
	log.Debug().Msg("Worker started")

	// Entries left unacked by a previous run of this consumer come first.
	m.processPending(log, consumerName)

	for {
		select {
		case <-m.ctx.Done():
			log.Debug().Msg("Worker shutting down")
			return
		default:
			m.processMessages(log, consumerName)
		}
	}
}

func (m *Manager) processPending(log zerolog.Logger, consumerName string) {
	for m.ctx.Err() == nil {
		messages, err := m.consumer.ReadPending(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotifications, consumerName, m.batchSize)
		if err != nil {
			log.Warn().Err(err).Msg("Error reading pending messages")
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Info().Int("count", len(messages)).Msg("Processing pending messages")
		if !m.handleMessages(log, messages) {
			// Unacked entries would come back in the next pending read.
			log.Warn().Msg("Leaving pending messages until the next restart")
			return
		}
	}
}

func (m *Manager) processMessages(log zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(
		m.ctx,
		queue.StreamNotifications,
		queue.ConsumerGroupNotifications,
		consumerName,
		m.batchSize,
		m.blockTime,
	)
	if err != nil {
		if m.ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("Error reading stream")
		select {
		case <-m.ctx.Done():
		case <-time.After(readErrorBackoff):
		}
		return
	}

	if len(messages) > 0 {
		m.handleMessages(log, messages)
	}
}

// handleMessages acks every message, including ones the handler rejected,
// so a poison entry is not redelivered forever. It reports whether every
// ack succeeded.
func (m *Manager) handleMessages(log zerolog.Logger, messages []queue.Message) bool {
	acked := true
	for _, msg := range messages {
		result := "consumed"
		if err := m.handler.HandleEvent(m.ctx, msg.Event); err != nil {
			result = "handler_error"
			log.Warn().Err(err).Str("msg_id", msg.ID).Msg("Handler error")
		}
		metrics.StreamEventsTotal.WithLabelValues(queue.StreamNotifications, result).Inc()

		if err := m.consumer.Ack(m.ctx, queue.StreamNotifications, queue.ConsumerGroupNotifications, msg.ID); err != nil {
			acked = false
			log.Warn().Err(err).Str("msg_id", msg.ID).Msg("ACK error")
		}
	}
	return acked
}

func consumerNameForWorker(workerID int) string {
	return "worker-" + strconv.Itoa(workerID)
}
