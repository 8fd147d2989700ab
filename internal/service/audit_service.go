package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medcore/patientcare/pkg/metrics"
)

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

type AuditEntry struct {
	OccurredAt   time.Time   `json:"occurred_at"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
}

// AuditSink persists audit entries. The default sink writes them to the
// structured log; a store-backed sink can replace it without touching the
// service.
type AuditSink interface {
	Write(ctx context.Context, entry *AuditEntry) error
}

type logSink struct {
	log *zap.Logger
}

func (s *logSink) Write(_ context.Context, e *AuditEntry) error {
	s.log.Info("audit",
		zap.String("action", string(e.Action)),
		zap.String("resource_type", e.ResourceType),
		zap.String("resource_id", e.ResourceID),
		zap.Time("occurred_at", e.OccurredAt),
	)
	return nil
}

// AuditService records an access trail for clinical data. Entries are
// buffered and written by a single worker so audit persistence never
// blocks a clinical operation.
type AuditService struct {
	sink    AuditSink
	log     *zap.Logger
	metrics *metrics.Collector
	entries chan *AuditEntry
	done    chan struct{}
}

const auditBufferSize = 10_000

// NewAuditService starts the persistence worker. Pass a nil sink to log
// entries through the structured logger.
func NewAuditService(sink AuditSink, m *metrics.Collector, log *zap.Logger) *AuditService {
	if sink == nil {
		sink = &logSink{log: log}
	}
	svc := &AuditService{
		sink:    sink,
		log:     log,
		metrics: m,
		entries: make(chan *AuditEntry, auditBufferSize),
		done:    make(chan struct{}),
	}
	go svc.worker()
	return svc
}

// LogAsync enqueues an audit entry for async persistence. If the buffer
// is full, the entry is dropped and a warning is emitted.
func (s *AuditService) LogAsync(entry AuditEntry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	select {
	case s.entries <- &entry:
	default:
		if s.metrics != nil {
			s.metrics.AuditBufferDropped.Inc()
		}
		s.log.Warn("audit buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("resource", entry.ResourceType),
		)
	}
}

func (s *AuditService) Shutdown() {
	close(s.entries)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("audit service shutdown timed out; some entries may be lost")
	}
}

func (s *AuditService) worker() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.sink.Write(ctx, entry); err != nil {
			s.log.Error("failed to persist audit entry", zap.Error(err))
		} else if s.metrics != nil {
			s.metrics.AuditEntriesTotal.Inc()
		}
		cancel()
	}
}
