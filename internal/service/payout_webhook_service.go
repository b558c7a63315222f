package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// replayTTL keeps event ids in the Redis fast path long past the provider's
// retry horizon. The payout_webhook_events table covers anything older.
const replayTTL = 48 * time.Hour

// payoutEventPayload is the provider's callback body.
type payoutEventPayload struct {
	EventID         string `json:"event_id"`
	EventType       string `json:"event_type"`
	BatchID         string `json:"batch_id"`
	PayoutReference string `json:"payout_reference"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// PayoutWebhookService implements ports.WebhookService for inbound payout
// provider callbacks.
type PayoutWebhookService struct {
	batchRepo     ports.RemittanceBatchRepository
	webhookRepo   ports.WebhookEventRepository
	replayGuard   ports.ReplayGuard
	sigSvc        ports.SignatureService
	transactor    ports.DBTransactor
	webhookSecret string
	log           zerolog.Logger
}

// NewPayoutWebhookService creates a new PayoutWebhookService.
func NewPayoutWebhookService(
	batchRepo ports.RemittanceBatchRepository,
	webhookRepo ports.WebhookEventRepository,
	replayGuard ports.ReplayGuard,
	sigSvc ports.SignatureService,
	transactor ports.DBTransactor,
	webhookSecret string,
	log zerolog.Logger,
) *PayoutWebhookService {
	return &PayoutWebhookService{
		batchRepo:     batchRepo,
		webhookRepo:   webhookRepo,
		replayGuard:   replayGuard,
		sigSvc:        sigSvc,
		transactor:    transactor,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// ProcessPayoutEvent verifies the signature over the raw body, rejects
// replays, and applies the batch status transition. Replayed event ids are
// acknowledged as duplicate without any mutation.
func (s *PayoutWebhookService) ProcessPayoutEvent(ctx context.Context, rawBody []byte, signatureHeader, eventID string) (bool, error) {
	// Fail closed: no signature, bad signature, and tampered body all land
	// here. The body is verified exactly as received.
	if signatureHeader == "" || !s.sigSvc.Verify(s.webhookSecret, rawBody, signatureHeader) {
		s.log.Warn().Str("event_id", eventID).Msg("payout webhook signature verification failed")
		return false, apperror.ErrWebhookVerificationFailed()
	}

	var payload payoutEventPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return false, apperror.Validation("malformed payout event payload")
	}
	if eventID == "" {
		eventID = payload.EventID
	}
	if eventID == "" {
		return false, apperror.Validation("event id is required")
	}

	var targetStatus domain.BatchStatus
	switch payload.EventType {
	case domain.EventPayoutCompleted:
		targetStatus = domain.BatchStatusPayoutCompleted
	case domain.EventPayoutFailed:
		targetStatus = domain.BatchStatusPayoutFailed
	default:
		return false, apperror.Validation(fmt.Sprintf("unsupported event type %q", payload.EventType))
	}

	batchID, err := uuid.Parse(payload.BatchID)
	if err != nil {
		return false, apperror.Validation("batch_id is not a valid uuid")
	}

	// Redis fast path, lookup only. The id is marked seen after the commit;
	// marking it here would swallow the provider's retry when anything below
	// fails transiently. An error degrades to the durable check instead of
	// failing the delivery.
	seen, err := s.replayGuard.Seen(ctx, eventID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("replay guard unavailable, relying on event table")
	} else if seen {
		s.log.Info().Str("event_id", eventID).Msg("replayed payout event acknowledged")
		return true, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	inserted, err := s.webhookRepo.Insert(ctx, dbTx, &domain.WebhookEvent{
		EventID:    eventID,
		BatchID:    batchID,
		EventType:  payload.EventType,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("record webhook event: %w", err))
	}
	if !inserted {
		// Redis lost the key but the event table remembers. Repopulate the
		// fast path for the next retry.
		s.markSeen(ctx, eventID)
		s.log.Info().Str("event_id", eventID).Msg("replayed payout event acknowledged")
		return true, nil
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("get batch: %w", err))
	}
	if batch == nil {
		return false, apperror.ErrBatchNotFound(payload.BatchID)
	}
	if !batch.Status.CanTransition(targetStatus) {
		return false, apperror.ErrInvalidBatchState(string(batch.Status), string(domain.BatchStatusPayoutInitiated))
	}

	var payoutRef *string
	if payload.PayoutReference != "" {
		payoutRef = &payload.PayoutReference
	}
	matched, err := s.batchRepo.UpdateStatus(ctx, dbTx, batchID, domain.BatchStatusPayoutInitiated, targetStatus, payoutRef)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("update batch status: %w", err))
	}
	if !matched {
		// A concurrent delivery committed a different transition between our
		// read and the update. Re-read for the error; the terminal status wins.
		current := string(batch.Status)
		if latest, gerr := s.batchRepo.GetByID(ctx, batchID); gerr == nil && latest != nil {
			current = string(latest.Status)
		}
		return false, apperror.ErrInvalidBatchState(current, string(domain.BatchStatusPayoutInitiated))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	s.markSeen(ctx, eventID)

	logEvt := s.log.Info().
		Str("event_id", eventID).
		Str("batch_id", payload.BatchID).
		Str("status", string(targetStatus))
	if payload.FailureReason != "" {
		logEvt = logEvt.Str("failure_reason", payload.FailureReason)
	}
	logEvt.Msg("payout event applied")

	return false, nil
}

// markSeen records the event id in the Redis fast path. Best effort: the
// event table already holds the durable record at this point.
func (s *PayoutWebhookService) markSeen(ctx context.Context, eventID string) {
	if _, err := s.replayGuard.CheckAndSet(ctx, eventID, replayTTL); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("replay guard mark failed")
	}
}
