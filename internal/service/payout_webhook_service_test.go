package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports/mocks"
	"wallet-remittance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testWebhookSecret = "whsec_test_secret"

type webhookTestDeps struct {
	svc         *PayoutWebhookService
	batchRepo   *mocks.MockRemittanceBatchRepository
	webhookRepo *mocks.MockWebhookEventRepository
	replayGuard *mocks.MockReplayGuard
	sigSvc      *HMACSignatureService
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupWebhookService(t *testing.T) *webhookTestDeps {
	ctrl := gomock.NewController(t)
	d := &webhookTestDeps{
		batchRepo:   mocks.NewMockRemittanceBatchRepository(ctrl),
		webhookRepo: mocks.NewMockWebhookEventRepository(ctrl),
		replayGuard: mocks.NewMockReplayGuard(ctrl),
		sigSvc:      NewHMACSignatureService(),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewPayoutWebhookService(
		d.batchRepo, d.webhookRepo, d.replayGuard, d.sigSvc,
		d.transactor, testWebhookSecret, zerolog.Nop(),
	)
	return d
}

func signedEvent(t *testing.T, d *webhookTestDeps, eventType string, batchID uuid.UUID, eventID string) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(payoutEventPayload{
		EventID:         eventID,
		EventType:       eventType,
		BatchID:         batchID.String(),
		PayoutReference: "po_xyz",
	})
	require.NoError(t, err)
	return body, d.sigSvc.Sign(testWebhookSecret, body)
}

func TestPayoutWebhookService_Completed(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_1")

	d.replayGuard.EXPECT().Seen(ctx, "evt_1").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutInitiated,
	}, nil)
	d.batchRepo.EXPECT().UpdateStatus(ctx, tx, batchID, domain.BatchStatusPayoutInitiated, domain.BatchStatusPayoutCompleted, gomock.Any()).Return(true, nil)
	d.replayGuard.EXPECT().CheckAndSet(ctx, "evt_1", replayTTL).Return(true, nil)

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_1")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestPayoutWebhookService_Failed(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutFailed, batchID, "evt_2")

	d.replayGuard.EXPECT().Seen(ctx, "evt_2").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutInitiated,
	}, nil)
	d.batchRepo.EXPECT().UpdateStatus(ctx, tx, batchID, domain.BatchStatusPayoutInitiated, domain.BatchStatusPayoutFailed, gomock.Any()).Return(true, nil)
	d.replayGuard.EXPECT().CheckAndSet(ctx, "evt_2", replayTTL).Return(true, nil)

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_2")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestPayoutWebhookService_TamperedBody(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_3")
	tampered := append([]byte{}, body...)
	tampered[len(tampered)-2] = 'X'

	_, err := d.svc.ProcessPayoutEvent(context.Background(), tampered, sig, "evt_3")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayoutWebhookService_WrongSecret(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	batchID := uuid.New()
	body, _ := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_4")
	wrongSig := d.sigSvc.Sign("some-other-secret", body)

	_, err := d.svc.ProcessPayoutEvent(context.Background(), body, wrongSig, "evt_4")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayoutWebhookService_MissingSignature(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	body, _ := signedEvent(t, d, domain.EventPayoutCompleted, uuid.New(), "evt_5")

	_, err := d.svc.ProcessPayoutEvent(context.Background(), body, "", "evt_5")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "HOOK_001", appErr.Code)
}

func TestPayoutWebhookService_ReplayFastPath(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_6")

	// Redis already saw the id; nothing touches the database.
	d.replayGuard.EXPECT().Seen(ctx, "evt_6").Return(true, nil)

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_6")
	require.NoError(t, err)
	assert.True(t, duplicate)
}

func TestPayoutWebhookService_ReplayDurablePath(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_7")

	// Redis restarted and lost the key, but the event table still rejects
	// the duplicate insert.
	d.replayGuard.EXPECT().Seen(ctx, "evt_7").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(false, nil)
	d.replayGuard.EXPECT().CheckAndSet(ctx, "evt_7", replayTTL).Return(true, nil)

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_7")
	require.NoError(t, err)
	assert.True(t, duplicate)
}

func TestPayoutWebhookService_ReplayGuardDown_FallsThrough(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_8")

	d.replayGuard.EXPECT().Seen(ctx, "evt_8").Return(false, errors.New("redis unavailable"))
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutInitiated,
	}, nil)
	d.batchRepo.EXPECT().UpdateStatus(ctx, tx, batchID, domain.BatchStatusPayoutInitiated, domain.BatchStatusPayoutCompleted, gomock.Any()).Return(true, nil)
	d.replayGuard.EXPECT().CheckAndSet(ctx, "evt_8", replayTTL).Return(false, errors.New("redis unavailable"))

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_8")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestPayoutWebhookService_InvalidTransition(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_9")

	d.replayGuard.EXPECT().Seen(ctx, "evt_9").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	// payout_failed is terminal; a completed event must not resurrect it.
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutFailed,
	}, nil)

	_, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_9")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "REM_004", appErr.Code)
}

func TestPayoutWebhookService_UnknownEventType(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	body, err := json.Marshal(payoutEventPayload{
		EventID:   "evt_10",
		EventType: "payout.reversed",
		BatchID:   uuid.New().String(),
	})
	require.NoError(t, err)
	sig := d.sigSvc.Sign(testWebhookSecret, body)

	_, err = d.svc.ProcessPayoutEvent(context.Background(), body, sig, "evt_10")
	assert.Error(t, err)
}

func TestPayoutWebhookService_RetryAfterTransientFailure(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_12")

	// First delivery dies before anything commits. The event id must not be
	// recorded, or the provider's retry would be swallowed as a duplicate
	// and the batch stuck in payout_initiated.
	d.replayGuard.EXPECT().Seen(ctx, "evt_12").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(nil, errors.New("connection refused"))

	_, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_12")
	require.Error(t, err)

	// The retry carries the same event id and must apply the transition.
	d.replayGuard.EXPECT().Seen(ctx, "evt_12").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutInitiated,
	}, nil)
	d.batchRepo.EXPECT().UpdateStatus(ctx, tx, batchID, domain.BatchStatusPayoutInitiated, domain.BatchStatusPayoutCompleted, gomock.Any()).Return(true, nil)
	d.replayGuard.EXPECT().CheckAndSet(ctx, "evt_12", replayTTL).Return(true, nil)

	duplicate, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_12")
	require.NoError(t, err)
	assert.False(t, duplicate)
}

func TestPayoutWebhookService_LostTransitionRace(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutFailed, batchID, "evt_13")

	// A payout.completed delivery under another event id committed between
	// our read and the update. The guarded update matches no row, so the
	// terminal status is never overwritten.
	d.replayGuard.EXPECT().Seen(ctx, "evt_13").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutInitiated,
	}, nil)
	d.batchRepo.EXPECT().UpdateStatus(ctx, tx, batchID, domain.BatchStatusPayoutInitiated, domain.BatchStatusPayoutFailed, gomock.Any()).Return(false, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(&domain.RemittanceBatch{
		ID:     batchID,
		Status: domain.BatchStatusPayoutCompleted,
	}, nil)

	_, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_13")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "REM_004", appErr.Code)
	assert.Contains(t, appErr.Message, string(domain.BatchStatusPayoutCompleted))
}

func TestPayoutWebhookService_BatchNotFound(t *testing.T) {
	d := setupWebhookService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	batchID := uuid.New()
	body, sig := signedEvent(t, d, domain.EventPayoutCompleted, batchID, "evt_11")

	d.replayGuard.EXPECT().Seen(ctx, "evt_11").Return(false, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.webhookRepo.EXPECT().Insert(ctx, tx, gomock.Any()).Return(true, nil)
	d.batchRepo.EXPECT().GetByID(ctx, batchID).Return(nil, nil)

	_, err := d.svc.ProcessPayoutEvent(ctx, body, sig, "evt_11")
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "REM_003", appErr.Code)
}
