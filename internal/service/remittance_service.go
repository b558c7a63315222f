package service

import (
	"context"
	"fmt"
	"time"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RemittanceConfig holds the settlement knobs for batch building.
type RemittanceConfig struct {
	FeeRate       decimal.Decimal
	MinNetPayable decimal.Decimal
	Currency      string
}

// RemittanceServiceImpl implements ports.RemittanceService. Claiming the
// shipments, persisting the batch, and crediting the wallet share one
// database transaction; payout initiation happens after commit so a provider
// outage never rolls back the settlement itself.
type RemittanceServiceImpl struct {
	shipmentRepo ports.ShipmentRepository
	batchRepo    ports.RemittanceBatchRepository
	walletRepo   ports.WalletRepository
	ledgerRepo   ports.LedgerRepository
	gateway      ports.PayoutGateway
	transactor   ports.DBTransactor
	cfg          RemittanceConfig
	log          zerolog.Logger
}

// NewRemittanceService creates a new RemittanceServiceImpl.
func NewRemittanceService(
	shipmentRepo ports.ShipmentRepository,
	batchRepo ports.RemittanceBatchRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	gateway ports.PayoutGateway,
	transactor ports.DBTransactor,
	cfg RemittanceConfig,
	log zerolog.Logger,
) *RemittanceServiceImpl {
	return &RemittanceServiceImpl{
		shipmentRepo: shipmentRepo,
		batchRepo:    batchRepo,
		walletRepo:   walletRepo,
		ledgerRepo:   ledgerRepo,
		gateway:      gateway,
		transactor:   transactor,
		cfg:          cfg,
		log:          log,
	}
}

// CreateBatch claims every eligible COD shipment for the tenant, computes
// the settlement financials, persists the batch, and credits the wallet.
// Payout initiation is attempted after commit; a provider failure leaves the
// batch in draft for a later InitiatePayout retry.
func (s *RemittanceServiceImpl) CreateBatch(ctx context.Context, tenantID, triggeredBy string, asOf time.Time) (*domain.RemittanceBatch, error) {
	if tenantID == "" {
		return nil, apperror.Validation("tenant_id is required")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	eligible, err := s.shipmentRepo.SelectEligibleForUpdate(ctx, dbTx, tenantID, asOf)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("select eligible shipments: %w", err))
	}
	if len(eligible) == 0 {
		return nil, apperror.ErrNoEligibleShipments(tenantID)
	}

	batchID := uuid.New()
	ids := make([]string, 0, len(eligible))
	for _, sh := range eligible {
		ids = append(ids, sh.ShipmentID)
	}

	claimed, err := s.shipmentRepo.Claim(ctx, dbTx, tenantID, batchID, ids)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("claim shipments: %w", err))
	}
	if len(claimed) == 0 {
		// A racing builder claimed everything between our select and update.
		return nil, apperror.ErrNoEligibleShipments(tenantID)
	}

	// The claimed set is authoritative; a racing builder may have taken a
	// subset between our select and update.
	claimedSet := make(map[string]struct{}, len(claimed))
	for _, id := range claimed {
		claimedSet[id] = struct{}{}
	}
	shipments := make([]domain.Shipment, 0, len(claimed))
	for _, sh := range eligible {
		if _, ok := claimedSet[sh.ShipmentID]; ok {
			shipments = append(shipments, sh)
		}
	}

	financials, needsReview := domain.ComputeFinancials(shipments, s.cfg.FeeRate)

	now := time.Now().UTC()
	batch := &domain.RemittanceBatch{
		ID:          batchID,
		TenantID:    tenantID,
		ShipmentIDs: claimed,
		Financials:  financials,
		Status:      domain.BatchStatusDraft,
		NeedsReview: needsReview,
		TriggeredBy: triggeredBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.batchRepo.Create(ctx, dbTx, batch); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create batch: %w", err))
	}

	if financials.NetPayable.IsPositive() {
		newBalance, matched, err := s.walletRepo.AddBalance(ctx, dbTx, tenantID, financials.NetPayable)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("credit wallet: %w", err))
		}
		if !matched {
			return nil, apperror.ErrAccountNotFound(tenantID)
		}

		entry := &domain.LedgerEntry{
			ID:           uuid.New(),
			TenantID:     tenantID,
			Direction:    domain.DirectionCredit,
			Amount:       financials.NetPayable,
			Reason:       domain.ReasonCODRemittance,
			Reference:    domain.Reference{Type: "remittance_batch", ID: batchID.String()},
			BalanceAfter: newBalance,
			Actor:        triggeredBy,
			CreatedAt:    now,
		}
		if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("append remittance credit: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("batch_id", batchID.String()).
		Str("tenant_id", tenantID).
		Int("shipments", len(claimed)).
		Str("gross_cod", financials.GrossCOD.String()).
		Str("net_payable", financials.NetPayable.String()).
		Bool("needs_review", needsReview).
		Msg("remittance batch created")

	if s.holdPayout(batch) {
		s.log.Info().
			Str("batch_id", batchID.String()).
			Str("net_payable", financials.NetPayable.String()).
			Bool("needs_review", needsReview).
			Msg("payout initiation held, batch stays in draft")
		return batch, nil
	}

	// Post-commit: a provider failure here must not undo the settlement.
	if err := s.initiatePayout(ctx, batch); err != nil {
		s.log.Warn().
			Err(err).
			Str("batch_id", batchID.String()).
			Msg("payout initiation failed, batch stays in draft")
	}
	return batch, nil
}

// InitiatePayout explicitly (re)tries payout initiation for a draft batch.
func (s *RemittanceServiceImpl) InitiatePayout(ctx context.Context, batchID uuid.UUID) (*domain.RemittanceBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get batch: %w", err))
	}
	if batch == nil {
		return nil, apperror.ErrBatchNotFound(batchID.String())
	}
	if batch.Status != domain.BatchStatusDraft {
		return nil, apperror.ErrInvalidBatchState(string(batch.Status), string(domain.BatchStatusDraft))
	}
	if batch.NeedsReview {
		return nil, apperror.Validation("batch is flagged for review and cannot be paid out")
	}

	if err := s.initiatePayout(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// GetBatch fetches a batch by id.
func (s *RemittanceServiceImpl) GetBatch(ctx context.Context, batchID uuid.UUID) (*domain.RemittanceBatch, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get batch: %w", err))
	}
	if batch == nil {
		return nil, apperror.ErrBatchNotFound(batchID.String())
	}
	return batch, nil
}

// ListBatches returns the most recent batches for a tenant.
func (s *RemittanceServiceImpl) ListBatches(ctx context.Context, tenantID string, limit int) ([]domain.RemittanceBatch, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	batches, err := s.batchRepo.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list batches: %w", err))
	}
	return batches, nil
}

// holdPayout reports whether auto-initiation should be skipped: flagged
// batches and batches below the configured minimum stay in draft for manual
// handling.
func (s *RemittanceServiceImpl) holdPayout(batch *domain.RemittanceBatch) bool {
	if batch.NeedsReview || !batch.Financials.NetPayable.IsPositive() {
		return true
	}
	return batch.Financials.NetPayable.LessThan(s.cfg.MinNetPayable)
}

// initiatePayout calls the provider and records the transition. The gateway
// keys the transfer on the batch id, so a retried call never double-pays.
func (s *RemittanceServiceImpl) initiatePayout(ctx context.Context, batch *domain.RemittanceBatch) error {
	initiation, err := s.gateway.InitiatePayout(ctx, batch)
	if err != nil {
		return apperror.ErrPayoutProvider(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	matched, err := s.batchRepo.UpdateStatus(ctx, dbTx, batch.ID, domain.BatchStatusDraft, domain.BatchStatusPayoutInitiated, &initiation.PayoutReference)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("update batch status: %w", err))
	}
	if !matched {
		// A concurrent initiator already moved the batch out of draft. The
		// gateway keys transfers on the batch id, so no money moved twice.
		current := string(domain.BatchStatusPayoutInitiated)
		if latest, gerr := s.batchRepo.GetByID(ctx, batch.ID); gerr == nil && latest != nil {
			current = string(latest.Status)
		}
		return apperror.ErrInvalidBatchState(current, string(domain.BatchStatusDraft))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	batch.Status = domain.BatchStatusPayoutInitiated
	batch.PayoutReference = &initiation.PayoutReference
	batch.UpdatedAt = time.Now().UTC()

	s.log.Info().
		Str("batch_id", batch.ID.String()).
		Str("payout_reference", initiation.PayoutReference).
		Msg("payout initiated")

	return nil
}
