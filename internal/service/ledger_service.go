package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	idempotencyTTL = 24 * time.Hour

	// Retry budget for serialization failures and deadlocks. Exhausting it
	// surfaces TransientContention to the caller.
	maxContentionRetries = 3
)

// LedgerServiceImpl implements ports.LedgerService. Every balance change
// rides a single database transaction that pairs the conditional balance
// UPDATE with the ledger entry insert, so the log and the balance can never
// disagree.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	idempCache ports.IdempotencyCache
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		idempCache: idempCache,
		transactor: transactor,
		log:        log,
	}
}

// CreateAccount provisions a wallet for a tenant with a zero balance.
func (s *LedgerServiceImpl) CreateAccount(ctx context.Context, tenantID, currency string) (*domain.WalletAccount, error) {
	if tenantID == "" {
		return nil, apperror.Validation("tenant_id is required")
	}
	if currency == "" {
		return nil, apperror.Validation("currency is required")
	}

	existing, err := s.walletRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check existing account: %w", err))
	}
	if existing != nil {
		return nil, apperror.Validation("wallet account already exists for tenant")
	}

	account := domain.NewWalletAccount(tenantID, currency)
	if err := s.walletRepo.Create(ctx, account); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Str("currency", currency).
		Msg("wallet account created")

	return account, nil
}

// GetBalance returns the current wallet state for a tenant.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, tenantID string) (*domain.WalletAccount, error) {
	account, err := s.walletRepo.GetByTenantID(ctx, tenantID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrAccountNotFound(tenantID)
	}
	return account, nil
}

// Credit adds funds to a tenant's wallet and appends a ledger entry.
// Replaying the same reference returns the original entry.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.LedgerRequest) (*domain.LedgerEntry, error) {
	return s.apply(ctx, domain.DirectionCredit, req)
}

// Debit removes funds from a tenant's wallet, rejecting any amount that
// would take the balance below zero. Replaying the same reference returns
// the original entry.
func (s *LedgerServiceImpl) Debit(ctx context.Context, req ports.LedgerRequest) (*domain.LedgerEntry, error) {
	return s.apply(ctx, domain.DirectionDebit, req)
}

// GetTransactionHistory returns ledger entries for a tenant, newest first.
func (s *LedgerServiceImpl) GetTransactionHistory(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	entries, total, err := s.ledgerRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list ledger entries: %w", err))
	}
	return entries, total, nil
}

func (s *LedgerServiceImpl) apply(ctx context.Context, direction domain.EntryDirection, req ports.LedgerRequest) (*domain.LedgerEntry, error) {
	if err := validateLedgerRequest(req); err != nil {
		return nil, err
	}

	idempKey := domain.LedgerIdempotencyKey(req.TenantID, direction, req.Reference)

	// Layer 1: Redis idempotency check
	cached, err := s.idempCache.Get(ctx, idempKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedEntry(cached)
	}

	// Layer 2: DB idempotency check
	existing, err := s.ledgerRepo.GetByReference(ctx, req.TenantID, direction, req.Reference)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("db idempotency check: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	var entry *domain.LedgerEntry
	for attempt := 1; ; attempt++ {
		entry, err = s.applyOnce(ctx, direction, req)
		if err == nil {
			break
		}
		if isContentionError(err) && attempt < maxContentionRetries {
			s.log.Warn().
				Err(err).
				Int("attempt", attempt).
				Str("tenant_id", req.TenantID).
				Msg("ledger write hit transient contention, retrying")
			continue
		}
		return nil, err
	}

	// Post-process: cache in Redis (best-effort)
	respJSON, err := json.Marshal(entry)
	if err == nil {
		if err := s.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency in redis")
		}
	}

	s.log.Info().
		Str("entry_id", entry.ID.String()).
		Str("tenant_id", req.TenantID).
		Str("direction", string(direction)).
		Str("amount", req.Amount.String()).
		Str("reason", string(req.Reason)).
		Msg("ledger entry applied")

	return entry, nil
}

func (s *LedgerServiceImpl) applyOnce(ctx context.Context, direction domain.EntryDirection, req ports.LedgerRequest) (*domain.LedgerEntry, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	var (
		newBalance decimal.Decimal
		matched    bool
	)
	switch direction {
	case domain.DirectionCredit:
		newBalance, matched, err = s.walletRepo.AddBalance(ctx, dbTx, req.TenantID, req.Amount)
	case domain.DirectionDebit:
		newBalance, matched, err = s.walletRepo.SubtractBalance(ctx, dbTx, req.TenantID, req.Amount)
	default:
		return nil, apperror.Validation("unknown ledger direction")
	}
	if err != nil {
		return nil, s.mapBalanceError(err)
	}
	if !matched {
		// The conditional UPDATE matched nothing: either no active account,
		// or (debit only) the balance guard rejected the amount.
		account, lookupErr := s.walletRepo.GetByTenantID(ctx, req.TenantID)
		if lookupErr != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("disambiguate unmatched update: %w", lookupErr))
		}
		if account == nil || !account.Active {
			return nil, apperror.ErrAccountNotFound(req.TenantID)
		}
		return nil, apperror.ErrInsufficientBalance(req.Amount, account.Balance)
	}

	entry := &domain.LedgerEntry{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		Direction:    direction,
		Amount:       req.Amount,
		Reason:       req.Reason,
		Reference:    req.Reference,
		BalanceAfter: newBalance,
		Actor:        req.Actor,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		if isUniqueViolation(err) {
			// A concurrent call with the same reference won the race. Roll
			// back our balance change and return its entry.
			if rbErr := dbTx.Rollback(ctx); rbErr != nil {
				s.log.Warn().Err(rbErr).Msg("rollback after duplicate reference failed")
			}
			existing, lookupErr := s.ledgerRepo.GetByReference(ctx, req.TenantID, direction, req.Reference)
			if lookupErr != nil {
				return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup winning entry: %w", lookupErr))
			}
			if existing != nil {
				return existing, nil
			}
			return nil, apperror.ErrDuplicateReference(req.Reference.Type, req.Reference.ID)
		}
		return nil, s.mapBalanceError(err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, s.mapBalanceError(err)
	}
	return entry, nil
}

func (s *LedgerServiceImpl) mapBalanceError(err error) error {
	if isContentionError(err) {
		return apperror.ErrTransientContention(err)
	}
	return apperror.ErrDatabaseError(err)
}

func (s *LedgerServiceImpl) unmarshalCachedEntry(data []byte) (*domain.LedgerEntry, error) {
	entry := &domain.LedgerEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached entry: %w", err))
	}
	return entry, nil
}

func validateLedgerRequest(req ports.LedgerRequest) error {
	if req.TenantID == "" {
		return apperror.Validation("tenant_id is required")
	}
	if !req.Amount.IsPositive() {
		return apperror.ErrInvalidAmount("amount must be greater than zero")
	}
	if req.Amount.Exponent() < -2 {
		return apperror.ErrInvalidAmount("amount precision exceeds 2 decimal places")
	}
	if !domain.ValidReason(req.Reason) {
		return apperror.Validation("unknown transaction reason")
	}
	if req.Reference.Type == "" || req.Reference.ID == "" {
		return apperror.Validation("reference type and id are required")
	}
	return nil
}

// isUniqueViolation reports PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isContentionError reports serialization_failure (40001) and
// deadlock_detected (40P01).
func isContentionError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
