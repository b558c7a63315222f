package scheduler

import (
	"context"
	"errors"
	"time"

	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// runTimeout bounds a full batch sweep across all tenants.
const runTimeout = 10 * time.Minute

// Scheduler drives the automatic remittance batch runs. Each tick sweeps
// every tenant with eligible COD shipments and builds one batch per tenant.
type Scheduler struct {
	cron          *cron.Cron
	shipmentRepo  ports.ShipmentRepository
	remittanceSvc ports.RemittanceService
	schedule      string
	log           zerolog.Logger
}

// New creates a scheduler with the given cron schedule expression
// (e.g. "0 2 * * *" for a daily 02:00 run).
func New(
	shipmentRepo ports.ShipmentRepository,
	remittanceSvc ports.RemittanceService,
	schedule string,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		shipmentRepo:  shipmentRepo,
		remittanceSvc: remittanceSvc,
		schedule:      schedule,
		log:           log,
	}
}

// Start registers the remittance job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runBatchJob); err != nil {
		return err
	}
	s.log.Info().Str("schedule", s.schedule).Msg("remittance batch job scheduled")
	s.cron.Start()
	return nil
}

// Stop stops the cron loop. The returned context is done once any
// in-flight job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runBatchJob() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	s.RunOnce(ctx, time.Now().UTC())
}

// RunOnce executes a single remittance sweep: one CreateBatch call per
// tenant with eligible shipments. A failure for one tenant never blocks
// the others. Losing the claim race to a concurrent builder surfaces as
// REM_001 and is skipped quietly.
func (s *Scheduler) RunOnce(ctx context.Context, asOf time.Time) {
	tenants, err := s.shipmentRepo.ListTenantsWithEligible(ctx, asOf)
	if err != nil {
		s.log.Error().Err(err).Msg("remittance sweep: listing tenants failed")
		return
	}
	if len(tenants) == 0 {
		s.log.Debug().Msg("remittance sweep: nothing to remit")
		return
	}

	s.log.Info().Int("tenants", len(tenants)).Time("as_of", asOf).Msg("remittance sweep started")

	built := 0
	for _, tenantID := range tenants {
		batch, err := s.remittanceSvc.CreateBatch(ctx, tenantID, "scheduler", asOf)
		if err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Code == apperror.CodeNoEligibleShipments {
				continue
			}
			s.log.Error().Err(err).Str("tenant_id", tenantID).Msg("remittance sweep: batch build failed")
			continue
		}

		built++
		s.log.Info().
			Str("tenant_id", tenantID).
			Str("batch_id", batch.ID.String()).
			Str("net_payable", batch.Financials.NetPayable.StringFixed(2)).
			Str("status", string(batch.Status)).
			Msg("remittance sweep: batch built")
	}

	s.log.Info().Int("built", built).Int("tenants", len(tenants)).Msg("remittance sweep finished")
}
