package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/billing"
	"github.com/suitedesk/suitedesk/internal/civil"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	"github.com/suitedesk/suitedesk/internal/money"
	"github.com/suitedesk/suitedesk/pkg/db"
	"github.com/suitedesk/suitedesk/pkg/db/option"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	generationLockKey = "suitedesk:billing:generate"
	generationLockTTL = 5 * time.Minute

	// Attempts for the read-increment-insert number allocation. The unique
	// index on invoice_number turns a lost race into a duplicate-key error,
	// which is safe to retry with a fresh read.
	allocateAttempts = 3
)

// Generate materializes invoices for all uninvoiced billing periods of the
// requested target(s). One failing client is reported in its result entry and
// never aborts the rest of the batch.
func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (invoicedomain.GenerateResponse, error) {
	if (req.ClientID != "") == req.AllClients {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrExactlyOneTarget
	}

	horizon := clock.Today(s.clock)
	if req.UpToDate != "" {
		parsed, err := civil.ParseDate(req.UpToDate)
		if err != nil {
			return invoicedomain.GenerateResponse{}, invoicedomain.ErrInvalidUpToDate
		}
		horizon = parsed
	}

	// Company details go on every rendered invoice; refuse to start without
	// them rather than fail halfway through a batch.
	company, err := s.companySvc.Get(ctx)
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}

	token, acquired, err := s.locker.TryLock(ctx, generationLockKey, generationLockTTL)
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}
	if !acquired {
		return invoicedomain.GenerateResponse{}, invoicedomain.ErrGenerationBusy
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), generationLockKey, token); err != nil {
			s.log.Warn("failed to release generation lock", zap.Error(err))
		}
	}()

	targets, err := s.resolveTargets(ctx, req)
	if err != nil {
		return invoicedomain.GenerateResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.GenerationRuns.Inc()
	}

	response := invoicedomain.GenerateResponse{
		Success:  true,
		Invoices: []invoicedomain.Invoice{},
		Results:  make([]invoicedomain.ClientGenerationResult, 0, len(targets)),
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			response.Success = false
			response.Results = append(response.Results, invoicedomain.ClientGenerationResult{
				ClientID:   target.ID.String(),
				ClientName: target.Name,
				Success:    false,
				Error:      err.Error(),
			})
			break
		}

		result, invoices := s.generateForClient(ctx, company, target, horizon, req)
		response.Results = append(response.Results, result)
		response.Invoices = append(response.Invoices, invoices...)
		if !result.Success {
			response.Success = false
		}

		if s.metrics != nil {
			if result.Success {
				s.metrics.InvoicesGenerated.Add(float64(len(invoices)))
			} else {
				s.metrics.GenerationFailures.Inc()
			}
		}
	}

	if len(response.Invoices) == 0 {
		response.Message = "no new billing periods to invoice"
	} else {
		response.Message = fmt.Sprintf("generated %d invoice(s) for %d client(s)",
			len(response.Invoices), len(response.Results))
	}
	return response, nil
}

func (s *Service) resolveTargets(ctx context.Context, req invoicedomain.GenerateRequest) ([]clientdomain.Client, error) {
	if req.ClientID != "" {
		target, err := s.findClient(ctx, req.ClientID)
		if err != nil {
			return nil, err
		}
		return []clientdomain.Client{target}, nil
	}

	rows, err := s.clientrepo.Find(ctx,
		&clientdomain.Client{Status: clientdomain.ClientStatusActive},
		option.WithOrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}

	targets := make([]clientdomain.Client, 0, len(rows))
	for _, row := range rows {
		targets = append(targets, *row)
	}
	return targets, nil
}

func (s *Service) findClient(ctx context.Context, id string) (clientdomain.Client, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return clientdomain.Client{}, clientdomain.ErrClientNotFound
	}
	existing, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: parsed})
	if err != nil {
		return clientdomain.Client{}, err
	}
	if existing == nil {
		return clientdomain.Client{}, clientdomain.ErrClientNotFound
	}
	return *existing, nil
}

// generateForClient runs the engine for one client: resolve the governing
// date range, partition it, drop already-invoiced periods and persist the
// remainder oldest-first.
func (s *Service) generateForClient(
	ctx context.Context,
	company companydomain.Company,
	target clientdomain.Client,
	horizon civil.Date,
	req invoicedomain.GenerateRequest,
) (invoicedomain.ClientGenerationResult, []invoicedomain.Invoice) {
	result := invoicedomain.ClientGenerationResult{
		ClientID:   target.ID.String(),
		ClientName: target.Name,
		Success:    true,
		InvoiceIDs: []string{},
	}

	start, end, err := s.billingRange(ctx, target)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, nil
	}

	months := target.BillingTerms.MonthsOrDefault(s.log.With(
		zap.String("client_id", target.ID.String()),
	))

	// Contract bounds are inclusive; Partition takes an exclusive end.
	candidates := billing.Partition(start, end.AddDays(1), months)

	existing, err := s.invoicedPeriods(ctx, target)
	if err != nil {
		result.Success = false
		result.Error = err.Error()
		return result, nil
	}

	fresh := billing.FilterNew(candidates, existing, horizon, req.IncludeFuture)
	if len(fresh) == 0 {
		return result, nil
	}

	settings := s.settings.Get()
	invoices := make([]invoicedomain.Invoice, 0, len(fresh))

	for _, period := range fresh {
		invoice, err := s.createInvoice(ctx, target, period, settings.DueDateOffsetDays, req.HasWithholdingTax)
		if err != nil {
			result.Success = false
			result.Error = fmt.Sprintf("period %s: %v", period.Key(), err)
			s.log.Error("invoice creation failed",
				zap.String("client_id", target.ID.String()),
				zap.String("period", period.Key()),
				zap.Error(err),
			)
			continue
		}

		if path, err := s.renderDocument(ctx, company, target, invoice); err != nil {
			// The invoice row stays; the document can be recovered later via
			// regeneration. The failure still belongs in the batch result.
			result.Success = false
			result.Error = fmt.Sprintf("invoice %s: render document: %v", invoice.InvoiceNumber, err)
			s.log.Warn("invoice document render failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
		} else if path != "" {
			if err := s.invoicerepo.Update(ctx, invoice.ID.String(), map[string]any{"file_path": path}); err != nil {
				result.Success = false
				result.Error = fmt.Sprintf("invoice %s: store file path: %v", invoice.InvoiceNumber, err)
				s.log.Warn("invoice file path update failed",
					zap.String("invoice_number", invoice.InvoiceNumber),
					zap.Error(err),
				)
			} else {
				invoice.FilePath = path
			}
		}

		result.InvoiceIDs = append(result.InvoiceIDs, invoice.ID.String())
		invoices = append(invoices, invoice)
	}

	return result, invoices
}

// billingRange returns the inclusive date range governing generation: the
// latest active contract when one exists, the client's own dates otherwise.
func (s *Service) billingRange(ctx context.Context, target clientdomain.Client) (civil.Date, civil.Date, error) {
	contract, err := s.contractSvc.LatestActive(ctx, target.ID.String())
	if err != nil {
		return civil.Date{}, civil.Date{}, err
	}
	if contract != nil {
		return contract.StartOn(), contract.EndOn(), nil
	}

	start, end := target.StartOn(), target.EndOn()
	if end.Before(start) {
		return civil.Date{}, civil.Date{}, clientdomain.ErrInvalidDateRange
	}
	return start, end, nil
}

func (s *Service) invoicedPeriods(ctx context.Context, target clientdomain.Client) ([]billing.Period, error) {
	rows, err := s.invoicerepo.Find(ctx, &invoicedomain.Invoice{ClientID: target.ID})
	if err != nil {
		return nil, err
	}

	periods := make([]billing.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, row.Period())
	}
	return periods, nil
}

// createInvoice allocates the next invoice number and inserts the row in one
// transaction. Both unique indexes (number, client+period) surface races as
// duplicate-key errors; a number collision is retried with a fresh read while
// a period collision keeps failing and is reported to the caller.
func (s *Service) createInvoice(
	ctx context.Context,
	target clientdomain.Client,
	period billing.Period,
	dueOffsetDays int,
	hasWithholdingTax bool,
) (invoicedomain.Invoice, error) {
	amounts := money.Compute(target.RentalRate, target.VATInclusive, hasWithholdingTax)
	due := billing.DueDate(period.Start, dueOffsetDays)
	settings := s.settings.Get()

	var created invoicedomain.Invoice
	var lastErr error

	for attempt := 0; attempt < allocateAttempts; attempt++ {
		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var max string
			err := tx.Model(&invoicedomain.Invoice{}).
				Select("COALESCE(MAX(invoice_number), '')").
				Where("invoice_number LIKE ?", settings.InvoiceNumberPrefix+"%").
				Scan(&max).Error
			if err != nil {
				return err
			}

			number, err := NextInvoiceNumber(max, settings.InvoiceNumberPrefix,
				settings.InvoiceNumberWidth, settings.InvoiceNumberSeed)
			if err != nil {
				return err
			}

			created = invoicedomain.Invoice{
				ID:                 s.genID.Generate(),
				InvoiceNumber:      number,
				ClientID:           target.ID,
				Amount:             amounts.Base,
				VATAmount:          amounts.VAT,
				TotalAmount:        amounts.Total,
				WithholdingTax:     amounts.Withholding,
				NetAmount:          amounts.Net,
				HasWithholdingTax:  hasWithholdingTax,
				BillingPeriodStart: period.Start.Time(),
				BillingPeriodEnd:   period.End.Time(),
				DueDate:            due.Time(),
				Status:             invoicedomain.InvoiceStatusPending,
				Metadata:           map[string]any{},
			}
			return s.invoicerepo.WithTrx(tx).Create(ctx, &created)
		})

		if lastErr == nil {
			return created, nil
		}
		if !db.IsDuplicateKeyErr(lastErr) {
			return invoicedomain.Invoice{}, lastErr
		}
	}

	return invoicedomain.Invoice{}, fmt.Errorf("allocate invoice number: %w", lastErr)
}
