package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/civil"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	"github.com/suitedesk/suitedesk/internal/config"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	"github.com/suitedesk/suitedesk/internal/locking"
	"github.com/suitedesk/suitedesk/internal/observability/metrics"
	paymentdomain "github.com/suitedesk/suitedesk/internal/payment/domain"
	"github.com/suitedesk/suitedesk/internal/providers/pdf"
	"github.com/suitedesk/suitedesk/internal/providers/storage"
	"github.com/suitedesk/suitedesk/pkg/db/option"
	"github.com/suitedesk/suitedesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings *config.BillingSettingsHolder

	CompanySvc  companydomain.Service
	ContractSvc contractdomain.Service
	PaymentSvc  paymentdomain.Service

	PDF    pdf.Provider
	Store  storage.Store
	Locker *locking.Locker

	Metrics *metrics.BillingMetrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	clock    clock.Clock
	settings *config.BillingSettingsHolder

	companySvc  companydomain.Service
	contractSvc contractdomain.Service
	paymentSvc  paymentdomain.Service

	pdf     pdf.Provider
	store   storage.Store
	locker  *locking.Locker
	metrics *metrics.BillingMetrics

	invoicerepo repository.Repository[invoicedomain.Invoice]
	clientrepo  repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:    p.GenID,
		clock:    p.Clock,
		settings: p.Settings,

		companySvc:  p.CompanySvc,
		contractSvc: p.ContractSvc,
		paymentSvc:  p.PaymentSvc,

		pdf:     p.PDF,
		store:   p.Store,
		locker:  p.Locker,
		metrics: p.Metrics,

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		clientrepo:  repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoicesRequest) (invoicedomain.ListInvoicesResponse, error) {
	filter := &invoicedomain.Invoice{}
	if req.ClientID != "" {
		parsed, err := snowflake.ParseString(req.ClientID)
		if err != nil {
			return invoicedomain.ListInvoicesResponse{}, clientdomain.ErrClientNotFound
		}
		filter.ClientID = parsed
	}
	if req.Status != "" {
		filter.Status = invoicedomain.InvoiceStatus(req.Status)
	}

	rows, err := s.invoicerepo.Find(ctx, filter, option.WithOrderBy("invoice_number ASC"))
	if err != nil {
		return invoicedomain.ListInvoicesResponse{}, err
	}

	invoices := make([]invoicedomain.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, *row)
	}
	return invoicedomain.ListInvoicesResponse{Invoices: invoices}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: parsed})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if existing == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *existing, nil
}

// UpdateStatus performs an explicit forward-only transition. Settling the
// balance never flips the status on its own; PAID must be requested and is
// refused while anything is still owed.
func (s *Service) UpdateStatus(ctx context.Context, id string, target invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if !existing.Status.CanTransition(target) {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidTransition
	}

	if target == invoicedomain.InvoiceStatusPaid {
		balance, err := s.paymentSvc.Balance(ctx, id)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		if balance > 0 {
			return invoicedomain.Invoice{}, invoicedomain.ErrBalanceOutstanding
		}
	}

	if err := s.invoicerepo.Update(ctx, id, map[string]any{"status": target}); err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.log.Info("invoice status updated",
		zap.String("invoice_number", existing.InvoiceNumber),
		zap.String("from", string(existing.Status)),
		zap.String("to", string(target)),
	)

	existing.Status = target
	return existing, nil
}

// MarkOverdue flags every PENDING/SENT invoice whose due date has passed.
func (s *Service) MarkOverdue(ctx context.Context) (int, error) {
	today := clock.Today(s.clock)

	result := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("status IN ?", []invoicedomain.InvoiceStatus{
			invoicedomain.InvoiceStatusPending,
			invoicedomain.InvoiceStatusSent,
		}).
		Where("due_date < ?", today.Time()).
		Update("status", invoicedomain.InvoiceStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", result.RowsAffected))
	}
	return int(result.RowsAffected), nil
}

// RegenerateDocument re-renders and stores the invoice PDF. Amounts are
// immutable; only file_path changes.
func (s *Service) RegenerateDocument(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	company, err := s.companySvc.Get(ctx)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	owner, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: invoice.ClientID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if owner == nil {
		return invoicedomain.Invoice{}, clientdomain.ErrClientNotFound
	}

	path, err := s.renderDocument(ctx, company, *owner, invoice)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if err := s.invoicerepo.Update(ctx, id, map[string]any{"file_path": path}); err != nil {
		return invoicedomain.Invoice{}, err
	}
	invoice.FilePath = path
	return invoice, nil
}

func (s *Service) BulkDelete(ctx context.Context, req invoicedomain.BulkDeleteRequest) (int, error) {
	ids := make([]snowflake.ID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return 0, invoicedomain.ErrInvoiceNotFound
		}
		ids = append(ids, parsed)
	}

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id IN ?", ids).Delete(&paymentdomain.Payment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&invoicedomain.Invoice{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("invoices bulk deleted", zap.Int64("count", deleted))
	return int(deleted), nil
}

func (s *Service) renderDocument(ctx context.Context, company companydomain.Company, owner clientdomain.Client, invoice invoicedomain.Invoice) (string, error) {
	period := invoice.Period()
	doc := pdf.InvoiceDocument{
		CompanyName:    company.Name,
		CompanyAddress: company.Address,
		CompanyTIN:     company.TIN,
		CompanyEmail:   company.Email,
		CompanyPhone:   company.Phone,
		BankDetails:    company.BankDetails,

		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     civil.DateOf(invoice.CreatedAt.UTC()).String(),
		DueDate:       invoice.DueOn().String(),
		BillingPeriod: fmt.Sprintf("%s to %s", period.Start, period.End),

		ClientName:    owner.Name,
		ClientAddress: owner.Address,
		ClientTIN:     owner.TIN,

		Description: fmt.Sprintf("Virtual office rental, %s to %s", period.Start, period.End),
		BaseAmount:  formatAmount(invoice.Amount),
		VATAmount:   formatAmount(invoice.VATAmount),
		TotalAmount: formatAmount(invoice.TotalAmount),
		NetAmount:   formatAmount(invoice.NetAmount),
	}
	if invoice.HasWithholdingTax {
		doc.Withholding = formatAmount(invoice.WithholdingTax)
	}

	reader, err := s.pdf.RenderInvoice(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("render invoice %s: %w", invoice.InvoiceNumber, err)
	}
	if reader == nil {
		return invoice.FilePath, nil
	}

	path, err := s.store.Save(ctx, storage.InvoicePath(owner.Name, invoice.InvoiceNumber), reader)
	if err != nil {
		return "", fmt.Errorf("store invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return path, nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
