package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/civil"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	"github.com/suitedesk/suitedesk/internal/money"
	paymentdomain "github.com/suitedesk/suitedesk/internal/payment/domain"
	"github.com/suitedesk/suitedesk/pkg/db/option"
	"github.com/suitedesk/suitedesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	paymentrepo repository.Repository[paymentdomain.Payment]
	invoicerepo repository.Repository[invoicedomain.Invoice]
}

func NewService(p ServiceParam) paymentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("payment.service"),

		genID:       p.GenID,
		paymentrepo: repository.ProvideStore[paymentdomain.Payment](p.DB),
		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, invoiceID string, req paymentdomain.CreatePaymentRequest) (paymentdomain.Payment, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}

	paidOn, err := civil.ParseDate(req.PaymentDate)
	if err != nil {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidPaymentDate
	}

	created := paymentdomain.Payment{
		ID:            s.genID.Generate(),
		InvoiceID:     invoice.ID,
		Amount:        money.Round2(req.Amount),
		PaymentDate:   paidOn.Time(),
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}
	if err := s.paymentrepo.Create(ctx, &created); err != nil {
		return paymentdomain.Payment{}, err
	}

	s.log.Info("payment recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

func (s *Service) ListByInvoice(ctx context.Context, invoiceID string) (paymentdomain.InvoicePayments, error) {
	invoice, err := s.findInvoice(ctx, invoiceID)
	if err != nil {
		return paymentdomain.InvoicePayments{}, err
	}

	rows, err := s.paymentrepo.Find(ctx,
		&paymentdomain.Payment{InvoiceID: invoice.ID},
		option.WithOrderBy("payment_date ASC"),
	)
	if err != nil {
		return paymentdomain.InvoicePayments{}, err
	}

	payments := make([]paymentdomain.Payment, 0, len(rows))
	total := 0.0
	for _, row := range rows {
		payments = append(payments, *row)
		total += row.Amount
	}

	return paymentdomain.InvoicePayments{
		Payments:  payments,
		TotalPaid: money.Round2(total),
		Balance:   money.Round2(invoice.TotalAmount - total),
	}, nil
}

func (s *Service) Balance(ctx context.Context, invoiceID string) (float64, error) {
	summary, err := s.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	return summary.Balance, nil
}

func (s *Service) findInvoice(ctx context.Context, invoiceID string) (*invoicedomain.Invoice, error) {
	parsed, err := snowflake.ParseString(invoiceID)
	if err != nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	invoice, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: parsed})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}
