package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suitedesk/suitedesk/internal/billing"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	paymentdomain "github.com/suitedesk/suitedesk/internal/payment/domain"
)

func (f *generatorFixture) seedInvoice(t *testing.T, clientID snowflake.ID, number string, due time.Time, status invoicedomain.InvoiceStatus) invoicedomain.Invoice {
	t.Helper()
	row := invoicedomain.Invoice{
		ID:                 f.genID.Generate(),
		InvoiceNumber:      number,
		ClientID:           clientID,
		Amount:             1000,
		VATAmount:          120,
		TotalAmount:        1120,
		NetAmount:          1120,
		BillingPeriodStart: due.AddDate(0, 0, 3),
		BillingPeriodEnd:   due.AddDate(0, 1, 2),
		DueDate:            due,
		Status:             status,
		Metadata:           map[string]any{},
	}
	require.NoError(t, f.db.Create(&row).Error)
	return row
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	f := newGeneratorFixture(t)
	inv := f.seedInvoice(t, 1, "OFC00000219", day(2025, time.February, 26), invoicedomain.InvoiceStatusPending)

	updated, err := f.svc.UpdateStatus(context.Background(), inv.ID.String(), invoicedomain.InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusSent, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), inv.ID.String(), invoicedomain.InvoiceStatusPending)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidTransition)
}

func TestUpdateStatusPaidRequiresSettledBalance(t *testing.T) {
	f := newGeneratorFixture(t)
	inv := f.seedInvoice(t, 1, "OFC00000219", day(2025, time.February, 26), invoicedomain.InvoiceStatusSent)

	require.NoError(t, f.db.Create(&paymentdomain.Payment{
		ID:          f.genID.Generate(),
		InvoiceID:   inv.ID,
		Amount:      500,
		PaymentDate: day(2025, time.March, 1),
	}).Error)

	_, err := f.svc.UpdateStatus(context.Background(), inv.ID.String(), invoicedomain.InvoiceStatusPaid)
	assert.ErrorIs(t, err, invoicedomain.ErrBalanceOutstanding)

	require.NoError(t, f.db.Create(&paymentdomain.Payment{
		ID:          f.genID.Generate(),
		InvoiceID:   inv.ID,
		Amount:      620,
		PaymentDate: day(2025, time.March, 5),
	}).Error)

	updated, err := f.svc.UpdateStatus(context.Background(), inv.ID.String(), invoicedomain.InvoiceStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, updated.Status)
}

func TestMarkOverdueSweepsPastDueOnly(t *testing.T) {
	f := newGeneratorFixture(t)

	// Today is 2025-03-15.
	past := f.seedInvoice(t, 1, "OFC00000219", day(2025, time.February, 26), invoicedomain.InvoiceStatusPending)
	sent := f.seedInvoice(t, 1, "OFC00000220", day(2025, time.March, 1), invoicedomain.InvoiceStatusSent)
	paid := f.seedInvoice(t, 1, "OFC00000221", day(2025, time.January, 1), invoicedomain.InvoiceStatusPaid)
	future := f.seedInvoice(t, 1, "OFC00000222", day(2025, time.April, 27), invoicedomain.InvoiceStatusPending)

	count, err := f.svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, tc := range []struct {
		id   string
		want invoicedomain.InvoiceStatus
	}{
		{past.ID.String(), invoicedomain.InvoiceStatusOverdue},
		{sent.ID.String(), invoicedomain.InvoiceStatusOverdue},
		{paid.ID.String(), invoicedomain.InvoiceStatusPaid},
		{future.ID.String(), invoicedomain.InvoiceStatusPending},
	} {
		got, err := f.svc.GetByID(context.Background(), tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Status)
	}
}

func TestBulkDeleteRemovesInvoicesAndPayments(t *testing.T) {
	f := newGeneratorFixture(t)

	a := f.seedInvoice(t, 1, "OFC00000219", day(2025, time.February, 26), invoicedomain.InvoiceStatusPending)
	b := f.seedInvoice(t, 1, "OFC00000220", day(2025, time.March, 26), invoicedomain.InvoiceStatusPending)
	keep := f.seedInvoice(t, 1, "OFC00000221", day(2025, time.April, 26), invoicedomain.InvoiceStatusPending)

	require.NoError(t, f.db.Create(&paymentdomain.Payment{
		ID:          f.genID.Generate(),
		InvoiceID:   a.ID,
		Amount:      100,
		PaymentDate: day(2025, time.March, 1),
	}).Error)

	count, err := f.svc.BulkDelete(context.Background(), invoicedomain.BulkDeleteRequest{
		InvoiceIDs: []string{a.ID.String(), b.ID.String()},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var invoices, payments int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&invoices).Error)
	require.NoError(t, f.db.Model(&paymentdomain.Payment{}).Count(&payments).Error)
	assert.EqualValues(t, 1, invoices)
	assert.EqualValues(t, 0, payments)

	_, err = f.svc.GetByID(context.Background(), keep.ID.String())
	assert.NoError(t, err)
}

func TestRegenerateDocumentKeepsAmounts(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: target.ID.String(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Invoices)
	original := resp.Invoices[0]

	regenerated, err := f.svc.RegenerateDocument(context.Background(), original.ID.String())
	require.NoError(t, err)

	assert.Equal(t, original.InvoiceNumber, regenerated.InvoiceNumber)
	assert.Equal(t, original.Amount, regenerated.Amount)
	assert.Equal(t, original.TotalAmount, regenerated.TotalAmount)
	assert.Equal(t, original.FilePath, regenerated.FilePath)
	assert.Equal(t, 4, f.renderer.rendered)
}
