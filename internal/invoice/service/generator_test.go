package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suitedesk/suitedesk/internal/billing"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	companyservice "github.com/suitedesk/suitedesk/internal/company/service"
	"github.com/suitedesk/suitedesk/internal/config"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	contractservice "github.com/suitedesk/suitedesk/internal/contract/service"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	"github.com/suitedesk/suitedesk/internal/locking"
	"github.com/suitedesk/suitedesk/internal/migration"
	paymentservice "github.com/suitedesk/suitedesk/internal/payment/service"
	"github.com/suitedesk/suitedesk/internal/providers/pdf"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fakeRenderer struct {
	rendered int
	failFor  string
}

func (f *fakeRenderer) RenderInvoice(ctx context.Context, doc pdf.InvoiceDocument) (io.Reader, error) {
	f.rendered++
	if f.failFor != "" && doc.ClientName == f.failFor {
		return nil, errors.New("render engine unavailable")
	}
	return strings.NewReader("%PDF " + doc.InvoiceNumber), nil
}

type memStore struct {
	saved map[string][]byte
}

func (m *memStore) Save(ctx context.Context, relPath string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.saved[relPath] = data
	return relPath, nil
}

type generatorFixture struct {
	svc      invoicedomain.Service
	db       *gorm.DB
	clk      *clock.FakeClock
	genID    *snowflake.Node
	locker   *locking.Locker
	renderer *fakeRenderer
	store    *memStore

	contractSvc contractdomain.Service
}

func newGeneratorFixture(t *testing.T) *generatorFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(migration.Models()...))

	log := zaptest.NewLogger(t)
	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC))
	settings := config.NewStaticBillingSettings(config.DefaultBillingSettings())
	locker := locking.NewLocker(nil)
	renderer := &fakeRenderer{}
	store := &memStore{saved: map[string][]byte{}}

	companySvc := companyservice.NewService(companyservice.ServiceParam{
		DB: db, Log: log, GenID: genID,
	})
	contractSvc := contractservice.NewService(contractservice.ServiceParam{
		DB: db, Log: log, GenID: genID, Clock: clk, Settings: settings,
	})
	paymentSvc := paymentservice.NewService(paymentservice.ServiceParam{
		DB: db, Log: log, GenID: genID,
	})

	svc := NewService(ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       genID,
		Clock:       clk,
		Settings:    settings,
		CompanySvc:  companySvc,
		ContractSvc: contractSvc,
		PaymentSvc:  paymentSvc,
		PDF:         renderer,
		Store:       store,
		Locker:      locker,
	})

	return &generatorFixture{
		svc:         svc,
		db:          db,
		clk:         clk,
		genID:       genID,
		locker:      locker,
		renderer:    renderer,
		store:       store,
		contractSvc: contractSvc,
	}
}

func (f *generatorFixture) seedCompany(t *testing.T) {
	t.Helper()
	require.NoError(t, f.db.Create(&companydomain.Company{
		ID:          f.genID.Generate(),
		Name:        "Prime Workspaces Inc.",
		Address:     "12F Prime Tower, Makati",
		TIN:         "010-222-333-000",
		BankDetails: "BDO 001234567890",
	}).Error)
}

func (f *generatorFixture) seedClient(t *testing.T, name string, rate float64, vatInclusive bool, terms billing.Cadence, start, end time.Time) clientdomain.Client {
	t.Helper()
	row := clientdomain.Client{
		ID:           f.genID.Generate(),
		Name:         name,
		RentalRate:   rate,
		VATInclusive: vatInclusive,
		BillingTerms: terms,
		StartDate:    start,
		EndDate:      end,
		Status:       clientdomain.ClientStatusActive,
		Metadata:     map[string]any{},
	}
	require.NoError(t, f.db.Create(&row).Error)
	return row
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestGenerateSingleClient(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: target.ID.String(),
	})
	require.NoError(t, err)

	// Today is 2025-03-15, so only the Jan, Feb and Mar periods are due.
	require.Len(t, resp.Invoices, 3)
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Success)
	assert.True(t, resp.Results[0].Success)
	assert.Len(t, resp.Results[0].InvoiceIDs, 3)

	first := resp.Invoices[0]
	assert.Equal(t, "OFC00000219", first.InvoiceNumber)
	assert.Equal(t, "OFC00000220", resp.Invoices[1].InvoiceNumber)
	assert.Equal(t, "OFC00000221", resp.Invoices[2].InvoiceNumber)

	assert.Equal(t, 1000.0, first.Amount)
	assert.Equal(t, 120.0, first.VATAmount)
	assert.Equal(t, 1120.0, first.TotalAmount)
	assert.Equal(t, 0.0, first.WithholdingTax)
	assert.Equal(t, 1120.0, first.NetAmount)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, first.Status)

	assert.Equal(t, "2025-01-01", first.Period().Start.String())
	assert.Equal(t, "2025-01-31", first.Period().End.String())
	assert.Equal(t, "2024-12-29", first.DueOn().String())

	assert.Equal(t, "invoices/ACME/OFC00000219.pdf", first.FilePath)
	assert.Len(t, f.store.saved, 3)
	assert.Equal(t, 3, f.renderer.rendered)
}

func TestGenerateIsIdempotent(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	req := invoicedomain.GenerateRequest{ClientID: target.ID.String()}

	first, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Invoices, 3)

	second, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, second.Invoices)
	assert.Equal(t, "no new billing periods to invoice", second.Message)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestGenerateAdvancingHorizonAddsPeriods(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	req := invoicedomain.GenerateRequest{ClientID: target.ID.String()}

	first, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.Invoices, 3)

	// Move to 2025-05-15: the April and May periods become due.
	f.clk.Advance(61 * 24 * time.Hour)

	second, err := f.svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, second.Invoices, 2)
	assert.Equal(t, "2025-04-01", second.Invoices[0].Period().Start.String())
	assert.Equal(t, "2025-05-01", second.Invoices[1].Period().Start.String())
}

func TestGenerateIncludeFutureMaterializesFullRange(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 3000, false, billing.CadenceQuarterly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID:      target.ID.String(),
		IncludeFuture: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 4)
	assert.Equal(t, "2025-10-01", resp.Invoices[3].Period().Start.String())
	assert.Equal(t, "2025-12-31", resp.Invoices[3].Period().End.String())
}

func TestGenerateWithholdingAndInclusiveRates(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Beta Works", 1120, true, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.January, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID:          target.ID.String(),
		HasWithholdingTax: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)

	inv := resp.Invoices[0]
	assert.Equal(t, 1000.0, inv.Amount)
	assert.Equal(t, 120.0, inv.VATAmount)
	assert.Equal(t, 1120.0, inv.TotalAmount)
	assert.Equal(t, 50.0, inv.WithholdingTax)
	assert.Equal(t, 1070.0, inv.NetAmount)
	assert.True(t, inv.HasWithholdingTax)
}

func TestGenerateAllClientsIsolatesFailures(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)

	f.seedClient(t, "Alpha Corp", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.March, 31))
	// End before start: billing range resolution fails for this client only.
	f.seedClient(t, "Broken Ltd", 1000, false, billing.CadenceMonthly,
		day(2025, time.June, 1), day(2025, time.January, 1))
	f.seedClient(t, "Carol Trading", 3000, false, billing.CadenceQuarterly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		AllClients:    true,
		IncludeFuture: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.False(t, resp.Success)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "Alpha Corp", resp.Results[0].ClientName)
	assert.Len(t, resp.Results[0].InvoiceIDs, 3)

	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "Broken Ltd", resp.Results[1].ClientName)
	assert.NotEmpty(t, resp.Results[1].Error)

	assert.True(t, resp.Results[2].Success)
	assert.Len(t, resp.Results[2].InvoiceIDs, 4)

	assert.Len(t, resp.Invoices, 7)
}

func TestGenerateRenderFailureRecordedInResult(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	f.renderer.failFor = "Beta Works"

	f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.March, 31))
	f.seedClient(t, "Beta Works", 2000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.March, 31))

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		AllClients: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.False(t, resp.Success)

	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "Acme Trading", resp.Results[0].ClientName)
	assert.Len(t, resp.Results[0].InvoiceIDs, 3)

	// The render failure lands in the batch result, but the invoice rows
	// survive for later document regeneration.
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, "Beta Works", resp.Results[1].ClientName)
	assert.Contains(t, resp.Results[1].Error, "render document")
	assert.Len(t, resp.Results[1].InvoiceIDs, 3)

	require.Len(t, resp.Invoices, 6)
	for _, inv := range resp.Invoices[3:] {
		assert.Empty(t, inv.FilePath)
	}

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.EqualValues(t, 6, count)
	assert.Len(t, f.store.saved, 3)
}

func TestGenerateContractDatesGovern(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	_, err := f.contractSvc.Create(context.Background(), contractdomain.CreateContractRequest{
		ClientID:  target.ID.String(),
		StartDate: "2025-03-01",
		EndDate:   "2025-08-31",
	})
	require.NoError(t, err)

	resp, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID:      target.ID.String(),
		IncludeFuture: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 6)
	assert.Equal(t, "2025-03-01", resp.Invoices[0].Period().Start.String())
	assert.Equal(t, "2025-08-31", resp.Invoices[5].Period().End.String())
}

func TestGenerateRequiresCompanyProfile(t *testing.T) {
	f := newGeneratorFixture(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	_, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: target.ID.String(),
	})
	assert.ErrorIs(t, err, companydomain.ErrProfileMissing)

	var count int64
	require.NoError(t, f.db.Model(&invoicedomain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateRequiresExactlyOneTarget(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)

	_, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{})
	assert.ErrorIs(t, err, invoicedomain.ErrExactlyOneTarget)

	_, err = f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID:   "123",
		AllClients: true,
	})
	assert.ErrorIs(t, err, invoicedomain.ErrExactlyOneTarget)
}

func TestGenerateRejectsMalformedUpToDate(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	_, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: target.ID.String(),
		UpToDate: "03/15/2025",
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidUpToDate)
}

func TestGenerateRefusesConcurrentRuns(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)
	target := f.seedClient(t, "Acme Trading", 1000, false, billing.CadenceMonthly,
		day(2025, time.January, 1), day(2025, time.December, 31))

	token, ok, err := f.locker.TryLock(context.Background(), generationLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer func() {
		require.NoError(t, f.locker.Release(context.Background(), generationLockKey, token))
	}()

	_, err = f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: target.ID.String(),
	})
	assert.True(t, errors.Is(err, invoicedomain.ErrGenerationBusy))
}

func TestGenerateUnknownClient(t *testing.T) {
	f := newGeneratorFixture(t)
	f.seedCompany(t)

	_, err := f.svc.Generate(context.Background(), invoicedomain.GenerateRequest{
		ClientID: "999999999",
	})
	assert.ErrorIs(t, err, clientdomain.ErrClientNotFound)
}
