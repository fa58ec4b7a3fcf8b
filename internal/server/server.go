package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suitedesk/suitedesk/internal/client"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	"github.com/suitedesk/suitedesk/internal/company"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	"github.com/suitedesk/suitedesk/internal/config"
	"github.com/suitedesk/suitedesk/internal/contract"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	"github.com/suitedesk/suitedesk/internal/invoice"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	"github.com/suitedesk/suitedesk/internal/locking"
	"github.com/suitedesk/suitedesk/internal/logger"
	"github.com/suitedesk/suitedesk/internal/migration"
	obsmetrics "github.com/suitedesk/suitedesk/internal/observability/metrics"
	"github.com/suitedesk/suitedesk/internal/payment"
	paymentdomain "github.com/suitedesk/suitedesk/internal/payment/domain"
	"github.com/suitedesk/suitedesk/internal/providers/pdf"
	"github.com/suitedesk/suitedesk/internal/providers/storage"
	"github.com/suitedesk/suitedesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	logger.Module,
	clock.Module,
	db.Module,
	migration.Module,
	locking.Module,
	obsmetrics.Module,
	pdf.Module,
	storage.Module,
	company.Module,
	client.Module,
	contract.Module,
	invoice.Module,
	payment.Module,
	fx.Provide(
		newSnowflakeNode,
		registerGin,
	),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogging(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node

	companySvc  companydomain.Service
	clientSvc   clientdomain.Service
	contractSvc contractdomain.Service
	invoiceSvc  invoicedomain.Service
	paymentSvc  paymentdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node

	CompanySvc  companydomain.Service
	ClientSvc   clientdomain.Service
	ContractSvc contractdomain.Service
	InvoiceSvc  invoicedomain.Service
	PaymentSvc  paymentdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("http.server"),
		genID:  p.GenID,

		companySvc:  p.CompanySvc,
		clientSvc:   p.ClientSvc,
		contractSvc: p.ContractSvc,
		invoiceSvc:  p.InvoiceSvc,
		paymentSvc:  p.PaymentSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	// -------- Company profile --------
	api.GET("/company", s.GetCompany)
	api.PUT("/company", s.UpsertCompany)

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.POST("/clients/bulk", s.BulkCreateClients)
	api.GET("/clients/:id", s.GetClientByID)
	api.PUT("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)
	api.GET("/clients/:id/contracts", s.ListClientContracts)

	// -------- Contracts --------
	api.GET("/contracts", s.ListContracts)
	api.POST("/contracts", s.CreateContract)
	api.GET("/contracts/:id", s.GetContractByID)
	api.POST("/contracts/:id/status", s.UpdateContractStatus)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices/generate", s.GenerateInvoices)
	api.POST("/invoices/mark-overdue", s.MarkInvoicesOverdue)
	api.POST("/invoices/bulk-delete", s.BulkDeleteInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/status", s.UpdateInvoiceStatus)
	api.POST("/invoices/:id/regenerate", s.RegenerateInvoiceDocument)

	// -------- Payments --------
	api.GET("/invoices/:id/payments", s.ListInvoicePayments)
	api.POST("/invoices/:id/payments", s.CreatePayment)
}
