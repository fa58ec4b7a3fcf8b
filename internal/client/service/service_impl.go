package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/billing"
	"github.com/suitedesk/suitedesk/internal/civil"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/config"
	"github.com/suitedesk/suitedesk/pkg/db/option"
	"github.com/suitedesk/suitedesk/pkg/db/pagination"
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
	Settings *config.BillingSettingsHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	settings   *config.BillingSettingsHolder
	clientrepo repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) clientdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("client.service"),

		genID:      p.GenID,
		settings:   p.Settings,
		clientrepo: repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req clientdomain.ListClientsRequest) (clientdomain.ListClientsResponse, error) {
	filter := &clientdomain.Client{}
	if req.Status != "" {
		filter.Status = clientdomain.ClientStatus(req.Status)
	}

	limit := req.PageSize
	if limit < 1 {
		limit = 20
	}

	// Fetch one extra row to learn whether another page exists.
	opts := []option.QueryOption{
		option.WithOrderBy("id ASC"),
		option.WithLimit(limit + 1),
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return clientdomain.ListClientsResponse{}, clientdomain.ErrInvalidPageToken
		}
		afterID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return clientdomain.ListClientsResponse{}, clientdomain.ErrInvalidPageToken
		}
		opts = append(opts, option.WithWhere("id > ?", afterID))
	}

	rows, err := s.clientrepo.Find(ctx, filter, opts...)
	if err != nil {
		return clientdomain.ListClientsResponse{}, err
	}

	rows, pageInfo := pagination.BuildCursorPageInfo(rows, limit, func(row *clientdomain.Client) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: row.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	clients := make([]clientdomain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, *row)
	}
	return clientdomain.ListClientsResponse{PageInfo: pageInfo, Clients: clients}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (clientdomain.Client, error) {
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

func (s *Service) Create(ctx context.Context, req clientdomain.CreateClientRequest) (clientdomain.Client, error) {
	row, err := s.build(req)
	if err != nil {
		return clientdomain.Client{}, err
	}

	if err := s.clientrepo.Create(ctx, row); err != nil {
		return clientdomain.Client{}, err
	}
	return *row, nil
}

// BulkCreate imports many clients atomically. The whole batch shares one
// transaction with a generous timeout so a large spreadsheet import does not
// time out mid-batch and leave rows half committed.
func (s *Service) BulkCreate(ctx context.Context, reqs []clientdomain.CreateClientRequest) ([]clientdomain.Client, error) {
	rows := make([]*clientdomain.Client, 0, len(reqs))
	for i, req := range reqs {
		row, err := s.build(req)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	timeout := time.Duration(s.settings.Get().BulkTimeoutSeconds) * time.Second
	txCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		return s.clientrepo.WithTrx(tx).BatchCreate(txCtx, rows)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bulk client import committed", zap.Int("count", len(rows)))

	clients := make([]clientdomain.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, *row)
	}
	return clients, nil
}

func (s *Service) Update(ctx context.Context, id string, req clientdomain.UpdateClientRequest) (clientdomain.Client, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return clientdomain.Client{}, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Email != nil {
		existing.Email = *req.Email
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.Address != nil {
		existing.Address = *req.Address
	}
	if req.TIN != nil {
		existing.TIN = *req.TIN
	}
	if req.RentalRate != nil {
		existing.RentalRate = *req.RentalRate
	}
	if req.VATInclusive != nil {
		existing.VATInclusive = *req.VATInclusive
	}
	if req.BillingTerms != nil {
		existing.BillingTerms = billing.ParseCadence(*req.BillingTerms)
	}
	if req.CustomBillingTerms != nil {
		existing.CustomBillingTerms = *req.CustomBillingTerms
	}
	if req.StartDate != nil {
		start, err := civil.ParseDate(*req.StartDate)
		if err != nil {
			return clientdomain.Client{}, clientdomain.ErrInvalidDateRange
		}
		existing.StartDate = start.Time()
	}
	if req.EndDate != nil {
		end, err := civil.ParseDate(*req.EndDate)
		if err != nil {
			return clientdomain.Client{}, clientdomain.ErrInvalidDateRange
		}
		existing.EndDate = end.Time()
	}
	if req.Status != nil {
		existing.Status = clientdomain.ClientStatus(*req.Status)
	}

	if existing.EndOn().Before(existing.StartOn()) {
		return clientdomain.Client{}, clientdomain.ErrInvalidDateRange
	}

	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return clientdomain.Client{}, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.clientrepo.Delete(ctx, id)
}

func (s *Service) build(req clientdomain.CreateClientRequest) (*clientdomain.Client, error) {
	start, err := civil.ParseDate(req.StartDate)
	if err != nil {
		return nil, clientdomain.ErrInvalidDateRange
	}
	end, err := civil.ParseDate(req.EndDate)
	if err != nil {
		return nil, clientdomain.ErrInvalidDateRange
	}
	if end.Before(start) {
		return nil, clientdomain.ErrInvalidDateRange
	}

	terms := billing.CadenceMonthly
	if strings.TrimSpace(req.BillingTerms) != "" {
		terms = billing.ParseCadence(req.BillingTerms)
	}

	return &clientdomain.Client{
		ID:                 s.genID.Generate(),
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		TIN:                req.TIN,
		RentalRate:         req.RentalRate,
		VATInclusive:       req.VATInclusive,
		BillingTerms:       terms,
		CustomBillingTerms: req.CustomBillingTerms,
		StartDate:          start.Time(),
		EndDate:            end.Time(),
		Status:             clientdomain.ClientStatusActive,
	}, nil
}
