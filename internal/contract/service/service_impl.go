package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/suitedesk/suitedesk/internal/civil"
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	"github.com/suitedesk/suitedesk/internal/clock"
	"github.com/suitedesk/suitedesk/internal/config"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	pkgdb "github.com/suitedesk/suitedesk/pkg/db"
	"github.com/suitedesk/suitedesk/pkg/db/option"
	"github.com/suitedesk/suitedesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const allocationRetries = 3

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Settings *config.BillingSettingsHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	clock        clock.Clock
	settings     *config.BillingSettingsHolder
	contractrepo repository.Repository[contractdomain.Contract]
	clientrepo   repository.Repository[clientdomain.Client]
}

func NewService(p ServiceParam) contractdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("contract.service"),

		genID:        p.GenID,
		clock:        p.Clock,
		settings:     p.Settings,
		contractrepo: repository.ProvideStore[contractdomain.Contract](p.DB),
		clientrepo:   repository.ProvideStore[clientdomain.Client](p.DB),
	}
}

func (s *Service) List(ctx context.Context) (contractdomain.ListContractsResponse, error) {
	rows, err := s.contractrepo.Find(ctx, &contractdomain.Contract{}, option.WithOrderBy("contract_number ASC"))
	if err != nil {
		return contractdomain.ListContractsResponse{}, err
	}
	return toResponse(rows), nil
}

func (s *Service) ListByClient(ctx context.Context, clientID string) (contractdomain.ListContractsResponse, error) {
	parsed, err := snowflake.ParseString(clientID)
	if err != nil {
		return contractdomain.ListContractsResponse{}, clientdomain.ErrClientNotFound
	}

	rows, err := s.contractrepo.Find(ctx, &contractdomain.Contract{ClientID: parsed}, option.WithOrderBy("start_date DESC"))
	if err != nil {
		return contractdomain.ListContractsResponse{}, err
	}
	return toResponse(rows), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (contractdomain.Contract, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return contractdomain.Contract{}, contractdomain.ErrContractNotFound
	}

	existing, err := s.contractrepo.FindOne(ctx, &contractdomain.Contract{ID: parsed})
	if err != nil {
		return contractdomain.Contract{}, err
	}
	if existing == nil {
		return contractdomain.Contract{}, contractdomain.ErrContractNotFound
	}
	return *existing, nil
}

func (s *Service) Create(ctx context.Context, req contractdomain.CreateContractRequest) (contractdomain.Contract, error) {
	clientID, err := snowflake.ParseString(req.ClientID)
	if err != nil {
		return contractdomain.Contract{}, clientdomain.ErrClientNotFound
	}
	owner, err := s.clientrepo.FindOne(ctx, &clientdomain.Client{ID: clientID})
	if err != nil {
		return contractdomain.Contract{}, err
	}
	if owner == nil {
		return contractdomain.Contract{}, clientdomain.ErrClientNotFound
	}

	start, err := civil.ParseDate(req.StartDate)
	if err != nil {
		return contractdomain.Contract{}, contractdomain.ErrInvalidDateRange
	}
	end, err := civil.ParseDate(req.EndDate)
	if err != nil {
		return contractdomain.Contract{}, contractdomain.ErrInvalidDateRange
	}
	if end.Before(start) {
		return contractdomain.Contract{}, contractdomain.ErrInvalidDateRange
	}

	year := clock.Today(s.clock).Year

	// The unique index on contract_number backs the allocation: a concurrent
	// insert that claims the same number surfaces as a duplicate-key error
	// and triggers a re-read of the sequence.
	var created contractdomain.Contract
	for attempt := 0; attempt < allocationRetries; attempt++ {
		number, err := s.nextNumber(ctx, year)
		if err != nil {
			return contractdomain.Contract{}, err
		}

		created = contractdomain.Contract{
			ID:             s.genID.Generate(),
			ClientID:       clientID,
			ContractNumber: number,
			StartDate:      start.Time(),
			EndDate:        end.Time(),
			Status:         contractdomain.ContractStatusActive,
			FilePath:       req.FilePath,
		}

		err = s.contractrepo.Create(ctx, &created)
		if err == nil {
			return created, nil
		}
		if !pkgdb.IsDuplicateKeyErr(err) {
			return contractdomain.Contract{}, err
		}
		s.log.Warn("contract number collision, retrying",
			zap.String("contract_number", number),
			zap.Int("attempt", attempt+1),
		)
	}

	return contractdomain.Contract{}, fmt.Errorf("contract number allocation exhausted retries")
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status contractdomain.ContractStatus) (contractdomain.Contract, error) {
	switch status {
	case contractdomain.ContractStatusActive, contractdomain.ContractStatusExpired, contractdomain.ContractStatusTerminated:
	default:
		return contractdomain.Contract{}, contractdomain.ErrInvalidStatus
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return contractdomain.Contract{}, err
	}

	existing.Status = status
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return contractdomain.Contract{}, err
	}
	return existing, nil
}

func (s *Service) LatestActive(ctx context.Context, clientID string) (*contractdomain.Contract, error) {
	parsed, err := snowflake.ParseString(clientID)
	if err != nil {
		return nil, clientdomain.ErrClientNotFound
	}

	return s.contractrepo.FindOne(ctx,
		&contractdomain.Contract{ClientID: parsed, Status: contractdomain.ContractStatusActive},
		option.WithOrderBy("start_date DESC"),
	)
}

// nextNumber produces the next {stem}-{year}-NNN contract number by reading
// the highest number issued this year and incrementing its suffix.
func (s *Service) nextNumber(ctx context.Context, year int) (string, error) {
	stem := s.settings.Get().ContractNumberStem
	prefix := fmt.Sprintf("%s-%d-", stem, year)

	var max string
	err := s.db.WithContext(ctx).
		Model(&contractdomain.Contract{}).
		Select("contract_number").
		Where("contract_number LIKE ?", prefix+"%").
		Order("contract_number DESC").
		Limit(1).
		Scan(&max).Error
	if err != nil {
		return "", err
	}

	next := 1
	if max != "" {
		suffix := strings.TrimPrefix(max, prefix)
		parsed, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("malformed contract number %q: %w", max, err)
		}
		next = parsed + 1
	}

	return fmt.Sprintf("%s%03d", prefix, next), nil
}

func toResponse(rows []*contractdomain.Contract) contractdomain.ListContractsResponse {
	contracts := make([]contractdomain.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, *row)
	}
	return contractdomain.ListContractsResponse{Contracts: contracts}
}
