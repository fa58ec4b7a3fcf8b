package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
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
	companyrepo repository.Repository[companydomain.Company]
}

func NewService(p ServiceParam) companydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("company.service"),

		genID:       p.GenID,
		companyrepo: repository.ProvideStore[companydomain.Company](p.DB),
	}
}

func (s *Service) Get(ctx context.Context) (companydomain.Company, error) {
	existing, err := s.companyrepo.FindOne(ctx, &companydomain.Company{})
	if err != nil {
		return companydomain.Company{}, err
	}
	if existing == nil {
		return companydomain.Company{}, companydomain.ErrProfileMissing
	}
	return *existing, nil
}

func (s *Service) Upsert(ctx context.Context, req companydomain.UpdateCompanyRequest) (companydomain.Company, error) {
	existing, err := s.companyrepo.FindOne(ctx, &companydomain.Company{})
	if err != nil {
		return companydomain.Company{}, err
	}

	if existing == nil {
		created := companydomain.Company{
			ID:          s.genID.Generate(),
			Name:        req.Name,
			Address:     req.Address,
			TIN:         req.TIN,
			Email:       req.Email,
			Phone:       req.Phone,
			BankDetails: req.BankDetails,
		}
		if err := s.companyrepo.Create(ctx, &created); err != nil {
			return companydomain.Company{}, err
		}
		s.log.Info("company profile created", zap.String("company_id", created.ID.String()))
		return created, nil
	}

	existing.Name = req.Name
	existing.Address = req.Address
	existing.TIN = req.TIN
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.BankDetails = req.BankDetails
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return companydomain.Company{}, err
	}
	return *existing, nil
}
