package migration

import (
	clientdomain "github.com/suitedesk/suitedesk/internal/client/domain"
	companydomain "github.com/suitedesk/suitedesk/internal/company/domain"
	contractdomain "github.com/suitedesk/suitedesk/internal/contract/domain"
	invoicedomain "github.com/suitedesk/suitedesk/internal/invoice/domain"
	paymentdomain "github.com/suitedesk/suitedesk/internal/payment/domain"
	"github.com/suitedesk/suitedesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models returns every persisted model, in dependency order.
func Models() []any {
	return []any{
		&companydomain.Company{},
		&clientdomain.Client{},
		&contractdomain.Contract{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	}
}

// Migrate brings the schema up to date on startup. Postgres goes through the
// versioned embedded migrations; sqlite and mysql (dev and test databases)
// fall back to gorm's AutoMigrate, which cannot express our partial history
// but matches the declared models exactly.
func Migrate(cfg db.Config, conn *gorm.DB, log *zap.Logger) error {
	if cfg.Type == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		log.Info("applying versioned migrations")
		return RunMigrations(sqlDB)
	}

	log.Info("auto-migrating schema", zap.String("db_type", cfg.Type))
	return conn.AutoMigrate(Models()...)
}

var Module = fx.Module("migration",
	fx.Invoke(Migrate),
)
