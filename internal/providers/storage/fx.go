package storage

import (
	"github.com/suitedesk/suitedesk/internal/config"
	"go.uber.org/fx"
)

func newStore(cfg config.Config) Store {
	return NewLocalStore(cfg.StorageRoot)
}

var Module = fx.Module("providers.storage",
	fx.Provide(newStore),
)
