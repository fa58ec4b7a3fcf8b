package config

import (
	"github.com/suitedesk/suitedesk/pkg/db"
	"go.uber.org/fx"
)

// Module wires application config and the hot-reloadable billing settings.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewBillingSettingsHolder,
		func(cfg Config) db.Config { return cfg.DB },
	),
)
