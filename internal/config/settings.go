package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingSettings are operational billing knobs an operator may tune without
// redeploying: number sequences, the due-date offset and bulk-import limits.
// Tax rates are deliberately NOT here; they are jurisdiction constants in
// the money package.
type BillingSettings struct {
	InvoiceNumberPrefix string `mapstructure:"invoiceNumberPrefix"`
	InvoiceNumberWidth  int    `mapstructure:"invoiceNumberWidth"`
	InvoiceNumberSeed   int    `mapstructure:"invoiceNumberSeed"`
	ContractNumberStem  string `mapstructure:"contractNumberStem"`
	DueDateOffsetDays   int    `mapstructure:"dueDateOffsetDays"`
	BulkTimeoutSeconds  int    `mapstructure:"bulkTimeoutSeconds"`
}

func DefaultBillingSettings() BillingSettings {
	return BillingSettings{
		InvoiceNumberPrefix: "OFC",
		InvoiceNumberWidth:  8,
		InvoiceNumberSeed:   219,
		ContractNumberStem:  "VO-SA",
		DueDateOffsetDays:   3,
		BulkTimeoutSeconds:  120,
	}
}

// BillingSettingsHolder hot-reloads billing settings from billing.yml.
type BillingSettingsHolder struct {
	current atomic.Value // holds BillingSettings
}

func NewBillingSettingsHolder() (*BillingSettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/suitedesk/config") // Volume-mounted config
	v.AddConfigPath("/etc/suitedesk")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("SUITEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingSettings()
	v.SetDefault("billing.invoiceNumberPrefix", defaults.InvoiceNumberPrefix)
	v.SetDefault("billing.invoiceNumberWidth", defaults.InvoiceNumberWidth)
	v.SetDefault("billing.invoiceNumberSeed", defaults.InvoiceNumberSeed)
	v.SetDefault("billing.contractNumberStem", defaults.ContractNumberStem)
	v.SetDefault("billing.dueDateOffsetDays", defaults.DueDateOffsetDays)
	v.SetDefault("billing.bulkTimeoutSeconds", defaults.BulkTimeoutSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var settings BillingSettings
	if err := v.UnmarshalKey("billing", &settings); err != nil {
		return nil, err
	}
	if err := validateBillingSettings(settings); err != nil {
		return nil, err
	}

	holder := &BillingSettingsHolder{}
	holder.current.Store(settings)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingSettings
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-settings] reload failed: %v", err)
			return
		}
		if err := validateBillingSettings(updated); err != nil {
			log.Printf("[billing-settings] invalid settings ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-settings] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingSettings wraps fixed settings, for tests.
func NewStaticBillingSettings(settings BillingSettings) *BillingSettingsHolder {
	holder := &BillingSettingsHolder{}
	holder.current.Store(settings)
	return holder
}

func (h *BillingSettingsHolder) Get() BillingSettings {
	return h.current.Load().(BillingSettings)
}

func validateBillingSettings(settings BillingSettings) error {
	if strings.TrimSpace(settings.InvoiceNumberPrefix) == "" {
		return errors.New("billing.invoiceNumberPrefix cannot be empty")
	}
	if settings.InvoiceNumberWidth < 1 {
		return errors.New("billing.invoiceNumberWidth must be positive")
	}
	if settings.InvoiceNumberSeed < 0 {
		return errors.New("billing.invoiceNumberSeed cannot be negative")
	}
	if settings.DueDateOffsetDays < 0 {
		return errors.New("billing.dueDateOffsetDays cannot be negative")
	}
	if settings.BulkTimeoutSeconds < 1 {
		return errors.New("billing.bulkTimeoutSeconds must be positive")
	}
	return nil
}
