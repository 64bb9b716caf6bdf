// Package catalog loads the static pricing plans.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/spf13/viper"
)

//go:embed plans.yaml
var defaultPlans []byte

// ErrEmptyCatalog is returned when the source defines no plans.
var ErrEmptyCatalog = errors.New("pricing catalog has no plans")

// Catalog is an ordered, read-only list of pricing plans.
type Catalog struct {
	plans []models.PricingPlan
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultPlans)); err != nil {
		return nil, fmt.Errorf("failed to read default catalog: %w", err)
	}

	return fromViper(v)
}

// Load reads the catalog from a file. An empty path falls back to the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Catalog, error) {
	var plans []models.PricingPlan
	if err := v.UnmarshalKey("plans", &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	if len(plans) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(plans))
	for i, plan := range plans {
		if plan.ID == "" {
			return nil, fmt.Errorf("plan #%d has no id", i)
		}
		if plan.PricePerKm < 0 {
			return nil, fmt.Errorf("plan %s has a negative price", plan.ID)
		}
		if _, dup := seen[plan.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %s", plan.ID)
		}
		seen[plan.ID] = struct{}{}
	}

	return &Catalog{plans: plans}, nil
}

// Plans returns the plans in catalog order.
func (c *Catalog) Plans() []models.PricingPlan {
	out := make([]models.PricingPlan, len(c.plans))
	copy(out, c.plans)

	return out
}

// Plan looks a plan up by id or, case-insensitively, by name.
func (c *Catalog) Plan(key string) (models.PricingPlan, bool) {
	for _, plan := range c.plans {
		if plan.ID == key || strings.EqualFold(plan.Name, key) {
			return plan, true
		}
	}

	return models.PricingPlan{}, false
}
