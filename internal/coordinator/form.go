package coordinator

import (
	"fmt"
	"strings"
	"time"

	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/phone"
	"github.com/UnknownOlympus/voyage/internal/trip"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrderForm holds the customer fields entered at submission time.
type OrderForm struct {
	CustomerName  string    `validate:"required"`
	CustomerPhone string    `validate:"required"`
	ScheduledAt   time.Time `validate:"required"`
}

func (f OrderForm) normalized(region string) OrderForm {
	f.CustomerName = strings.TrimSpace(f.CustomerName)
	f.CustomerPhone = phone.NormalizeE164(f.CustomerPhone, region)

	return f
}

func validateForm(v *validator.Validate, form OrderForm) error {
	if err := v.Struct(form); err != nil {
		return fmt.Errorf("%w: %w", ErrIncompleteOrder, err)
	}

	return nil
}

// buildOrder snapshots the trip into an order. Both endpoints must be resolved
// and a plan selected.
func buildOrder(s trip.State, form OrderForm, now time.Time) (models.TripOrder, error) {
	switch {
	case !s.RouteReady():
		return models.TripOrder{}, fmt.Errorf("%w: both endpoints must be set", ErrIncompleteOrder)
	case s.Plan == nil:
		return models.TripOrder{}, fmt.Errorf("%w: no plan selected", ErrIncompleteOrder)
	}

	price, _ := Price(s)

	return models.TripOrder{
		ID:            uuid.New(),
		Start:         s.Start.Location,
		Destination:   s.Destination.Location,
		Plan:          *s.Plan,
		Metrics:       s.Route.Metrics,
		Price:         price,
		CustomerName:  form.CustomerName,
		CustomerPhone: form.CustomerPhone,
		ScheduledAt:   form.ScheduledAt,
		CreatedAt:     now,
	}, nil
}
