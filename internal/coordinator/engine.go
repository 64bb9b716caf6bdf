// Package coordinator drives a trip planning session: it reacts to user and
// device events, issues lookups and route queries, and commits their results
// to the trip store while discarding responses that were superseded.
package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/trip"
	"github.com/UnknownOlympus/voyage/internal/viewport"
	"github.com/go-playground/validator/v10"
)

// Lookup resolves text to places and points to names.
type Lookup interface {
	SearchByText(ctx context.Context, query string) ([]models.Place, error)
	ReverseLookup(ctx context.Context, point models.GeoPoint) (string, error)
}

// RouteQuerier computes a route between two points.
type RouteQuerier interface {
	ComputeRoute(ctx context.Context, start, destination models.GeoPoint) (models.Route, error)
}

// Locator reports the device position once per session.
type Locator interface {
	Locate(ctx context.Context) (models.GeoPoint, error)
}

// Submitter hands a built order to the notification channel.
type Submitter interface {
	Submit(ctx context.Context, order models.TripOrder) error
}

// PlanCatalog resolves pricing plans by id.
type PlanCatalog interface {
	Plan(id string) (models.PricingPlan, bool)
}

// Surface is the map display the engine renders to.
type Surface interface {
	Render(frame Frame)
	Notify(notice Notice)
}

// Frame is everything a surface needs to draw one committed snapshot.
type Frame struct {
	State    trip.State
	Viewport viewport.Viewport
	Price    float64
	HasPrice bool
}

// Deps groups the collaborators of an Engine.
type Deps struct {
	Lookup      Lookup
	Router      RouteQuerier
	Locator     Locator // optional, nil skips geolocation
	Submitter   Submitter
	Catalog     PlanCatalog
	Surface     Surface
	Fitter      *viewport.Fitter
	Metrics     *metrics.Metrics
	PhoneRegion string
	Logger      *slog.Logger
	Now         func() time.Time
}

// Engine is the coordination state machine. Public methods may be called from
// any goroutine; asynchronous work is tracked and can be awaited with Wait.
type Engine struct {
	store    *trip.Store
	lookup   Lookup
	router   RouteQuerier
	locator  Locator
	submit   Submitter
	catalog  PlanCatalog
	surface  Surface
	fitter   *viewport.Fitter
	metrics  *metrics.Metrics
	validate *validator.Validate
	region   string
	log      *slog.Logger
	now      func() time.Time

	wg sync.WaitGroup
}

// NewEngine creates an engine over a fresh store and subscribes the surface to it.
func NewEngine(deps Deps) *Engine {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	e := &Engine{
		store:    trip.NewStore(),
		lookup:   deps.Lookup,
		router:   deps.Router,
		locator:  deps.Locator,
		submit:   deps.Submitter,
		catalog:  deps.Catalog,
		surface:  deps.Surface,
		fitter:   deps.Fitter,
		metrics:  deps.Metrics,
		validate: validator.New(),
		region:   deps.PhoneRegion,
		log:      deps.Logger,
		now:      now,
	}

	e.store.Subscribe(func(s trip.State) {
		e.surface.Render(e.frame(s))
	})

	return e
}

// Start renders the initial frame and fires the one-shot geolocation request.
func (e *Engine) Start(ctx context.Context) {
	e.surface.Render(e.frame(e.store.Snapshot()))

	if e.locator == nil {
		return
	}

	e.spawn(func() {
		point, err := e.locator.Locate(ctx)
		if err != nil {
			e.log.InfoContext(ctx, "Geolocation unavailable", "error", err)
			e.apply(ctx, geolocationFailed)
			return
		}

		e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
			return geolocationResolved(s, point)
		})
	})
}

// Search updates the query of a field's search box.
func (e *Engine) Search(ctx context.Context, field trip.Field, query string) {
	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return searchChanged(s, field, query)
	})
}

// SelectSuggestion applies the index-th suggestion of the field's search box.
func (e *Engine) SelectSuggestion(ctx context.Context, field trip.Field, index int) error {
	var err error
	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		results := s.Search(field).Results
		if index < 0 || index >= len(results) {
			err = ErrNoSuggestion
			return s, nil, false
		}

		return placeSelected(s, field, results[index])
	})

	return err
}

// SelectPlace sets an endpoint to a search candidate.
func (e *Engine) SelectPlace(ctx context.Context, field trip.Field, place models.Place) error {
	if err := place.Point.Validate(); err != nil {
		return err
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return placeSelected(s, field, place)
	})

	return nil
}

// ClickMap moves the destination to the clicked point.
func (e *Engine) ClickMap(ctx context.Context, point models.GeoPoint) error {
	return e.DragMarker(ctx, trip.FieldDestination, point)
}

// DragMarker moves an endpoint to the position where its marker was released.
func (e *Engine) DragMarker(ctx context.Context, field trip.Field, point models.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return pointPlaced(s, field, point)
	})

	return nil
}

// Swap exchanges the start and the destination.
func (e *Engine) Swap(ctx context.Context) error {
	var err error
	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		if s.Destination.Status == trip.Unset {
			err = ErrDestinationUnset
		}

		return swapped(s)
	})

	return err
}

// SelectPlan selects a pricing plan from the catalog.
func (e *Engine) SelectPlan(ctx context.Context, id string) error {
	plan, ok := e.catalog.Plan(id)
	if !ok {
		return ErrUnknownPlan
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return planSelected(s, plan)
	})

	return nil
}

// Submit validates the trip and the form, hands the order to the submitter
// and resets the session. The user is told the order was accepted whatever
// the submitter reports later.
func (e *Engine) Submit(ctx context.Context, form OrderForm) (models.TripOrder, error) {
	form = form.normalized(e.region)
	if err := validateForm(e.validate, form); err != nil {
		return models.TripOrder{}, err
	}

	var (
		order     models.TripOrder
		rejection error
	)
	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		if s.Submitting {
			rejection = ErrSubmissionInProgress
			return s, nil, false
		}

		built, err := buildOrder(s, form, e.now())
		if err != nil {
			rejection = err
			return s, nil, false
		}
		order = built

		return orderSubmitted(s, order)
	})

	if rejection != nil {
		return models.TripOrder{}, rejection
	}

	return order, nil
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() trip.State {
	return e.store.Snapshot()
}

// Frame returns the frame for the current state.
func (e *Engine) Frame() Frame {
	return e.frame(e.store.Snapshot())
}

// Wait blocks until every asynchronous request issued so far, and the ones
// they issued in turn, has completed.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) frame(s trip.State) Frame {
	price, ok := Price(s)

	return Frame{
		State:    s,
		Viewport: e.fitter.Fit(s.Start.Location.Point, s.Destination.Location.Point, s.Route.Geometry),
		Price:    price,
		HasPrice: ok,
	}
}

// apply commits a transition and runs the commands it produced.
func (e *Engine) apply(ctx context.Context, t transition) {
	var cmds []command
	e.store.Update(func(s trip.State) (trip.State, bool) {
		next, out, changed := t(s)
		cmds = out
		return next, changed
	})

	e.execute(ctx, cmds)
}

func (e *Engine) execute(ctx context.Context, cmds []command) {
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case searchCmd:
			e.spawn(func() { e.runSearch(ctx, c) })
		case reverseCmd:
			e.spawn(func() { e.runReverse(ctx, c) })
		case routeCmd:
			e.spawn(func() { e.runRoute(ctx, c) })
		case submitCmd:
			e.spawn(func() { e.runSubmit(ctx, c) })
		case noticeCmd:
			e.surface.Notify(Notice(c))
		case staleCmd:
			e.metrics.StaleResponses.WithLabelValues(c.channel).Inc()
			e.log.DebugContext(ctx, "Discarded superseded response", "channel", c.channel)
		default:
			e.log.ErrorContext(ctx, "Unknown command", "command", cmd)
		}
	}
}

func (e *Engine) spawn(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

func (e *Engine) runSearch(ctx context.Context, c searchCmd) {
	places, err := e.lookup.SearchByText(ctx, c.query)
	if err != nil {
		e.log.WarnContext(ctx, "Search failed", "field", c.field, "query", c.query, "error", err)
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return searchCompleted(s, c.field, c.seq, places)
	})
}

func (e *Engine) runReverse(ctx context.Context, c reverseCmd) {
	name, err := e.lookup.ReverseLookup(ctx, c.point)
	if err != nil {
		e.log.WarnContext(ctx, "Reverse lookup failed, falling back to coordinates",
			"field", c.field,
			"point", c.point.Label(),
			"error", err)
		name = ""
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return reverseCompleted(s, c.field, c.seq, name)
	})
}

func (e *Engine) runRoute(ctx context.Context, c routeCmd) {
	route, err := e.router.ComputeRoute(ctx, c.start, c.destination)
	if err != nil {
		e.log.WarnContext(ctx, "Route query failed", "seq", c.seq, "error", err)
	}

	e.apply(ctx, func(s trip.State) (trip.State, []command, bool) {
		return routeCompleted(s, c.seq, route, err)
	})
}

func (e *Engine) runSubmit(ctx context.Context, c submitCmd) {
	// The session is already reset, the submission must outlive the caller's request.
	if err := e.submit.Submit(context.WithoutCancel(ctx), c.order); err != nil {
		e.log.ErrorContext(ctx, "Order submission failed", "order_id", c.order.ID, "error", err)
	}

	e.apply(ctx, submissionFinished)
}
