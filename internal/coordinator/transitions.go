package coordinator

import (
	"errors"
	"unicode/utf8"

	"github.com/UnknownOlympus/voyage/internal/geocoding"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/routing"
	"github.com/UnknownOlympus/voyage/internal/trip"
)

// Transitions are pure: they take the current snapshot and return the next
// one, the side effects to run once it is committed, and whether anything
// changed. Asynchronous completions carry the sequence number they were issued
// with and are dropped unless it is still the latest for their field.

// transition is a state change bound to its inputs.
type transition func(trip.State) (trip.State, []command, bool)

// reroute issues a route query when the trip enters RouteReady or an endpoint
// moves while in it, and supersedes a pending query when the trip leaves it.
func reroute(prev, next trip.State) (trip.State, []command) {
	ready := next.RouteReady()

	switch {
	case ready && (!prev.RouteReady() || pointsMoved(prev, next)):
		next.Route.Seq++
		next.Route.Loading = true
		return next, []command{routeCmd{
			seq:         next.Route.Seq,
			start:       *next.Start.Location.Point,
			destination: *next.Destination.Location.Point,
		}}
	case !ready && next.Route.Loading:
		next.Route.Seq++
		next.Route.Loading = false
	}

	return next, nil
}

func pointsMoved(prev, next trip.State) bool {
	return !samePoint(prev.Start.Location.Point, next.Start.Location.Point) ||
		!samePoint(prev.Destination.Location.Point, next.Destination.Location.Point)
}

func samePoint(a, b *models.GeoPoint) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// geolocationResolved sets the start straight to Resolved with a coordinate
// label and backfills the name. It is ignored once the user touched the start.
func geolocationResolved(s trip.State, p models.GeoPoint) (trip.State, []command, bool) {
	if s.StartTouched {
		return s, []command{staleCmd{channel: "geolocation"}}, false
	}

	point := p
	next := s
	next.Geolocated = true
	next.Start = trip.Endpoint{
		Location:  models.NamedLocation{Point: &point, DisplayName: p.Label()},
		Status:    trip.Resolved,
		LookupSeq: s.Start.LookupSeq + 1,
	}

	next, cmds := reroute(s, next)

	return next, append([]command{reverseCmd{field: trip.FieldStart, seq: next.Start.LookupSeq, point: p}}, cmds...), true
}

// geolocationFailed leaves the start unset and asks the user to set it.
func geolocationFailed(s trip.State) (trip.State, []command, bool) {
	return s, []command{noticeCmd{Level: NoticeWarning, Message: msgGeolocationDenied}}, false
}

// searchChanged records the text typed into a field's search box. Every call
// supersedes the previous search; only queries long enough reach the provider.
func searchChanged(s trip.State, f trip.Field, query string) (trip.State, []command, bool) {
	box := s.Search(f)
	box.Seq++
	box.Query = query

	if utf8.RuneCountInString(query) < geocoding.MinQueryLength {
		box.Results = nil
		box.Loading = false
		return s.WithSearch(f, box), nil, true
	}

	box.Loading = true

	return s.WithSearch(f, box), []command{searchCmd{field: f, seq: box.Seq, query: query}}, true
}

func searchCompleted(s trip.State, f trip.Field, seq uint64, places []models.Place) (trip.State, []command, bool) {
	box := s.Search(f)
	if seq != box.Seq {
		return s, []command{staleCmd{channel: "search"}}, false
	}

	box.Loading = false
	box.Results = places

	return s.WithSearch(f, box), nil, true
}

// placeSelected sets point and name of an endpoint together from a search candidate.
func placeSelected(s trip.State, f trip.Field, place models.Place) (trip.State, []command, bool) {
	next := s.WithEndpoint(f, trip.Endpoint{
		Location:  place.Location(),
		Status:    trip.Resolved,
		LookupSeq: s.Endpoint(f).LookupSeq + 1,
	})

	box := next.Search(f)
	box.Seq++
	box.Query = place.DisplayName
	box.Results = nil
	box.Loading = false
	next = next.WithSearch(f, box)

	if f == trip.FieldStart {
		next.StartTouched = true
	}

	next, cmds := reroute(s, next)

	return next, cmds, true
}

// pointPlaced moves an endpoint to a map position (click or marker release)
// and looks its name up. The previous name is shown until the lookup answers.
func pointPlaced(s trip.State, f trip.Field, p models.GeoPoint) (trip.State, []command, bool) {
	current := s.Endpoint(f)
	point := p

	endpoint := trip.Endpoint{
		Location:  models.NamedLocation{Point: &point, DisplayName: current.Location.DisplayName},
		Status:    trip.Resolving,
		LookupSeq: current.LookupSeq + 1,
	}
	next := s.WithEndpoint(f, endpoint)

	if f == trip.FieldStart {
		next.StartTouched = true
	}

	next, cmds := reroute(s, next)

	return next, append([]command{reverseCmd{field: f, seq: endpoint.LookupSeq, point: p}}, cmds...), true
}

// reverseCompleted stores the looked up name and resolves the endpoint. A
// failed lookup falls back to the coordinate label.
func reverseCompleted(s trip.State, f trip.Field, seq uint64, name string) (trip.State, []command, bool) {
	endpoint := s.Endpoint(f)
	if seq != endpoint.LookupSeq || endpoint.Location.Point == nil {
		return s, []command{staleCmd{channel: "reverse"}}, false
	}

	if name == "" {
		name = endpoint.Location.Point.Label()
	}

	endpoint.Location = models.NamedLocation{Point: endpoint.Location.Point, DisplayName: name}
	endpoint.Status = trip.Resolved
	next := s.WithEndpoint(f, endpoint)

	box := next.Search(f)
	box.Query = name
	next = next.WithSearch(f, box)

	next, cmds := reroute(s, next)

	return next, cmds, true
}

// swapped exchanges the endpoints. Sequence counters stay with their field, so
// pending lookups are superseded and re-issued for endpoints still resolving.
func swapped(s trip.State) (trip.State, []command, bool) {
	if s.Destination.Status == trip.Unset {
		return s, []command{noticeCmd{Level: NoticeWarning, Message: msgSwapNoDestination}}, false
	}

	next := s
	next.Start = trip.Endpoint{
		Location:  s.Destination.Location,
		Status:    s.Destination.Status,
		LookupSeq: s.Start.LookupSeq + 1,
	}
	next.Destination = trip.Endpoint{
		Location:  s.Start.Location,
		Status:    s.Start.Status,
		LookupSeq: s.Destination.LookupSeq + 1,
	}
	next.StartTouched = true

	var cmds []command
	for _, f := range []trip.Field{trip.FieldStart, trip.FieldDestination} {
		box := next.Search(f)
		box.Seq++
		box.Query = s.Search(f.Other()).Query
		box.Results = nil
		box.Loading = false
		next = next.WithSearch(f, box)

		if endpoint := next.Endpoint(f); endpoint.Status == trip.Resolving {
			cmds = append(cmds, reverseCmd{field: f, seq: endpoint.LookupSeq, point: *endpoint.Location.Point})
		}
	}

	next, routeCmds := reroute(s, next)

	return next, append(cmds, routeCmds...), true
}

// routeCompleted replaces geometry and metrics wholesale on success. Failures
// only clear the loading flag and keep the previous route.
func routeCompleted(s trip.State, seq uint64, route models.Route, err error) (trip.State, []command, bool) {
	if seq != s.Route.Seq {
		return s, []command{staleCmd{channel: "route"}}, false
	}

	next := s
	next.Route.Loading = false

	switch {
	case err == nil:
		next.Route.Geometry = route.Geometry
		next.Route.Metrics = routing.TripMetrics(route)
	case errors.Is(err, routing.ErrNoRouteFound):
		return next, []command{noticeCmd{Level: NoticeWarning, Message: msgNoRoute}}, true
	default:
		return next, []command{noticeCmd{Level: NoticeWarning, Message: msgRouteUnavailable}}, true
	}

	return next, nil, true
}

func planSelected(s trip.State, plan models.PricingPlan) (trip.State, []command, bool) {
	next := s
	next.Plan = &plan

	return next, nil, true
}

// orderSubmitted starts a fresh session right away. The busy flag stays up
// until the adapter returns.
func orderSubmitted(s trip.State, order models.TripOrder) (trip.State, []command, bool) {
	next := trip.Fresh(s)
	next.Submitting = true

	return next, []command{
		submitCmd{order: order},
		noticeCmd{Level: NoticeSuccess, Message: msgOrderAccepted},
	}, true
}

func submissionFinished(s trip.State) (trip.State, []command, bool) {
	next := s
	next.Submitting = false

	return next, nil, true
}
