// Package trip holds the authoritative trip planning state. State values are
// immutable snapshots; the Store swaps them atomically.
package trip

import (
	"github.com/UnknownOlympus/voyage/internal/models"
)

// Field identifies one of the two trip endpoints.
type Field int

const (
	// FieldStart is the starting point.
	FieldStart Field = iota
	// FieldDestination is the destination point.
	FieldDestination
)

func (f Field) String() string {
	if f == FieldStart {
		return "start"
	}

	return "destination"
}

// Other returns the opposite endpoint.
func (f Field) Other() Field {
	if f == FieldStart {
		return FieldDestination
	}

	return FieldStart
}

// Status is the resolution state of an endpoint.
type Status int

const (
	// Unset means the endpoint has no coordinate.
	Unset Status = iota
	// Resolving means the coordinate is known and its name is being looked up.
	Resolving
	// Resolved means both coordinate and display name are set.
	Resolved
)

func (s Status) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	default:
		return "unset"
	}
}

// Endpoint is the state of one trip endpoint. LookupSeq is the sequence number
// of the latest reverse lookup issued for the field.
type Endpoint struct {
	Location  models.NamedLocation
	Status    Status
	LookupSeq uint64
}

// SearchBox is the autocomplete state of one endpoint's text input.
// Seq is the sequence number of the latest forward search issued for the field.
type SearchBox struct {
	Query   string
	Results []models.Place
	Loading bool
	Seq     uint64
}

// RouteState is the computed route together with the derived metrics.
type RouteState struct {
	Geometry models.RouteGeometry
	Metrics  models.TripMetrics
	Loading  bool
	Seq      uint64 // latest issued route query
}

// State is one immutable snapshot of the planning session.
type State struct {
	Version      uint64
	Start        Endpoint
	Destination  Endpoint
	StartSearch  SearchBox
	DestSearch   SearchBox
	Route        RouteState
	Plan         *models.PricingPlan
	StartTouched bool // the user set the start manually, geolocation must not override it
	Geolocated   bool
	Submitting   bool
}

// Endpoint returns the endpoint for a field.
func (s State) Endpoint(f Field) Endpoint {
	if f == FieldStart {
		return s.Start
	}

	return s.Destination
}

// WithEndpoint returns a copy of the state with the field's endpoint replaced.
func (s State) WithEndpoint(f Field, e Endpoint) State {
	if f == FieldStart {
		s.Start = e
	} else {
		s.Destination = e
	}

	return s
}

// Search returns the search box for a field.
func (s State) Search(f Field) SearchBox {
	if f == FieldStart {
		return s.StartSearch
	}

	return s.DestSearch
}

// WithSearch returns a copy of the state with the field's search box replaced.
func (s State) WithSearch(f Field, b SearchBox) State {
	if f == FieldStart {
		s.StartSearch = b
	} else {
		s.DestSearch = b
	}

	return s
}

// RouteReady reports whether both endpoints are resolved.
func (s State) RouteReady() bool {
	return s.Start.Status == Resolved && s.Destination.Status == Resolved
}

// HasRoute reports whether a route with a positive distance is known.
func (s State) HasRoute() bool {
	return len(s.Route.Geometry) > 0 && s.Route.Metrics.DistanceKm > 0
}

// Fresh returns the initial state of a new planning session. Every sequence
// counter is advanced so responses issued during the previous session are stale.
func Fresh(prev State) State {
	return State{
		Version:     prev.Version,
		Start:       Endpoint{LookupSeq: prev.Start.LookupSeq + 1},
		Destination: Endpoint{LookupSeq: prev.Destination.LookupSeq + 1},
		StartSearch: SearchBox{Seq: prev.StartSearch.Seq + 1},
		DestSearch:  SearchBox{Seq: prev.DestSearch.Seq + 1},
		Route:       RouteState{Seq: prev.Route.Seq + 1},
		Geolocated:  prev.Geolocated,
		Submitting:  prev.Submitting,
	}
}
