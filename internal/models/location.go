package models

// NamedLocation is an endpoint of a trip. A nil Point means the endpoint is unset.
type NamedLocation struct {
	Point       *GeoPoint
	DisplayName string
}

// IsSet reports whether the location has a coordinate.
func (l NamedLocation) IsSet() bool {
	return l.Point != nil
}

// Place is a forward geocoding candidate.
type Place struct {
	ID          string
	Point       GeoPoint
	DisplayName string
}

// Location converts the candidate into a NamedLocation.
func (p Place) Location() NamedLocation {
	point := p.Point
	return NamedLocation{Point: &point, DisplayName: p.DisplayName}
}
