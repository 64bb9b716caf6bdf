// Package console is a text map surface and a line based command interpreter
// for running a planning session in a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/UnknownOlympus/voyage/internal/coordinator"
	"github.com/UnknownOlympus/voyage/internal/trip"
	"github.com/UnknownOlympus/voyage/internal/viewport"
	"github.com/paulmach/orb"
)

// Surface prints frames and notices. Identical consecutive frames are printed once.
type Surface struct {
	mu       sync.Mutex
	out      io.Writer
	mercator viewport.Mercator
	last     string
}

// NewSurface creates a surface of the given pixel size writing to out.
func NewSurface(out io.Writer, width, height float64) *Surface {
	return &Surface{
		out:      out,
		mercator: viewport.Mercator{Width: width, Height: height, MaxZoom: 18},
	}
}

// FitZoom reports the zoom a map of the surface size settles on for bounds.
func (s *Surface) FitZoom(bounds orb.Bound, padding float64) float64 {
	return s.mercator.FitZoom(bounds, padding)
}

// Render prints a one line summary of the frame.
func (s *Surface) Render(frame coordinator.Frame) {
	line := FormatFrame(frame)

	s.mu.Lock()
	defer s.mu.Unlock()

	if line == s.last {
		return
	}
	s.last = line

	fmt.Fprintln(s.out, line)
}

// Notify prints a notice.
func (s *Surface) Notify(notice coordinator.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprintf(s.out, "[%s] %s\n", notice.Level, notice.Message)
}

// FormatFrame renders a frame as a single line.
func FormatFrame(frame coordinator.Frame) string {
	s := frame.State
	parts := []string{
		"Откуда: " + endpointText(s.Start, s.StartSearch),
		"Куда: " + endpointText(s.Destination, s.DestSearch),
	}

	switch {
	case s.Route.Loading:
		parts = append(parts, "Загрузка маршрута...")
	case s.HasRoute():
		parts = append(parts, fmt.Sprintf("Маршрут: %.1f км, %s", s.Route.Metrics.DistanceKm, s.Route.Metrics.DurationLabel))
	}

	if s.Plan != nil {
		plan := "Тариф: " + s.Plan.Name
		if frame.HasPrice {
			plan += fmt.Sprintf(" %g ₽", frame.Price)
		}
		parts = append(parts, plan)
	}

	if s.Submitting {
		parts = append(parts, "Отправка заказа...")
	}

	parts = append(parts, fmt.Sprintf("Карта: %s z%.1f", frame.Viewport.Center.Label(), frame.Viewport.Zoom))

	return strings.Join(parts, " | ")
}

func endpointText(e trip.Endpoint, box trip.SearchBox) string {
	var text string
	switch e.Status {
	case trip.Unset:
		text = "-"
	case trip.Resolving:
		text = e.Location.DisplayName
		if text == "" {
			text = e.Location.Point.Label()
		}
		text += " (поиск адреса...)"
	default:
		text = e.Location.DisplayName
	}

	if box.Loading {
		text += " [поиск...]"
	}

	return text
}
