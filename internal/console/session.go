package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/voyage/internal/coordinator"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/trip"
	"github.com/olekukonko/tablewriter"
)

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

// ErrUsage is returned for malformed commands.
var ErrUsage = errors.New("invalid command")

// Controller is the part of the coordination engine driven by the console.
type Controller interface {
	Search(ctx context.Context, field trip.Field, query string)
	SelectSuggestion(ctx context.Context, field trip.Field, index int) error
	ClickMap(ctx context.Context, point models.GeoPoint) error
	DragMarker(ctx context.Context, field trip.Field, point models.GeoPoint) error
	Swap(ctx context.Context) error
	SelectPlan(ctx context.Context, id string) error
	Submit(ctx context.Context, form coordinator.OrderForm) (models.TripOrder, error)
	Frame() coordinator.Frame
	Wait()
}

const helpText = `Команды:
  from <текст>              поиск точки отправления
  to <текст>                поиск пункта назначения
  pick from|to <N>          выбрать N-й вариант из списка
  click <lon> <lat>         указать пункт назначения на карте
  drag from|to <lon> <lat>  перетащить маркер
  swap                      поменять точки местами
  plans                     список тарифов
  plan <id>                 выбрать тариф
  order <имя>; <телефон>; <ГГГГ-ММ-ДД ЧЧ:ММ>
  show                      текущее состояние
  quit                      выход`

// scheduleLayouts are the accepted formats of the order time.
var scheduleLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339}

// Session reads commands line by line and drives a Controller.
type Session struct {
	ctl      Controller
	plans    []models.PricingPlan
	out      io.Writer
	location *time.Location
}

// NewSession creates an interpreter. Order times without a zone are read in location.
func NewSession(ctl Controller, plans []models.PricingPlan, out io.Writer, location *time.Location) *Session {
	if location == nil {
		location = time.Local
	}

	return &Session{ctl: ctl, plans: plans, out: out, location: location}
}

// Run executes commands from in until EOF, quit or context cancellation.
// Command errors are printed and do not stop the session.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, helpText)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("failed to read commands: %w", err)
				}
				return nil
			}

			err := s.Execute(ctx, line)
			switch {
			case errors.Is(err, ErrQuit):
				return nil
			case err != nil:
				fmt.Fprintf(s.out, "Ошибка: %v\n", err)
			}
		}
	}
}

// Execute runs a single command line and waits for the requests it issued.
// State changes reach the output through the surface.
func (s *Session) Execute(ctx context.Context, line string) error {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	var err error
	switch strings.ToLower(name) {
	case "":
		return nil
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "quit", "exit":
		return ErrQuit
	case "from", "to":
		field, _ := parseField(name)
		s.ctl.Search(ctx, field, args)
		s.ctl.Wait()
		return s.printSuggestions(field)
	case "pick":
		err = s.pick(ctx, args)
	case "click":
		var point models.GeoPoint
		if point, err = parsePoint(strings.Fields(args)); err == nil {
			err = s.ctl.ClickMap(ctx, point)
		}
	case "drag":
		err = s.drag(ctx, args)
	case "swap":
		err = s.ctl.Swap(ctx)
	case "plans":
		return s.printPlans()
	case "plan":
		err = s.ctl.SelectPlan(ctx, args)
	case "order":
		err = s.order(ctx, args)
	case "show":
		fmt.Fprintln(s.out, FormatFrame(s.ctl.Frame()))
		return nil
	default:
		return fmt.Errorf("%w: %q, введите help", ErrUsage, name)
	}

	if err != nil {
		return err
	}

	s.ctl.Wait()

	return nil
}

func (s *Session) pick(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return fmt.Errorf("%w: pick from|to <N>", ErrUsage)
	}

	field, ok := parseField(fields[0])
	if !ok {
		return fmt.Errorf("%w: unknown endpoint %q", ErrUsage, fields[0])
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return s.ctl.SelectSuggestion(ctx, field, n-1)
}

func (s *Session) drag(ctx context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return fmt.Errorf("%w: drag from|to <lon> <lat>", ErrUsage)
	}

	field, ok := parseField(fields[0])
	if !ok {
		return fmt.Errorf("%w: unknown endpoint %q", ErrUsage, fields[0])
	}

	point, err := parsePoint(fields[1:])
	if err != nil {
		return err
	}

	return s.ctl.DragMarker(ctx, field, point)
}

func (s *Session) order(ctx context.Context, args string) error {
	parts := strings.Split(args, ";")
	if len(parts) != 3 {
		return fmt.Errorf("%w: order <имя>; <телефон>; <время>", ErrUsage)
	}

	form := coordinator.OrderForm{
		CustomerName:  strings.TrimSpace(parts[0]),
		CustomerPhone: strings.TrimSpace(parts[1]),
	}

	if when := strings.TrimSpace(parts[2]); when != "" {
		scheduled, err := s.parseSchedule(when)
		if err != nil {
			return err
		}
		form.ScheduledAt = scheduled
	}

	order, err := s.ctl.Submit(ctx, form)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Заказ %s: %s → %s, %s\n",
		order.ID, order.Start.DisplayName, order.Destination.DisplayName, order.Plan.Name)

	return nil
}

func (s *Session) parseSchedule(value string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.ParseInLocation(layout, value, s.location); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised time %q", ErrUsage, value)
}

func (s *Session) printSuggestions(field trip.Field) error {
	box := s.ctl.Frame().State.Search(field)
	if len([]rune(box.Query)) < 3 {
		return nil
	}

	if len(box.Results) == 0 {
		fmt.Fprintln(s.out, "Нет вариантов")
		return nil
	}

	table := tablewriter.NewWriter(s.out)
	table.Header("#", "Адрес", "Координаты")
	for i, place := range box.Results {
		if err := table.Append([]string{strconv.Itoa(i + 1), place.DisplayName, place.Point.Label()}); err != nil {
			return fmt.Errorf("failed to render suggestions: %w", err)
		}
	}

	return table.Render()
}

func (s *Session) printPlans() error {
	table := tablewriter.NewWriter(s.out)
	table.Header("ID", "Тариф", "Цена за км", "Машины")
	for _, plan := range s.plans {
		row := []string{plan.ID, plan.Name, strconv.FormatFloat(plan.PricePerKm, 'f', -1, 64), strings.Join(plan.Vehicles, ", ")}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render plans: %w", err)
		}
	}

	return table.Render()
}

func parseField(value string) (trip.Field, bool) {
	switch strings.ToLower(value) {
	case "from", "start", "откуда":
		return trip.FieldStart, true
	case "to", "destination", "dest", "куда":
		return trip.FieldDestination, true
	default:
		return trip.FieldStart, false
	}
}

func parsePoint(fields []string) (models.GeoPoint, error) {
	if len(fields) != 2 {
		return models.GeoPoint{}, fmt.Errorf("%w: expected <lon> <lat>", ErrUsage)
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: bad longitude: %w", ErrUsage, err)
	}

	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("%w: bad latitude: %w", ErrUsage, err)
	}

	return models.NewGeoPoint(lon, lat)
}
