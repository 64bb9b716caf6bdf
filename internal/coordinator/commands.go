package coordinator

import (
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/internal/trip"
)

// command is a side effect requested by a transition and executed by the Engine
// after the new state is committed.
type command interface{}

// searchCmd issues a forward lookup tagged with the field's search sequence.
type searchCmd struct {
	field trip.Field
	seq   uint64
	query string
}

// reverseCmd issues a reverse lookup tagged with the field's lookup sequence.
type reverseCmd struct {
	field trip.Field
	seq   uint64
	point models.GeoPoint
}

// routeCmd issues a route query tagged with the route sequence.
type routeCmd struct {
	seq         uint64
	start       models.GeoPoint
	destination models.GeoPoint
}

// submitCmd hands a built order to the submission adapter.
type submitCmd struct {
	order models.TripOrder
}

// noticeCmd shows a message to the user.
type noticeCmd Notice

// staleCmd records a discarded response.
type staleCmd struct {
	channel string
}

// NoticeLevel is the severity of a user-visible message.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	default:
		return "info"
	}
}

// Notice is a user-visible message.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// User-visible messages.
const (
	msgGeolocationDenied = "Не удалось определить ваше местоположение, укажите точку отправления вручную"
	msgSwapNoDestination = "Сначала укажите пункт назначения"
	msgOrderAccepted     = "Спасибо! Ваш заказ принят"
	msgNoRoute           = "Не удалось построить маршрут между выбранными точками"
	msgRouteUnavailable  = "Сервис маршрутов недоступен, попробуйте позже"
)
