package coordinator

import "errors"

// Rejections returned synchronously by the Engine. None of them changes the state.
var (
	ErrIncompleteOrder      = errors.New("order is incomplete")
	ErrSubmissionInProgress = errors.New("an order submission is already in progress")
	ErrUnknownPlan          = errors.New("unknown pricing plan")
	ErrDestinationUnset     = errors.New("destination is not set")
	ErrNoSuggestion         = errors.New("no such suggestion")
)
