package command

import "errors"

var (
	// ErrActivitiesRequired indicates a live append was invoked without activities.
	ErrActivitiesRequired = errors.New("activityfeed: activities required")
	// ErrMarkerIDRequired indicates an acknowledgement omitted the notification ID.
	ErrMarkerIDRequired = errors.New("activityfeed: marker id required")
	// ErrLiveEventsDisabled indicates live appends are disabled via feature gate.
	ErrLiveEventsDisabled = errors.New("activityfeed: live events disabled")
)
