package domain

import (
	"fmt"
	"time"
)

// TransportMethod is the closed set of transport categories. Travels use
// every method except self-guided-tour, which is itinerary-only.
type TransportMethod string

const (
	TransportTrain          TransportMethod = "train"
	TransportPlane          TransportMethod = "plane"
	TransportSelfDrive      TransportMethod = "self-drive"
	TransportCoach          TransportMethod = "coach/bus"
	TransportWalkingTour    TransportMethod = "walking-tour"
	TransportLodging        TransportMethod = "lodging"
	TransportSelfGuidedTour TransportMethod = "self-guided-tour"
)

// DefaultReminderThreshold applies to any method without an entry in the
// threshold table, including values that predate the closed enum.
const DefaultReminderThreshold = 1 * time.Hour

// reminderThresholds maps each method to the hours-before-departure window
// in which a countdown is flagged urgent.
var reminderThresholds = map[TransportMethod]time.Duration{
	TransportTrain:          1 * time.Hour,
	TransportPlane:          2 * time.Hour,
	TransportSelfDrive:      1 * time.Hour,
	TransportCoach:          1 * time.Hour,
	TransportWalkingTour:    1 * time.Hour,
	TransportLodging:        1 * time.Hour,
	TransportSelfGuidedTour: 1 * time.Hour,
}

var travelMethods = []TransportMethod{
	TransportTrain,
	TransportPlane,
	TransportSelfDrive,
	TransportCoach,
	TransportWalkingTour,
	TransportLodging,
}

var itineraryMethods = append(travelMethods[:len(travelMethods):len(travelMethods)], TransportSelfGuidedTour)

// TravelTransportMethods lists the methods selectable on a travel.
func TravelTransportMethods() []TransportMethod {
	return travelMethods
}

// ItineraryTransportMethods lists the methods selectable on an itinerary.
func ItineraryTransportMethods() []TransportMethod {
	return itineraryMethods
}

// ParseTransportMethod validates a form value against the closed enum.
// Unknown values are rejected here, at the boundary, rather than silently
// defaulted inside business logic.
func ParseTransportMethod(s string) (TransportMethod, error) {
	m := TransportMethod(s)
	if _, ok := reminderThresholds[m]; !ok {
		return "", fmt.Errorf("unknown transport method %q", s)
	}
	return m, nil
}

// ReminderThreshold returns the urgency window for the method. Unrecognized
// values fall back to DefaultReminderThreshold; this is the one place the
// fallback happens.
func (m TransportMethod) ReminderThreshold() time.Duration {
	if d, ok := reminderThresholds[m]; ok {
		return d
	}
	return DefaultReminderThreshold
}

// NeedsDefaultLocation reports whether the method has no meaningful
// start/end location and should display a fixed placeholder instead.
func (m TransportMethod) NeedsDefaultLocation() bool {
	return m == TransportLodging || m == TransportSelfGuidedTour
}
