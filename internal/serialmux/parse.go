package serialmux

import "strings"

const (
	EventTypeAngleComp   = "angle_comp"
	EventTypeSensorError = "sensor_error"
	EventTypeEvent       = "event"
	EventTypeUnknown     = "unknown"
)

// angleCompCommand names the variable holding the angle compensation
// coefficients.
const angleCompCommand = "MCAngleCompSin"

// ClassifyPayload inspects an unframed reply and returns a simple event type
// token based on its command type and name.
func ClassifyPayload(payload string) string {
	fields := strings.SplitN(payload, " ", 3)
	switch fields[0] {
	case "sRA", "sAN":
		if len(fields) > 1 && fields[1] == angleCompCommand {
			return EventTypeAngleComp
		}
	case "sFA":
		return EventTypeSensorError
	case "sSN", "sEA":
		return EventTypeEvent
	}
	return EventTypeUnknown
}
