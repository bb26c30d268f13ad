package serialmux

import (
	"errors"
	"fmt"
	"log"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
)

// ErrSensorError is returned for sFA replies, which the scanner sends when it
// rejects a command.
var ErrSensorError = errors.New("sensor rejected command")

// ReplyRecorder is notified of the outcome of every angle compensation reply.
type ReplyRecorder interface {
	AddAccepted()
	AddRejected()
}

// HandleAngleCompReply decodes an angle compensation reply into comp.
func HandleAngleCompReply(comp *anglecomp.Compensator, binary bool, payload string) error {
	cal, err := comp.ApplyReply(binary, []byte(payload))
	if err != nil {
		return err
	}
	log.Printf("Angle compensation: ampl=%.4f phase=%.4f deg offset=%.4f deg",
		cal.AmplitudeCorrection, cal.PhaseCorrectionDeg, cal.OffsetCorrectionDeg)
	return nil
}

// HandleSensorError wraps an sFA reply in ErrSensorError.
func HandleSensorError(payload string) error {
	return fmt.Errorf("%w: %q", ErrSensorError, payload)
}

// HandleEvent dispatches one unframed reply. rec may be nil.
func HandleEvent(comp *anglecomp.Compensator, rec ReplyRecorder, binary bool, payload string) error {
	switch ClassifyPayload(payload) {
	case EventTypeAngleComp:
		if err := HandleAngleCompReply(comp, binary, payload); err != nil {
			if rec != nil {
				rec.AddRejected()
			}
			return fmt.Errorf("failed to handle angle compensation reply: %w", err)
		}
		if rec != nil {
			rec.AddAccepted()
		}
	case EventTypeSensorError:
		return HandleSensorError(payload)
	case EventTypeEvent:
		log.Printf("Sensor event: %q", payload)
	default:
		log.Printf("unknown event type: %q", payload)
	}
	return nil
}
