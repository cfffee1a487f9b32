package displayinfo

import (
	"errors"
	"fmt"
)

// DisplayNotFoundError: a numeric ID is not in the active display list.
type DisplayNotFoundError struct {
	ID uint32
}

func (e *DisplayNotFoundError) Error() string {
	return fmt.Sprintf("display ID %d not found", e.ID)
}

type PersistentDisplayNotFoundError struct {
	UUID string
}

func (e *PersistentDisplayNotFoundError) Error() string {
	return fmt.Sprintf("display with UUID %s not found", e.UUID)
}

type ModeNotFoundError struct {
	UUID string
	Mode int32
}

func (e *ModeNotFoundError) Error() string {
	return fmt.Sprintf("mode #%d not found for display with UUID %s", e.Mode, e.UUID)
}

type ModesUnavailableError struct {
	UUID string
}

func (e *ModesUnavailableError) Error() string {
	return fmt.Sprintf("could not retrieve modes for display with UUID %s", e.UUID)
}

type CurrentModeUnavailableError struct {
	UUID string
}

func (e *CurrentModeUnavailableError) Error() string {
	return fmt.Sprintf("could not retrieve current mode for display with UUID %s", e.UUID)
}

type BrightnessRangeError struct {
	Percent int
}

func (e *BrightnessRangeError) Error() string {
	return fmt.Sprintf("brightness must be between 0 and 100, got %d", e.Percent)
}

// SetModeError carries the nonzero result code of a mode switch.
type SetModeError struct {
	Code int32
}

func (e *SetModeError) Error() string {
	return fmt.Sprintf("failed to set display mode (error code: %d)", e.Code)
}

// Hint returns a follow-up line to print under err, or "".
func Hint(err error) string {
	var persistent *PersistentDisplayNotFoundError
	var mode *ModeNotFoundError
	switch {
	case errors.As(err, &persistent):
		return "Use 'list' to see available displays and their UUIDs"
	case errors.As(err, &mode):
		return "Use 'list --verbose' to see available modes for this display"
	}
	return ""
}
