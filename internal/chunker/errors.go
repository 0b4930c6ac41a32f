package chunker

import (
	"errors"
	"fmt"

	"github.com/Zachkp/zach-dev-chunker/internal/chunkservice"
)

const (
	msgEmptyInput   = "Please enter some text to chunk."
	msgNotConnected = "Backend is not connected. Please check the server."

	failurePrefix = "Failed to chunk text. "
)

var (
	// ErrSubmitInFlight is returned when Submit or UpdateSettings is called
	// while a request is outstanding. State is left untouched.
	ErrSubmitInFlight = errors.New("chunk request already in flight")
	ErrClosed         = errors.New("chunker view closed")
)

// ValidationError is a precondition failure caught before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// VolumeGuardError rejects an otherwise valid response with too many chunks.
type VolumeGuardError struct {
	NumChunks int
}

func (e *VolumeGuardError) Error() string {
	return fmt.Sprintf("Too many chunks (%d). Try using larger chunk size to reduce processing load.", e.NumChunks)
}

// describe renders err for the user and names its kind for metrics.
func describe(err error) (message, outcome string) {
	var (
		validationErr *ValidationError
		volumeErr     *VolumeGuardError
		timeoutErr    *chunkservice.TimeoutError
		transportErr  *chunkservice.TransportError
		serviceErr    *chunkservice.ServiceError
		formatErr     *chunkservice.FormatError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message, "validation"
	case errors.As(err, &volumeErr):
		return volumeErr.Error(), "volume_guard"
	case errors.As(err, &timeoutErr):
		return failurePrefix + "Request timed out. Try with smaller text.", "timeout"
	case errors.As(err, &formatErr):
		return failurePrefix + "Invalid response format from server", "format"
	case errors.As(err, &serviceErr):
		return failurePrefix + "Server error: " + serviceErr.Message, "service"
	case errors.As(err, &transportErr):
		return failurePrefix + "No response from server. Check if backend is running.", "transport"
	}
	return failurePrefix + err.Error(), "unknown"
}
