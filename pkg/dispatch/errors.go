package dispatch

import "errors"

// Sentinel error kinds of the submission pipeline. Callers classify
// failures with errors.Is and map them to user-facing text via
// UserMessage; the wrapped cause is for logs only.
var (
	// ErrNoCapability and ErrEmptyInput are validation failures raised
	// before any network activity.
	ErrNoCapability = errors.New("no capability selected")
	ErrEmptyInput   = errors.New("input is empty")

	// ErrBusy marks a submission attempted while another one is
	// outstanding for the same session. Treated as a no-op upstream.
	ErrBusy = errors.New("a submission is already in progress")

	// ErrTransport covers connection failures and non-2xx statuses.
	ErrTransport = errors.New("transport failure")

	// ErrDecode covers response bodies that do not match the expected
	// shape for the capability's category.
	ErrDecode = errors.New("unexpected response shape")

	// ErrConfiguration marks a capability/category combination unknown
	// to the request builder. Catalog entries are the only source of
	// categories, so this should be unreachable in practice.
	ErrConfiguration = errors.New("capability not supported by dispatch")
)

// genericFailure is the single message shown to users for every failure
// past validation. Raw transport or decode details never leak out.
const genericFailure = "Failed to process request. Please try again."

// UserMessage converts a pipeline error into the text shown to the user.
// Validation errors are specific and actionable; everything else
// collapses into one generic message, matching the error handling policy.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoCapability):
		return "Please select a model first."
	case errors.Is(err, ErrEmptyInput):
		return "Please enter a prompt."
	case errors.Is(err, ErrBusy):
		return "Still processing the previous request."
	default:
		return genericFailure
	}
}

// IsValidation reports whether the error was raised before any network
// call was made.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoCapability) || errors.Is(err, ErrEmptyInput)
}
