package fetch

// StatusUndefined is reported when no HTTP status could be obtained:
// malformed endpoint URLs and status codes outside 100-599.
const StatusUndefined = 999

// Result is the outcome of one exchange. Payload is nil unless the response
// was 2xx and the body decoded as T.
type Result[T any] struct {
	StatusCode int
	Payload    *T
}

// OK reports whether the status is in the 2xx class.
func (r *Result[T]) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Message returns the human-readable classification of the status code.
func (r *Result[T]) Message() string {
	return Classify(r.StatusCode)
}

// Classify maps a status code to its class description.
func Classify(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "Informational"
	case code >= 200 && code < 300:
		return "Success"
	case code >= 300 && code < 400:
		return "Redirected"
	case code >= 400 && code < 500:
		return "Client error"
	case code >= 500 && code < 600:
		return "Server error"
	default:
		return "Undefined error"
	}
}
