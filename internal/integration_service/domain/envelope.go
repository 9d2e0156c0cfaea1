package domain

// Source tags identify where an envelope's payload came from.
const (
	SourceMock       = "mock"
	SourceLocal      = "local"
	SourceArventoAPI = "arvento_api"
	SourceKabisAPI   = "kabis_api"
)

// Envelope is the normalized result of every integration operation: a
// JSON-serializable map with a "success" boolean, usually a "source" tag, and
// provider-specific payload fields. Adapters never return a Go error across
// their public boundary; failures are converted into envelopes.
type Envelope map[string]any

// OK builds a success envelope tagged with the given source.
func OK(source string) Envelope {
	return Envelope{"success": true, "source": source}
}

// Fail builds an error envelope with a descriptive message.
func Fail(errMsg string) Envelope {
	return Envelope{"success": false, "error": errMsg}
}

// With adds a key/value pair and returns the envelope for chaining.
func (e Envelope) With(key string, value any) Envelope {
	e[key] = value
	return e
}

// Success reports the envelope's success flag.
func (e Envelope) Success() bool {
	ok, _ := e["success"].(bool)
	return ok
}

// Source returns the envelope's source tag, or "" when untagged.
func (e Envelope) Source() string {
	s, _ := e["source"].(string)
	return s
}
