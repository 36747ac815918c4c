package apigen

import (
	"time"

	"github.com/google/uuid"
)

// envelopeNow is swappable in tests for deterministic metadata.
var envelopeNow = time.Now

// Meta carries the response metadata attached to every enveloped result.
type Meta struct {
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
	RequestID uuid.UUID `json:"requestId"`
}

// Envelope is the uniform success wrapper emitted by handlers when the
// response-envelope toggle is enabled at generation time.
type Envelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// CountResult shapes count-style payloads. Count and bulk-write results
// share this form so enveloped and bare responses stay consistent.
type CountResult struct {
	Count int64 `json:"count"`
}

// Wrap envelopes a successful payload for the given operation.
func Wrap(operation string, data any) *Envelope {
	return &Envelope{
		Data: data,
		Meta: Meta{
			Operation: operation,
			Timestamp: envelopeNow().UTC(),
			RequestID: uuid.New(),
		},
	}
}

// WrapCount envelopes a count-shaped result. The payload is always
// {count: n}, never a bare number.
func WrapCount(operation string, n int64) *Envelope {
	return Wrap(operation, CountResult{Count: n})
}

// countOf extracts the affected-row count from a client result. Clients
// return the natural form of their driver; anything unrecognized counts
// as zero.
func countOf(res any) int64 {
	switch v := res.(type) {
	case CountResult:
		return v.Count
	case *CountResult:
		if v != nil {
			return v.Count
		}
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case map[string]any:
		if c, ok := v["count"]; ok {
			return countOf(c)
		}
	}
	return 0
}
