package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/abdulachik/sepsisx/internal/poster"
)

// Kind is the outcome class of one invocation.
type Kind int

const (
	KindSuccess Kind = iota
	KindInvalidInput
	KindUpstreamFailure
	KindInternalFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindInvalidInput:
		return "invalid_input"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindInternalFailure:
		return "internal_failure"
	default:
		return "unknown"
	}
}

// StatusCode maps the kind onto the invocation result code.
func (k Kind) StatusCode() int {
	switch k {
	case KindSuccess:
		return http.StatusOK
	case KindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errUpstream marks errors returned by the posting platform.
var errUpstream = errors.New("upstream posting failure")

type upstreamError struct{ err error }

func (e upstreamError) Error() string { return e.err.Error() }
func (e upstreamError) Unwrap() []error {
	return []error{e.err, errUpstream}
}

// Classify maps an error from any pipeline stage to its kind.
func Classify(err error) Kind {
	var apiErr *poster.APIError
	switch {
	case err == nil:
		return KindSuccess
	case errors.Is(err, poster.ErrUnknownPostType):
		return KindInvalidInput
	case errors.Is(err, errUpstream), errors.As(err, &apiErr):
		return KindUpstreamFailure
	default:
		return KindInternalFailure
	}
}

// Event is the invocation payload set on each trigger.
type Event struct {
	PostType string `json:"post_type,omitempty"`

	// raw holds post_type as it appeared in a decoded payload, nil when absent.
	raw json.RawMessage
}

// UnmarshalJSON records whether post_type was present and keeps its raw
// value, so null, "" and non-string values reach the handler and are
// rejected there instead of failing the decode.
func (e *Event) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = Event{}
	raw, ok := fields["post_type"]
	if !ok {
		return nil
	}
	e.raw = raw

	var s string
	if json.Unmarshal(raw, &s) == nil {
		e.PostType = s
	}
	return nil
}

// Requested returns the post_type value for messages: quoted when it is a
// string, raw JSON otherwise.
func (e Event) Requested() string {
	if e.raw == nil || e.isString() {
		return strconv.Quote(e.PostType)
	}
	return string(e.raw)
}

func (e Event) isString() bool {
	return len(e.raw) > 0 && e.raw[0] == '"'
}

// Resolve returns the post type to publish. An absent post_type selects the
// default; a present value must be one of the recognized strings.
func (e Event) Resolve() (poster.PostType, error) {
	if e.raw == nil {
		return poster.ParsePostType(e.PostType)
	}
	if !e.isString() || e.PostType == "" {
		return "", fmt.Errorf("%w: %s", poster.ErrUnknownPostType, e.Requested())
	}
	return poster.ParsePostType(e.PostType)
}

// Response is returned to the invoking platform.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Body is the JSON document carried in Response.Body.
type Body struct {
	Message string `json:"message"`
	TweetID string `json:"tweet_id,omitempty"`
}

func newResponse(kind Kind, body Body) Response {
	b, err := json.Marshal(body)
	if err != nil {
		// Body holds only strings.
		b = []byte(`{"message":"internal error"}`)
	}
	return Response{StatusCode: kind.StatusCode(), Body: string(b)}
}

// DecodeBody parses the body of a response.
func (r Response) DecodeBody() (Body, error) {
	var b Body
	err := json.Unmarshal([]byte(r.Body), &b)
	return b, err
}
