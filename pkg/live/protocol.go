package live

import "errors"

// Message types sent by the client besides delegated DOM event types.
const (
	MsgSort   = "sort"
	MsgResize = "resize"
)

// Operations sent to the client.
const (
	OpReplace = "replace"
	OpReset   = "reset"
	OpAppend  = "append"
	OpHeader  = "header"
	OpError   = "error"
)

var (
	// ErrUnknownSession is returned for session IDs the server does not hold.
	ErrUnknownSession = errors.New("live: unknown session")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrSessionAttached is returned when a second connection claims a session.
	ErrSessionAttached = errors.New("live: session already attached")

	// ErrUnsupportedMessage is returned for message types the grid does not
	// delegate.
	ErrUnsupportedMessage = errors.New("live: unsupported message type")

	// ErrUnknownTarget is returned when an event names an HID not in the grid.
	ErrUnknownTarget = errors.New("live: unknown target")

	// ErrRefreshFailed reports a row an event mutated but could not re-render.
	ErrRefreshFailed = errors.New("live: row refresh failed")

	// ErrTooManySessions is returned when MaxSessions is reached.
	ErrTooManySessions = errors.New("live: too many sessions")
)

// Message is a client to server message.
type Message struct {
	Type string `json:"type"`

	// HID is the event target for delegated DOM events.
	HID   string `json:"hid,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// SortBy is the sort-by string for sort messages ("name", "-name").
	SortBy string `json:"sortBy,omitempty"`

	// Column and Width describe a resize message.
	Column int     `json:"column,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Op is a server to client patch operation.
type Op struct {
	Op      string `json:"op"`
	HID     string `json:"hid,omitempty"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message,omitempty"`
}
