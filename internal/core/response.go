package core

import "time"

// TimingInfo contains request/response timing information.
type TimingInfo struct {
	StartTime time.Time
	EndTime   time.Time
	Total     time.Duration
}

// Status is the status line of a received response.
type Status struct {
	code int
}

// NewStatus creates a new status.
func NewStatus(code int) *Status {
	return &Status{code: code}
}

func (s *Status) Code() int { return s.code }

// Response is a fully read HTTP response.
type Response struct {
	status  *Status
	headers *Headers
	body    Body
	timing  TimingInfo
}

// NewResponse creates a response with empty headers and body.
func NewResponse(status *Status) *Response {
	return &Response{
		status:  status,
		headers: NewHeaders(),
		body:    NewEmptyBody(),
	}
}

func (r *Response) Status() *Status {
	return r.status
}

func (r *Response) Headers() *Headers {
	return r.headers
}

func (r *Response) Body() Body {
	return r.body
}

func (r *Response) Timing() TimingInfo {
	return r.timing
}

// WithHeaders sets the response headers and returns the response for chaining.
func (r *Response) WithHeaders(h *Headers) *Response {
	r.headers = h
	return r
}

// WithBody sets the response body and returns the response for chaining.
func (r *Response) WithBody(b Body) *Response {
	r.body = b
	return r
}

// WithTiming sets the timing info and returns the response for chaining.
func (r *Response) WithTiming(t TimingInfo) *Response {
	r.timing = t
	return r
}
