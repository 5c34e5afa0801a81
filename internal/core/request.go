package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Request is one outgoing HTTP request built by a panel.
type Request struct {
	id      string
	method  Method
	url     string
	headers *Headers
	body    Body
}

// NewRequest creates a new request with the given parameters.
func NewRequest(method Method, url string) (*Request, error) {
	if method == "" {
		return nil, errors.New("method cannot be empty")
	}
	if url == "" {
		return nil, errors.New("url cannot be empty")
	}

	return &Request{
		id:      uuid.New().String(),
		method:  method,
		url:     url,
		headers: NewHeaders(),
		body:    NewEmptyBody(),
	}, nil
}

func (r *Request) ID() string {
	return r.id
}

func (r *Request) Method() Method {
	return r.method
}

func (r *Request) URL() string {
	return r.url
}

func (r *Request) Headers() *Headers {
	return r.headers
}

func (r *Request) Body() Body {
	return r.body
}

func (r *Request) SetHeader(key, value string) {
	r.headers.Set(key, value)
}

func (r *Request) SetBody(body Body) {
	r.body = body
}

// Headers implements a case-insensitive HTTP header store.
type Headers struct {
	data     map[string][]string
	keyOrder []string // original casing
}

// NewHeaders creates an empty headers collection.
func NewHeaders() *Headers {
	return &Headers{
		data:     make(map[string][]string),
		keyOrder: make([]string, 0),
	}
}

func (h *Headers) normalize(key string) string {
	return strings.ToLower(key)
}

func (h *Headers) Set(key, value string) {
	normalized := h.normalize(key)
	if _, exists := h.data[normalized]; !exists {
		h.keyOrder = append(h.keyOrder, key)
	}
	h.data[normalized] = []string{value}
}

func (h *Headers) Add(key, value string) {
	normalized := h.normalize(key)
	if _, exists := h.data[normalized]; !exists {
		h.keyOrder = append(h.keyOrder, key)
	}
	h.data[normalized] = append(h.data[normalized], value)
}

func (h *Headers) Get(key string) string {
	values := h.data[h.normalize(key)]
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

func (h *Headers) GetAll(key string) []string {
	values := h.data[h.normalize(key)]
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func (h *Headers) Keys() []string {
	result := make([]string, len(h.keyOrder))
	copy(result, h.keyOrder)
	return result
}

// Body represents a request or response body.
type Body interface {
	ContentType() string
	IsEmpty() bool
	Size() int64
	Bytes() []byte
	String() string
	Reader() io.Reader
}

type emptyBody struct{}

// NewEmptyBody creates an empty body.
func NewEmptyBody() Body {
	return &emptyBody{}
}

func (b *emptyBody) ContentType() string { return "" }
func (b *emptyBody) IsEmpty() bool       { return true }
func (b *emptyBody) Size() int64         { return 0 }
func (b *emptyBody) Bytes() []byte       { return nil }
func (b *emptyBody) String() string      { return "" }
func (b *emptyBody) Reader() io.Reader   { return bytes.NewReader(nil) }

type jsonBody struct {
	encoded []byte
}

// NewJSONBody serializes v as the body. A nil payload serializes as null.
func NewJSONBody(v any) (Body, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &jsonBody{encoded: encoded}, nil
}

func (b *jsonBody) ContentType() string { return "application/json" }
func (b *jsonBody) IsEmpty() bool       { return len(b.encoded) == 0 }
func (b *jsonBody) Size() int64         { return int64(len(b.encoded)) }
func (b *jsonBody) Bytes() []byte       { return b.encoded }
func (b *jsonBody) String() string      { return string(b.encoded) }
func (b *jsonBody) Reader() io.Reader   { return bytes.NewReader(b.encoded) }

type rawBody struct {
	content     []byte
	contentType string
}

// NewRawBody creates a raw body with the given content and content type.
func NewRawBody(content []byte, contentType string) Body {
	return &rawBody{
		content:     content,
		contentType: contentType,
	}
}

func (b *rawBody) ContentType() string { return b.contentType }
func (b *rawBody) IsEmpty() bool       { return len(b.content) == 0 }
func (b *rawBody) Size() int64         { return int64(len(b.content)) }
func (b *rawBody) Bytes() []byte       { return b.content }
func (b *rawBody) String() string      { return string(b.content) }
func (b *rawBody) Reader() io.Reader   { return bytes.NewReader(b.content) }

// ErrEmptyBody is returned by DecodeJSON when there is nothing to decode.
var ErrEmptyBody = errors.New("empty body")

// DecodeJSON parses a body as a single JSON value.
func DecodeJSON(b Body) (any, error) {
	if b == nil || b.IsEmpty() {
		return nil, ErrEmptyBody
	}
	dec := json.NewDecoder(b.Reader())
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
