// Package exporter renders panel requests in formats other tools accept.
package exporter

import (
	"errors"

	"github.com/artpar/querybench/internal/core"
)

// ErrInvalidRequest is returned when there is nothing to export.
var ErrInvalidRequest = errors.New("invalid request")

// RequestExporter exports individual requests.
type RequestExporter interface {
	Name() string
	ExportRequest(req *core.Request) ([]byte, error)
}
