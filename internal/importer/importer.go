// Package importer builds route tables from API descriptions.
package importer

import (
	"errors"

	"github.com/artpar/querybench/internal/core"
)

var (
	ErrInvalidFormat      = errors.New("invalid format")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrParseError         = errors.New("parse error")
	ErrNoRoutes           = errors.New("no importable routes")
)

// Result contains the routes produced by an import.
type Result struct {
	Title  string
	Routes []core.RouteConfig
	// Skipped lists "METHOD path" entries that cannot drive a panel.
	Skipped []string
}
