package exporter

import (
	"strings"

	"github.com/artpar/querybench/internal/core"
)

// CurlExporter exports requests as curl command lines.
type CurlExporter struct {
	// Pretty splits options onto continuation lines.
	Pretty bool
}

// NewCurlExporter creates a curl exporter producing single-line commands.
func NewCurlExporter() *CurlExporter {
	return &CurlExporter{}
}

func (c *CurlExporter) Name() string {
	return "curl command"
}

// ExportRequest renders req as a curl invocation.
func (c *CurlExporter) ExportRequest(req *core.Request) ([]byte, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	parts := []string{"curl"}

	if req.Method() != core.MethodGET {
		parts = append(parts, "-X", req.Method().String())
	}

	for _, key := range req.Headers().Keys() {
		for _, value := range req.Headers().GetAll(key) {
			parts = append(parts, "-H", key+": "+value)
		}
	}

	if body := req.Body(); body != nil && !body.IsEmpty() {
		parts = append(parts, "--data-raw", body.String())
	}

	// URL is always last
	parts = append(parts, req.URL())

	if c.Pretty {
		return []byte(formatPrettyCurl(parts)), nil
	}
	return []byte(formatInlineCurl(parts)), nil
}

// Curl renders req as a single-line curl command. A nil request yields "".
func Curl(req *core.Request) string {
	out, err := NewCurlExporter().ExportRequest(req)
	if err != nil {
		return ""
	}
	return string(out)
}

func formatInlineCurl(parts []string) string {
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = shellQuote(part)
	}
	return strings.Join(quoted, " ")
}

func formatPrettyCurl(parts []string) string {
	var sb strings.Builder
	sb.WriteString("curl")

	for i := 1; i < len(parts); i++ {
		sb.WriteString(" \\\n  ")
		sb.WriteString(shellQuote(parts[i]))
		if strings.HasPrefix(parts[i], "-") && i+1 < len(parts)-1 {
			i++
			sb.WriteString(" ")
			sb.WriteString(shellQuote(parts[i]))
		}
	}

	return sb.String()
}

// shellQuote single-quotes s when it contains shell metacharacters.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\"'$`\\!*?[]{}()<>|&;#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

var _ RequestExporter = (*CurlExporter)(nil)
