package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/filter"
	"github.com/artpar/querybench/internal/panel"
	"github.com/spf13/cobra"
)

// ErrUnsuccessful is returned by send --fail when the response tone is not
// success.
var ErrUnsuccessful = errors.New("response was not successful")

// SendOptions holds options for the send command.
type SendOptions struct {
	Method  string
	Preset  int
	ID      string
	Payload string
	JQ      string
	JSON    bool
	Fail    bool
}

// NewSendCommand creates the send command.
func NewSendCommand(root *rootOptions) *cobra.Command {
	opts := &SendOptions{}

	cmd := &cobra.Command{
		Use:   "send ROUTE",
		Short: "Send one request through a route's panel",
		Long: "Send one request the way the panel for ROUTE would. ROUTE matches the\n" +
			"display name or the route name, e.g. /order or /Order/.",
		Example: "  querybench send / --jq '.products[].name'\n" +
			"  querybench send /order/ --id 1 --method PUT --preset 2",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, root, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "method", "X", "", "HTTP method (defaults to the route's first method)")
	cmd.Flags().IntVarP(&opts.Preset, "preset", "p", 0, "Load preset N (1-based) as the payload")
	cmd.Flags().StringVar(&opts.ID, "id", "", "Resource id appended to the route")
	cmd.Flags().StringVarP(&opts.Payload, "payload", "d", "", "JSON payload, replaces any preset")
	cmd.Flags().StringVar(&opts.JQ, "jq", "", "jq filter applied to the response body")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&opts.Fail, "fail", false, "Exit non-zero unless the response tone is success")

	return cmd
}

// sendResult is the --json output.
type sendResult struct {
	Route      string `json:"route"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	Status     int    `json:"status,omitempty"`
	Tone       string `json:"tone"`
	DurationMS int64  `json:"duration_ms"`
	Body       any    `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
}

func runSend(cmd *cobra.Command, root *rootOptions, route string, opts *SendOptions) error {
	s, err := openSession(cmd, root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.app.Panel(route)
	if err != nil {
		return err
	}
	if err := configurePanel(cmd, p, opts); err != nil {
		return err
	}

	var query *filter.Query
	if opts.JQ != "" {
		if query, err = filter.Compile(opts.JQ); err != nil {
			return err
		}
	}

	method := p.ActiveMethod()
	url := p.TargetURL()
	outcome, err := s.app.Send(cmd.Context(), p)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	visual := p.Visual()
	result := sendResult{
		Route:      p.Route().RouteName,
		Method:     method.String(),
		URL:        url,
		Status:     outcome.Status,
		Tone:       string(visual.Tone),
		DurationMS: outcome.Duration.Milliseconds(),
		Body:       outcome.Body,
	}
	if f := outcome.Failure(); f != nil {
		result.Error = f.Error()
	}
	if query != nil && outcome.OK {
		filtered, err := query.Run(cmd.Context(), outcome.Body)
		if err != nil {
			return err
		}
		result.Body = filtered
	}

	if opts.JSON {
		err = outputJSON(cmd, result)
	} else {
		err = outputHuman(cmd, result)
	}
	if err != nil {
		return err
	}

	if opts.Fail && visual.Tone != core.ToneSuccess {
		return fmt.Errorf("%w: %s %s gave %s", ErrUnsuccessful, result.Method, result.URL, result.Tone)
	}
	return nil
}

// configurePanel applies the method, id, preset and payload flags.
func configurePanel(cmd *cobra.Command, p *panel.Panel, opts *SendOptions) error {
	if opts.Method != "" {
		m, err := core.ParseMethod(opts.Method)
		if err != nil {
			return err
		}
		if !p.SelectMethod(m) {
			return fmt.Errorf("%w: %s does not allow %s", core.ErrInvalidRoute, p.Route().Title(), m)
		}
	}
	if cmd.Flags().Changed("id") {
		p.SetResourceID(opts.ID)
	}
	if opts.Preset != 0 {
		if err := p.SelectPreset(opts.Preset - 1); err != nil {
			return fmt.Errorf("preset %d: %w", opts.Preset, err)
		}
	}
	if opts.Payload != "" {
		var payload any
		if err := json.Unmarshal([]byte(opts.Payload), &payload); err != nil {
			return fmt.Errorf("invalid --payload: %w", err)
		}
		p.SetPayload(payload)
	}
	return nil
}

func outputJSON(cmd *cobra.Command, result sendResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputHuman(cmd *cobra.Command, result sendResult) error {
	out := cmd.OutOrStdout()

	// Request line
	fmt.Fprintf(out, "%s %s\n", result.Method, result.URL)

	// Status line
	status := "---"
	if result.Status != 0 {
		status = strings.TrimSpace(fmt.Sprintf("%d %s", result.Status, http.StatusText(result.Status)))
	}
	fmt.Fprintf(out, "HTTP %s  %dms  [%s]\n", status, result.DurationMS, result.Tone)

	if result.Error != "" {
		fmt.Fprintln(out, result.Error)
		return nil
	}

	// Body
	if result.Body != nil {
		fmt.Fprintln(out)
		data, err := json.MarshalIndent(result.Body, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	return nil
}
