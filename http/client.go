// Package rollapphttp provides the HTTP transport to the rollup
// dispatcher. The dispatcher bridges the machine's device interface to
// the JSON-over-HTTP surface consumed here; every call blocks the
// single thread of control until the exchange completes, which keeps
// execution reproducible under machine replay.
package rollapphttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/router"
	"github.com/blockberries/rollapp/types"
	"github.com/blockberries/rollapp/wire"
)

// Compile-time interface checks.
var (
	_ rollapp.Dispatcher = (*Client)(nil)
	_ rollapp.GIO        = (*Client)(nil)
)

// Client talks to a rollup HTTP dispatcher. It is stateless apart from
// the connection: request sequencing belongs to the interaction loop.
type Client struct {
	base string
	hc   *http.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the dispatcher at base, e.g.
// "http://127.0.0.1:5004".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: base,
		hc:   http.DefaultClient,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Finish reports the previous cycle's verdict and blocks until the
// dispatcher supplies the next request, decoded and classified. The
// dispatcher holds the connection open until work arrives, so no
// client-side timeout is applied here.
func (c *Client) Finish(ctx context.Context, verdict types.Verdict) (types.Request, error) {
	if !verdict.Valid() {
		return types.Request{}, fmt.Errorf("finish: verdict must be accept or reject, got %d", uint8(verdict))
	}
	c.log.Debug().Stringer("status", verdict).Msg("finishing cycle")

	body, err := c.post(ctx, "finish", wire.FinishRequest{Status: verdict})
	if err != nil {
		return types.Request{}, err
	}

	var env wire.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return types.Request{}, rollapp.NewMalformedResponseError("finish response: " + err.Error())
	}
	req, err := router.Route(env)
	if err != nil {
		return types.Request{}, err
	}
	c.log.Debug().Stringer("kind", req.Kind).Msg("received request")
	return req, nil
}

// Voucher transmits a voucher and returns its dispatcher-assigned index.
func (c *Client) Voucher(ctx context.Context, v types.Voucher) (uint64, error) {
	body, err := c.post(ctx, "voucher", v)
	if err != nil {
		return 0, err
	}
	return decodeIndex("voucher", body)
}

// Notice transmits a notice and returns its dispatcher-assigned index.
func (c *Client) Notice(ctx context.Context, n types.Notice) (uint64, error) {
	body, err := c.post(ctx, "notice", n)
	if err != nil {
		return 0, err
	}
	return decodeIndex("notice", body)
}

// Report transmits a report. The dispatcher may answer with an index
// or with an empty acknowledgment; acked is false in the former case.
func (c *Client) Report(ctx context.Context, r types.Report) (uint64, bool, error) {
	body, err := c.post(ctx, "report", r)
	if err != nil {
		return 0, false, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return 0, true, nil
	}
	index, err := decodeIndex("report", body)
	return index, false, err
}

// Exception tells the dispatcher the dapp cannot proceed. The body of
// the acknowledgment is discarded.
func (c *Client) Exception(ctx context.Context, payload types.Payload) error {
	_, err := c.post(ctx, "exception", wire.ExceptionRequest{Payload: payload})
	return err
}

// GIO issues a generic IO request against the given domain.
func (c *Client) GIO(ctx context.Context, domain uint32, id types.Payload) (types.GIOResponse, error) {
	body, err := c.post(ctx, "gio", wire.GIORequest{Domain: domain, ID: id})
	if err != nil {
		return types.GIOResponse{}, err
	}
	var resp types.GIOResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.GIOResponse{}, rollapp.NewMalformedResponseError("gio response: " + err.Error())
	}
	return resp, nil
}

// post issues one JSON POST and returns the response body. Channel
// failures and non-2xx statuses map to TransportError.
func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, rollapp.NewTransportError(endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, rollapp.NewTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rollapp.NewTransportError(endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, rollapp.NewTransportError(endpoint,
			fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}
	return body, nil
}

func decodeIndex(endpoint string, body []byte) (uint64, error) {
	var resp wire.IndexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, rollapp.NewMalformedResponseError(endpoint + " response: " + err.Error())
	}
	return resp.Index, nil
}
