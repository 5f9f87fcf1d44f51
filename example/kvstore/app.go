// Package kvstore implements a keyed-state dapp Model. Advance
// payloads carry textual commands that mutate the store and emit a
// notice per mutation; inspect payloads are keys answered with a
// report. Unknown commands and missing keys exercise the reject path.
//
// Command format: "set <key> <value>" or "del <key>". Inspect payload
// format: the bare key.
package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Compile-time interface check.
var _ rollapp.Model = (*App)(nil)

// App is a dapp Model keeping a string key/value store.
type App struct {
	data map[string]string
}

// New creates an empty store.
func New() *App {
	return &App{data: make(map[string]string)}
}

func (app *App) HandleAdvance(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
	cmd := string(req.Payload)
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return reject(ctx, em, "empty command")
	}

	switch fields[0] {
	case "set":
		if len(fields) < 3 {
			return reject(ctx, em, fmt.Sprintf("set needs a key and a value: %q", cmd))
		}
		key := fields[1]
		value := strings.Join(fields[2:], " ")
		app.data[key] = value
		if _, err := em.EmitNotice(ctx, types.Payload(key+"="+value)); err != nil {
			return types.VerdictReject, err
		}
		return types.VerdictAccept, nil

	case "del":
		if len(fields) != 2 {
			return reject(ctx, em, fmt.Sprintf("del needs exactly one key: %q", cmd))
		}
		key := fields[1]
		if _, ok := app.data[key]; !ok {
			return reject(ctx, em, "key not found: "+key)
		}
		delete(app.data, key)
		if _, err := em.EmitNotice(ctx, types.Payload("del "+key)); err != nil {
			return types.VerdictReject, err
		}
		return types.VerdictAccept, nil

	default:
		return reject(ctx, em, "unknown command: "+fields[0])
	}
}

// HandleInspect treats the query payload as a key and reports its
// value, or a not-found diagnostic. Either way the verdict is accept:
// a missing key is a valid answer, not a failed cycle.
func (app *App) HandleInspect(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
	key := string(req.Payload)
	value, ok := app.data[key]
	answer := key + "=" + value
	if !ok {
		answer = key + ": not found"
	}
	if _, err := em.EmitReport(ctx, types.Payload(answer)); err != nil {
		return types.VerdictReject, err
	}
	return types.VerdictAccept, nil
}

// Get returns the stored value for key.
func (app *App) Get(key string) (string, bool) {
	value, ok := app.data[key]
	return value, ok
}

// Len returns the number of stored keys.
func (app *App) Len() int {
	return len(app.data)
}

// reject emits a diagnostic report and rejects the cycle. The report
// stays visible to the outer rollup even though the cycle is rejected.
func reject(ctx context.Context, em rollapp.Emitter, reason string) (types.Verdict, error) {
	if _, err := em.EmitReport(ctx, types.Payload(reason)); err != nil {
		return types.VerdictReject, err
	}
	return types.VerdictReject, nil
}
