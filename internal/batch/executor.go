// Package batch applies one mutation (delete, cancel) across a selected
// set of items. Requests are issued strictly sequentially, one at a time,
// awaiting each response before the next: the backend serializes writes per
// underlying store, and concurrent deletes were observed to trigger lock
// contention. The serialization is deliberate backpressure, not an
// oversight.
package batch

import "context"

// Action is the per-item mutation, typically a closure over one gateway
// call.
type Action func(ctx context.Context, id string) error

// Result counts batch outcomes. The caller surfaces one summary
// notification, not one per item.
type Result struct {
	Succeeded int
	Failed    int
	// Errors maps failed identifiers to their errors, for logging.
	Errors map[string]error
}

// Run applies action to each id in order. A failure on one item is
// recorded and execution continues with the remaining items; only context
// cancellation stops the batch early, with the untouched items counted as
// failed.
func Run(ctx context.Context, ids []string, action Action) Result {
	res := Result{Errors: make(map[string]error)}
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for _, rest := range ids[i:] {
				res.Failed++
				res.Errors[rest] = err
			}
			break
		}
		if err := action(ctx, id); err != nil {
			res.Failed++
			res.Errors[id] = err
			continue
		}
		res.Succeeded++
	}
	return res
}
