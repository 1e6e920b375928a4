package protowire

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/value"
)

// BatchDecoder decodes many independent messages against one schema,
// bounding concurrency with a weighted semaphore so a caller batching
// thousands of messages doesn't spawn unbounded goroutines. Each individual
// Decode call remains a synchronous, single-threaded operation; BatchDecoder
// is a caller-level convenience layered on top.
type BatchDecoder struct {
	Schema         *protoschema.Schema
	MaxParallelism int
}

// DecodeAllResult pairs one input message's decode result with its index in
// the original batch, since results complete out of order.
type DecodeAllResult struct {
	Index   int
	Message *value.Message
	Err     error
}

// DecodeAll decodes every (msgType, data) pair in items concurrently,
// bounded by MaxParallelism (defaulting to GOMAXPROCS), and returns results
// in input order.
func (d *BatchDecoder) DecodeAll(ctx context.Context, items []struct {
	MsgType string
	Data    []byte
}) ([]DecodeAllResult, error) {
	par := d.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
	}
	sem := semaphore.NewWeighted(int64(par))
	results := make([]DecodeAllResult, len(items))
	done := make(chan int, len(items))

	for i, item := range items {
		i, item := i, item
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func() {
			defer sem.Release(1)
			m, err := Decode(item.Data, d.Schema, item.MsgType)
			results[i] = DecodeAllResult{Index: i, Message: m, Err: err}
			done <- i
		}()
	}
	for range items {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, nil
}
