package pm4

import (
	"context"

	"golang.org/x/sync/errgroup"

	"gputrace/internal/gfx"
)

// Result is the output of decoding one buffer.
type Result struct {
	Packets []Packet
	Summary Summary
}

// DecodeAll decodes independent buffers concurrently, at most limit at a
// time (limit <= 0 means unbounded). Results are in input order. The only
// error is ctx cancellation; buffers not started by then are left empty.
func (d *Decoder) DecodeAll(ctx context.Context, buffers [][]uint32, gen gfx.Generation, limit int) ([]Result, error) {
	results := make([]Result, len(buffers))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, buf := range buffers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkts, sum := d.Decode(buf, gen)
			results[i] = Result{Packets: pkts, Summary: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Total merges the summaries of results.
func Total(results []Result) Summary {
	var s Summary
	for _, r := range results {
		s.Merge(r.Summary)
	}
	return s
}
