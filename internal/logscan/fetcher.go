// Package logscan fetches event logs over a block interval, narrowing the
// query window whenever the endpoint rejects a request for returning too many
// results.
package logscan

import (
	"context"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Querier is the log query surface of an EVM client. *ethclient.Client
// satisfies it.
type Querier interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// Range is an inclusive block interval.
type Range struct {
	From uint64
	To   uint64
}

// Stats describes what a fetch did.
type Stats struct {
	Calls    int     // remote queries issued
	Windows  int     // windows that returned logs successfully
	Narrowed int     // times a window was halved
	Skipped  []Range // ranges abandoned after a failure
}

// Fetcher retrieves logs window by window, strictly left to right.
type Fetcher struct {
	q          Querier
	step       uint64
	isTooLarge func(error) bool
	failFast   bool
	log        *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTooLarge overrides the "result set too large" classifier.
func WithTooLarge(fn func(error) bool) Option {
	return func(f *Fetcher) { f.isTooLarge = fn }
}

// WithFailFast makes any unrecoverable window failure abort the fetch instead
// of skipping the window.
func WithFailFast(on bool) Option {
	return func(f *Fetcher) { f.failFast = on }
}

// WithLogger sets the diagnostics logger.
func WithLogger(log *zap.Logger) Option {
	return func(f *Fetcher) { f.log = log }
}

// New returns a Fetcher whose windows start initialStep blocks wide.
func New(q Querier, initialStep int, opts ...Option) (*Fetcher, error) {
	if initialStep < 1 {
		return nil, ErrInvalidStep
	}
	f := &Fetcher{
		q:          q,
		step:       uint64(initialStep),
		isTooLarge: IsResultSetTooLarge,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch returns every log matching filter in [from, to]. Only the block range
// of filter is overwritten. Windows that cannot be fetched are skipped and
// logged, so the result may have gaps; use WithFailFast to get an error
// instead. from > to yields no logs and no remote calls.
func (f *Fetcher) Fetch(ctx context.Context, filter ethereum.FilterQuery, from, to uint64) ([]types.Log, error) {
	logs, _, err := f.FetchWithStats(ctx, filter, from, to)
	return logs, err
}

// FetchWithStats is Fetch plus a report of calls, narrowing and skipped ranges.
func (f *Fetcher) FetchWithStats(ctx context.Context, filter ethereum.FilterQuery, from, to uint64) ([]types.Log, Stats, error) {
	var (
		out   []types.Log
		stats Stats
	)

	current := from
	for current <= to {
		step := f.step

		for {
			if err := ctx.Err(); err != nil {
				return out, stats, err
			}

			end := windowEnd(current, step, to)
			f.log.Debug("reading blocks", zap.Uint64("from", current), zap.Uint64("to", end))

			q := filter
			q.FromBlock = new(big.Int).SetUint64(current)
			q.ToBlock = new(big.Int).SetUint64(end)

			stats.Calls++
			logs, err := f.q.FilterLogs(ctx, q)
			if err == nil {
				out = append(out, logs...)
				stats.Windows++
				if end == to {
					return out, stats, nil
				}
				current = end + 1
				break
			}

			if ctx.Err() != nil {
				return out, stats, ctx.Err()
			}

			tooLarge := f.isTooLarge(err)
			if tooLarge && step > 1 {
				f.log.Warn("too many logs, narrowing window",
					zap.Uint64("from", current),
					zap.Uint64("oldStep", step),
					zap.Uint64("newStep", step/2))
				step /= 2
				stats.Narrowed++
				continue
			}

			// Unknown failure, or a single-block window that is still too large.
			if f.failFast {
				return out, stats, &WindowError{From: current, To: end, Exhausted: tooLarge, Err: err}
			}
			f.log.Warn("skipping blocks",
				zap.Uint64("from", current),
				zap.Uint64("to", end),
				zap.Bool("tooLarge", tooLarge),
				zap.Error(err))
			stats.Skipped = append(stats.Skipped, Range{From: current, To: end})

			next, overflow := addSat(current, step)
			if overflow || next > to {
				return out, stats, nil
			}
			current = next
			break
		}
	}

	return out, stats, nil
}

// windowEnd returns min(current+step-1, to) without overflowing.
func windowEnd(current, step, to uint64) uint64 {
	if step-1 > to-current {
		return to
	}
	return current + step - 1
}

func addSat(a, b uint64) (uint64, bool) {
	if b > math.MaxUint64-a {
		return math.MaxUint64, true
	}
	return a + b, false
}
