package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Subscriber opens log subscriptions. *ethclient.Client dialled over a
// websocket satisfies it.
type Subscriber interface {
	SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Subscription is a running Transfer watch.
type Subscription struct {
	sub  ethereum.Subscription
	done chan struct{}
	err  error
}

// Err returns the error that ended the watch, nil after a clean Unsubscribe or
// context cancellation. It is only valid after Done is closed.
func (s *Subscription) Err() error { return s.err }

// Done is closed when the watch stops.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Unsubscribe stops the watch and waits for the handler loop to exit.
func (s *Subscription) Unsubscribe() {
	s.sub.Unsubscribe()
	<-s.done
}

// WatchTransfers subscribes to Transfer logs matching q and calls handle for
// each decoded event from a single goroutine. Logs that do not decode are
// logged and dropped. The watch ends on ctx cancellation, Unsubscribe, or a
// subscription error.
func WatchTransfers(ctx context.Context, s Subscriber, q ethereum.FilterQuery, log *zap.Logger, handle func(Transfer)) (*Subscription, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ch := make(chan types.Log, 64)
	sub, err := s.SubscribeFilterLogs(ctx, q, ch)
	if err != nil {
		return nil, fmt.Errorf("subscribing to Transfer logs: %w", err)
	}

	w := &Subscription{sub: sub, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return

			case err, ok := <-sub.Err():
				if ok && err != nil {
					w.err = fmt.Errorf("transfer subscription: %w", err)
				}
				return

			case l := <-ch:
				tr, err := DecodeTransfer(l)
				if err != nil {
					log.Warn("dropping undecodable log", zap.Error(err))
					continue
				}
				handle(tr)
			}
		}
	}()

	return w, nil
}
