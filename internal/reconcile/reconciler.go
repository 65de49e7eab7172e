package reconcile

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/example/storefront-client/internal/activity"
	"github.com/example/storefront-client/internal/domain/cart"
	"golang.org/x/sync/singleflight"
)

// GuestCartStore is the local cart the reconciler drains
type GuestCartStore interface {
	Read(ctx context.Context) (cart.GuestCart, error)
	Write(ctx context.Context, lines cart.GuestCart) error
	Clear(ctx context.Context) error
}

// RemoteCart accepts cart entries for the authenticated user
type RemoteCart interface {
	AddCartLine(ctx context.Context, variantID int64, quantity int) error
}

type EventRecorder interface {
	Record(ctx context.Context, eventType string, data any)
}

// Result describes a completed merge
type Result struct {
	Merged int
}

// PartialMergeError reports a merge that stopped before every line was accepted.
// Remaining is the number of lines the remote has not accepted; a later merge sends only those.
type PartialMergeError struct {
	Merged    int
	Remaining int
	Err       error
}

func (e *PartialMergeError) Error() string {
	return fmt.Sprintf("guest cart merge stopped after %d line(s), %d left locally: %v", e.Merged, e.Remaining, e.Err)
}

func (e *PartialMergeError) Unwrap() error {
	return e.Err
}

// Reconciler transfers guest cart lines into the remote cart after login.
// Each accepted line is removed from local storage before the next is sent,
// so an interrupted merge never re-sends a line the remote already holds.
// When local storage refuses that removal, the accepted lines are remembered
// per identity and dropped from storage before the next merge sends anything.
type Reconciler struct {
	store  GuestCartStore
	remote RemoteCart
	events EventRecorder

	group singleflight.Group
	mu    sync.Mutex
	// accepted remotely, still stored locally
	unsettled map[string]cart.GuestCart
}

func NewReconciler(store GuestCartStore, remote RemoteCart, events EventRecorder) *Reconciler {
	return &Reconciler{
		store:     store,
		remote:    remote,
		events:    events,
		unsettled: make(map[string]cart.GuestCart),
	}
}

// Merge pushes every local line to the remote cart in stored order, then clears local storage.
// Concurrent calls for the same identity share one execution and its outcome;
// merges for different identities run one at a time.
func (r *Reconciler) Merge(ctx context.Context, identity string) (*Result, error) {
	v, err, shared := r.group.Do(identity, func() (any, error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.merge(ctx, identity)
	})
	if shared {
		log.Printf("[Merge] Joined in-flight merge for %s", identity)
	}
	res, _ := v.(*Result)
	if res == nil {
		res = &Result{}
	}
	return res, err
}

func (r *Reconciler) merge(ctx context.Context, identity string) (*Result, error) {
	lines, err := r.store.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read guest cart: %w", err)
	}

	settled, err := r.settle(ctx, identity, lines)
	if err != nil {
		return r.fail(ctx, identity, 0, len(lines), err)
	}
	lines = lines[settled:]
	if len(lines) == 0 {
		return &Result{Merged: settled}, nil
	}

	log.Printf("[Merge] Merging %d guest line(s) for %s", len(lines), identity)

	for i, line := range lines {
		if err := r.remote.AddCartLine(ctx, line.VariantID, line.Quantity); err != nil {
			return r.fail(ctx, identity, settled+i, len(lines)-i, err)
		}

		rest := lines[i+1:]
		if len(rest) == 0 {
			break
		}
		if err := r.store.Write(ctx, rest); err != nil {
			r.unsettled[identity] = slices.Clone(lines[:i+1])
			return r.fail(ctx, identity, settled+i+1, len(rest), fmt.Errorf("failed to persist remaining guest lines: %w", err))
		}
	}

	if err := r.store.Clear(ctx); err != nil {
		r.unsettled[identity] = slices.Clone(lines)
		return r.fail(ctx, identity, settled+len(lines), 0, fmt.Errorf("failed to clear guest cart: %w", err))
	}

	merged := settled + len(lines)
	log.Printf("[Merge] Merged %d guest line(s) for %s", merged, identity)
	r.record(ctx, activity.EventGuestCartMerged, activity.GuestCartMerged{
		Identity: identity,
		Lines:    merged,
	})
	return &Result{Merged: merged}, nil
}

// settle removes lines a previous merge got accepted but could not drop from storage.
// It returns how many leading stored lines were settled. Lines that changed locally
// since then are no longer trusted to be the accepted ones and are sent again.
func (r *Reconciler) settle(ctx context.Context, identity string, lines cart.GuestCart) (int, error) {
	accepted, ok := r.unsettled[identity]
	if !ok {
		return 0, nil
	}
	if !isPrefix(accepted, lines) {
		log.Printf("[Merge] Guest cart for %s changed since the last merge, forgetting %d accepted line(s)", identity, len(accepted))
		delete(r.unsettled, identity)
		return 0, nil
	}

	rest := lines[len(accepted):]
	var err error
	if len(rest) == 0 {
		err = r.store.Clear(ctx)
	} else {
		err = r.store.Write(ctx, rest)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to drop %d already merged guest line(s): %w", len(accepted), err)
	}
	delete(r.unsettled, identity)
	log.Printf("[Merge] Dropped %d already merged guest line(s) for %s", len(accepted), identity)
	return len(accepted), nil
}

func isPrefix(prefix, lines cart.GuestCart) bool {
	if len(prefix) > len(lines) {
		return false
	}
	for i, p := range prefix {
		if p.VariantID != lines[i].VariantID || p.Quantity != lines[i].Quantity {
			return false
		}
	}
	return true
}

func (r *Reconciler) fail(ctx context.Context, identity string, merged, remaining int, cause error) (*Result, error) {
	log.Printf("[Merge] Merge for %s stopped: %d merged, %d left locally: %v", identity, merged, remaining, cause)
	r.record(ctx, activity.EventGuestCartMergeFailed, activity.GuestCartMergeFailed{
		Identity:  identity,
		Merged:    merged,
		Remaining: remaining,
		Reason:    cause.Error(),
	})
	return &Result{Merged: merged}, &PartialMergeError{Merged: merged, Remaining: remaining, Err: cause}
}

func (r *Reconciler) record(ctx context.Context, eventType string, data any) {
	if r.events == nil {
		return
	}
	r.events.Record(context.WithoutCancel(ctx), eventType, data)
}
