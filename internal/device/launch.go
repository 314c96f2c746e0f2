package device

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lanegrep/internal/plan"
)

// Kernel is the per-lane body of a launch.
type Kernel func(lane int)

// Launch runs k once for every lane of p and blocks until all lanes have
// completed. Lanes share no state other than what k closes over.
func (d *Device) Launch(ctx context.Context, p plan.Plan, k Kernel) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.MaxGroups)

	for group := 0; group < p.GroupCount; group++ {
		first, last := p.Group(group)
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: group %d: %v", ErrLaunchFailed, group, r)
				}
			}()
			// Groups already queued still start after a failure; skip them.
			if gctx.Err() != nil {
				return gctx.Err()
			}
			for lane := first; lane < last; lane++ {
				k(lane)
			}
			return nil
		})
	}

	return g.Wait()
}
