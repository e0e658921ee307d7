// Package async runs error-returning work on its own goroutine and hands back a Future.
//
//	f := async.Go(ctx, func(ctx context.Context) error {
//		return bus.Post(ctx, evt)
//	})
//
//	// ... do other work
//
//	if err := f.AwaitTimeout(time.Second); errors.Is(err, async.ErrTimeout) {
//		// still running
//	}
//
// All joins the errors of several futures; Any returns the first to finish:
//
//	err := async.All(f1, f2, f3)
//	i, err := async.Any(f1, f2)
//
// A Future has no cancellation of its own. Cancel the context passed to Go; the
// work sees it and Await returns whatever the work returned.
package async
