// Package synchronize implements a bounded polling synchronizer: it evaluates
// an action until the action succeeds, fails fatally, or a deadline passes.
//
// The main use is coalescing several dependent checks into one retry window.
// Instead of letting each check wait out its own timeout, wrap them all in a
// single Synchronize (or Do) call. Checks that themselves call Synchronize
// notice the active window in their context and run once per outer attempt,
// so the total wait is bounded by the outermost deadline.
//
// Basic usage:
//
//	err := synchronize.Do(ctx, func(ctx context.Context) error {
//	    if !loggedIn() {
//	        return errors.New("not logged in yet") // retryable
//	    }
//
//	    return nil
//	}, 20*time.Second)
//
// Returning a value:
//
//	id, err := synchronize.Synchronize(ctx, func(ctx context.Context) synchronize.Result[string] {
//	    id, ok := lookup()
//	    if !ok {
//	        return synchronize.Retry[string](nil)
//	    }
//
//	    return synchronize.Done(id)
//	}, 20*time.Second)
//
// Composing checks under one deadline:
//
//	err := synchronize.Do(ctx, synchronize.Any(hasText("Success"), hasText("Login failed")),
//	    20*time.Second, synchronize.WithDescription("login result"))
package synchronize
