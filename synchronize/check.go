package synchronize

import (
	"context"
	"errors"
)

// Check is an error-only condition. A nil return means it holds; see Do for
// how errors are classified.
type Check func(ctx context.Context) error

// All holds when every check holds on the same pass. Checks run in order and
// the first unsatisfied one ends the pass. All with no checks always holds.
func All(checks ...Check) Check {
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}

		return nil
	}
}

// Any holds as soon as one check holds. When none do, the joined errors of
// all checks are returned. A fatal check makes the whole pass fatal.
func Any(checks ...Check) Check {
	return func(ctx context.Context) error {
		if len(checks) == 0 {
			return Fatal(ErrNoChecks)
		}

		errs := make([]error, 0, len(checks))

		for _, check := range checks {
			err := check(ctx)
			if err == nil {
				return nil
			}

			if IsFatal(err) {
				return err
			}

			errs = append(errs, err)
		}

		return errors.Join(errs...)
	}
}
