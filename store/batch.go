package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sqlorm/sqlorm"
)

/*
Returned by batch writes when some statements fail. Statements are executed
independently: the ones not listed in `.Failed` were applied. `.Err` joins the
individual errors in statement order.
*/
type BatchError struct {
	Failed []int
	Total  int
	Err    error
}

// Implement `error`.
func (self *BatchError) Error() string {
	return fmt.Sprintf(`%d of %d batch statements failed: %v`, len(self.Failed), self.Total, self.Err)
}

// Implement a hidden interface in "errors".
func (self *BatchError) Unwrap() error { return self.Err }

/*
Inserts or replaces the rows, split into statements within the placeholder
limit. See `(*sqlorm.Builder).InsertMany`. Empty input is a no-op.
*/
func (self *Table) InsertMany(ctx context.Context, rows any) error {
	stmts, err := self.builder().InsertMany(rows)
	if err != nil {
		return err
	}
	return self.RunBatch(ctx, stmts)
}

/*
Applies a conditional batch update built by `sqlorm.BuildCaseUpdate` against
the table. Empty rows are a no-op.
*/
func UpdateByCase[T any](ctx context.Context, tab *Table, opt sqlorm.CaseUpdate[T]) error {
	stmts, err := sqlorm.BuildCaseUpdate(tab.builder(), opt)
	if err != nil {
		return err
	}
	return tab.RunBatch(ctx, stmts)
}

/*
Executes the statements with up to the configured number of workers. Every
statement runs even if others fail; failures are reported as `*BatchError`.
Cancelling the context stops statements that haven't started.
*/
func (self *Table) RunBatch(ctx context.Context, stmts []sqlorm.Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	errs := make([]error, len(stmts))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(self.workers)

	for ind, stmt := range stmts {
		ind, stmt := ind, stmt
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[ind] = err
				return nil
			}
			if _, err := self.execute(ctx, stmt); err != nil {
				self.log.Error(`batch statement failed`,
					zap.String(`table`, self.Name),
					zap.Int(`index`, ind),
					zap.Int(`total`, len(stmts)),
					zap.Error(err),
				)
				errs[ind] = fmt.Errorf("statement %d: %w", ind, err)
			}
			return nil
		})
	}
	_ = group.Wait()

	var failed []int
	for ind, err := range errs {
		if err != nil {
			failed = append(failed, ind)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &BatchError{Failed: failed, Total: len(stmts), Err: errors.Join(errs...)}
}
