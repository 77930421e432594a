// Package sheets defines the spreadsheet export ports used by the worker.
package sheets

import (
	"context"

	"pennypal/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter appends a newly created expense as one row.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	// ActivityWriter appends one activity row.
	ActivityWriter interface {
		AppendActivity(ctx context.Context, a core.Activity) (rowRef string, err error)
	}

	// Exporter is implemented by adapters that handle both row kinds.
	Exporter interface {
		ExpenseWriter
		ActivityWriter
	}
)
