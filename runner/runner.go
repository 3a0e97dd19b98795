package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ridoystarlord/fksync/database"
	"github.com/ridoystarlord/fksync/diff"
	"github.com/ridoystarlord/fksync/generator"
	"github.com/ridoystarlord/fksync/introspect"
	"github.com/ridoystarlord/fksync/schema"
)

type Options struct {
	Naming generator.NamingPolicy
	// DryRun prints the statements without executing them.
	DryRun bool
	// Out receives the console output. Defaults to os.Stdout.
	Out io.Writer
}

// Failure is a statement the database (or the generator) refused.
type Failure struct {
	Statement generator.Statement
	Err       error
}

// Report describes one reconciliation run.
type Report struct {
	Plan       *diff.Plan
	Statements []generator.Statement
	Applied    []generator.Statement
	Failed     []Failure
	Duration   time.Duration
}

// Attempted is the number of statements sent to the database or rejected
// before being sent.
func (r *Report) Attempted() int {
	return len(r.Applied) + len(r.Failed)
}

// Reconcile reflects namespace, works out which rules have no foreign key
// yet and adds them one statement at a time. A failing statement is
// reported and the run moves on. The returned error is only set when the
// namespace could not be reflected, in which case nothing is attempted.
func Reconcile(ctx context.Context, db database.DB, namespace string, rules []schema.ForeignKeyRule, opts Options) (*Report, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	startTime := time.Now()

	fmt.Fprintf(out, "🔍 Inspecting schema %s...\n", namespace)
	snap, err := introspect.DescribeSchema(ctx, db, namespace)
	if err != nil {
		return nil, fmt.Errorf("reflecting schema %s: %w", namespace, err)
	}

	plan := diff.DiffForeignKeys(rules, snap)
	report := &Report{
		Plan:       plan,
		Statements: generator.GenerateStatements(plan.Operations, opts.Naming),
	}

	printPlanNotes(out, namespace, plan)

	if len(report.Statements) == 0 {
		fmt.Fprintln(out, "✅ All foreign keys are in place.")
		report.Duration = time.Since(startTime)
		return report, nil
	}

	if opts.DryRun {
		printDryRun(out, report.Statements)
		report.Duration = time.Since(startTime)
		return report, nil
	}

	for _, stmt := range report.Statements {
		applyStatement(ctx, db, out, stmt, report)
	}

	report.Duration = time.Since(startTime)
	printSummary(out, report)
	return report, nil
}

func applyStatement(ctx context.Context, db database.Executor, out io.Writer, stmt generator.Statement, report *Report) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	op := stmt.Operation
	target := "?"
	if op.ForeignKey != nil {
		target = op.ForeignKey.ReferencesTable
	}
	fmt.Fprintf(out, "🔗 Creating foreign key: %s.%s -> %s\n", op.TableName, op.ColumnName, target)

	if stmt.Err != nil {
		red.Fprintf(out, "❌ Refused to create foreign key %s.%s: %v\n", op.TableName, op.ColumnName, stmt.Err)
		report.Failed = append(report.Failed, Failure{Statement: stmt, Err: stmt.Err})
		return
	}

	start := time.Now()
	if _, err := db.Exec(ctx, stmt.SQL); err != nil {
		red.Fprintf(out, "❌ Failed to create foreign key %s: %v\n", stmt.ConstraintName, err)
		report.Failed = append(report.Failed, Failure{Statement: stmt, Err: err})
		return
	}

	green.Fprintf(out, "✅ Foreign key %s created (%v)\n", stmt.ConstraintName, time.Since(start).Round(time.Millisecond))
	report.Applied = append(report.Applied, stmt)
}

// ApplySQL executes each statement independently and returns the errors of
// those that failed, keyed by position.
func ApplySQL(ctx context.Context, db database.Executor, out io.Writer, sqls []string) map[int]error {
	if out == nil {
		out = os.Stdout
	}
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed, color.Bold)

	failed := map[int]error{}
	for i, sql := range sqls {
		if _, err := db.Exec(ctx, sql); err != nil {
			red.Fprintf(out, "❌ %s\n   %v\n", sql, err)
			failed[i] = err
			continue
		}
		green.Fprintf(out, "✅ %s\n", sql)
	}
	return failed
}

func printPlanNotes(out io.Writer, namespace string, plan *diff.Plan) {
	yellow := color.New(color.FgYellow, color.Bold)

	for _, table := range plan.MissingTables {
		yellow.Fprintf(out, "⚠️  Table %s not found in schema %s, skipping\n", table, namespace)
	}
	for _, m := range plan.Mismatched {
		yellow.Fprintf(out, "⚠️  %s.%s already references %s (expected %s), leaving it alone\n",
			m.Rule.TableName, m.Rule.ColumnName, m.Existing.ReferencesSchema+"."+m.Existing.ReferencesTable, namespace+"."+m.Rule.ReferencesTable)
	}
}

func printDryRun(out io.Writer, stmts []generator.Statement) {
	fmt.Fprintln(out, "\n================ DRY RUN: Foreign Key Preview ================")
	for _, s := range stmts {
		if s.Err != nil {
			fmt.Fprintf(out, "-- skipped %s.%s: %v\n", s.Operation.TableName, s.Operation.ColumnName, s.Err)
			continue
		}
		fmt.Fprintln(out, s.SQL+";")
	}
	fmt.Fprintln(out, "==============================================================")
	fmt.Fprintln(out, "(Dry run only. No constraints were created.)")
}

func printSummary(out io.Writer, report *Report) {
	fmt.Fprintf(out, "\n📊 Summary: %d created, %d failed, %d already in place (%v)\n",
		len(report.Applied),
		len(report.Failed),
		len(report.Plan.Satisfied),
		report.Duration.Round(time.Millisecond),
	)
}
