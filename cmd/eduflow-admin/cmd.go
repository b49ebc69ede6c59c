package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/eduflow-api/internal/bootstrap"
	"github.com/noah-isme/eduflow-api/internal/models"
	"github.com/noah-isme/eduflow-api/internal/repository"
	"github.com/noah-isme/eduflow-api/internal/service"
	"github.com/noah-isme/eduflow-api/pkg/kvstore"
)

const usage = `usage: eduflow-admin <command> [flags]

commands:
  seed    write the sample students and courses (-force overwrites existing data)
  report  print a financial report export as JSON
`

var errUsage = errors.New("invalid usage")

type admin struct {
	store  kvstore.Store
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger
	topN   int
}

func (a *admin) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.errOut, usage)
		return errUsage
	}
	switch args[0] {
	case "seed":
		return a.seed(ctx, args[1:])
	case "report":
		return a.report(ctx, args[1:])
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
}

func (a *admin) seed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	force := fs.Bool("force", false, "overwrite existing students and courses")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	result, err := bootstrap.Seed(ctx, a.store, *force, a.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "seeded %d students, %d courses\n", result.Students, result.Courses)
	return nil
}

func (a *admin) report(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	reportType := fs.String("type", string(models.ReportTypeRevenue), "revenue, payments, outstanding, department or student")
	dateRange := fs.String("range", string(models.DateRangeLast6Months), "last3months, last6months, last12months, thisyear or custom")
	breakdown := fs.String("breakdown", string(models.BreakdownMonthly), "daily, weekly, monthly or quarterly")
	start := fs.String("start", "", "custom range start (YYYY-MM-DD)")
	end := fs.String("end", "", "custom range end (YYYY-MM-DD)")
	department := fs.String("department", "", "restrict to a department")
	method := fs.String("method", "", "restrict to a payment method")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	students := repository.NewStudentRepository(a.store)
	reports := service.NewFinancialReportService(
		repository.NewPaymentRepository(a.store),
		repository.NewFeeRepository(a.store),
		students,
		a.topN,
		a.logger,
	)
	file, err := reports.Export(ctx, models.ReportFilter{
		ReportType:    models.ReportType(*reportType),
		DateRange:     models.DateRangeKey(*dateRange),
		StartDate:     *start,
		EndDate:       *end,
		Department:    *department,
		PaymentMethod: *method,
		Breakdown:     models.Breakdown(*breakdown),
	})
	if err != nil {
		return err
	}
	if _, err := a.out.Write(file.Body); err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out)
	return err
}
