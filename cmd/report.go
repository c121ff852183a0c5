package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	apperrors "github.com/frahmantamala/workforce-attendance/internal"
	"github.com/frahmantamala/workforce-attendance/internal/attendance"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	"github.com/frahmantamala/workforce-attendance/internal/core/common/validation"
	"github.com/frahmantamala/workforce-attendance/internal/permission"
	permissionPostgres "github.com/frahmantamala/workforce-attendance/internal/permission/postgres"
	timeoffPostgres "github.com/frahmantamala/workforce-attendance/internal/timeoff/postgres"
	timesheetPostgres "github.com/frahmantamala/workforce-attendance/internal/timesheet/postgres"
	userPostgres "github.com/frahmantamala/workforce-attendance/internal/user/postgres"
	"github.com/frahmantamala/workforce-attendance/pkg/logger"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	reportUser   string
	reportAs     string
	reportFrom   string
	reportTo     string
	reportAsJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a user's attendance report",
	Long: `Resolve the attendance status of every day in a range for one user.
The report is built with the permissions of --as, which defaults to the
reported user.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportUser, "user", "u", "", "email of the reported user")
	reportCmd.Flags().StringVar(&reportAs, "as", "", "email of the acting user")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "first day, YYYY-MM-DD")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "last day, YYYY-MM-DD")
	reportCmd.Flags().BoolVar(&reportAsJSON, "json", false, "print JSON instead of a table")
	_ = reportCmd.MarkFlagRequired("user")
	_ = reportCmd.MarkFlagRequired("from")
	_ = reportCmd.MarkFlagRequired("to")
}

func runReport(cmd *cobra.Command, _ []string) error {
	if err := validation.ValidateDateRange(reportFrom, reportTo); err != nil {
		return err
	}
	// both are YYYY-MM-DD here, so they order lexically
	if reportFrom > reportTo {
		return apperrors.ErrInvalidRange
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	loc, err := cfg.Attendance.Location()
	if err != nil {
		return err
	}
	lg := logger.InitWithOptions(logger.Options{Env: "development", Level: "warn", Format: "text", Output: os.Stderr})

	db, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	gdb, err := initGorm(db)
	if err != nil {
		return err
	}

	ctx := context.Background()
	catalog, _, err := permissionPostgres.NewCatalogRepository(db).LoadCatalog(ctx)
	if err != nil {
		return err
	}

	users := userPostgres.NewUserRepository(gdb)
	target, err := users.GetByEmail(ctx, reportUser)
	if err != nil {
		return fmt.Errorf("reported user %s: %w", reportUser, err)
	}
	acting := target
	if reportAs != "" {
		if acting, err = users.GetByEmail(ctx, reportAs); err != nil {
			return fmt.Errorf("acting user %s: %w", reportAs, err)
		}
	}

	service := attendance.NewService(
		users,
		timeoffPostgres.NewTimeOffRepository(gdb),
		timesheetPostgres.NewTimesheetRepository(gdb),
		permission.NewResolver(catalog),
		attendance.NewResolver(loc),
		cfg.Attendance.RangeLimit(),
		lg,
	)

	from, _ := dates.Parse(reportFrom, loc)
	to, _ := dates.Parse(reportTo, loc)
	report, err := service.Report(ctx, acting, target.ID, from, to)
	if err != nil {
		return err
	}

	if reportAsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(cmd, report)
}

func printReport(cmd *cobra.Command, report *attendance.Report) error {
	WriteReportTable(cmd.OutOrStdout(), report)
	return nil
}

// WriteReportTable renders the resolved days followed by the summary totals.
func WriteReportTable(w io.Writer, report *attendance.Report) {
	days := tablewriter.NewWriter(w)
	days.SetHeader([]string{"Date", "Day", "Status", "Label"})
	days.SetAutoWrapText(false)
	for _, d := range report.Days {
		days.Append([]string{d.Date, d.Day.Date.Weekday().String()[:3], string(d.Status), d.Display.Label})
	}
	days.Render()

	summary := tablewriter.NewWriter(w)
	summary.SetBorder(false)
	summary.SetColumnSeparator("")
	summary.AppendBulk([][]string{
		{"expected work days", strconv.Itoa(report.Summary.ExpectedWorkDays)},
		{"worked minutes", strconv.Itoa(report.Summary.WorkedMinutes)},
		{"overtime minutes", strconv.Itoa(report.Summary.OvertimeMinutes)},
	})
	summary.Render()
}
