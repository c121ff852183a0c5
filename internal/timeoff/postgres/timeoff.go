package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/workforce-attendance/internal/core/common/dates"
	timeoffDatamodel "github.com/frahmantamala/workforce-attendance/internal/core/datamodel/timeoff"
	"github.com/frahmantamala/workforce-attendance/internal/timeoff"
	"gorm.io/gorm"
)

type TimeOffRepository struct {
	db *gorm.DB
}

func NewTimeOffRepository(db *gorm.DB) timeoff.RepositoryAPI {
	return &TimeOffRepository{db: db}
}

// overlapping restricts a query on start_date/end_date columns to rows that
// share at least one day with within. A NULL end_date is open-ended.
func overlapping(q *gorm.DB, within dates.Range) *gorm.DB {
	if within.End != nil {
		q = q.Where("start_date <= ?", *within.End)
	}
	return q.Where("(end_date IS NULL OR end_date >= ?)", within.Start)
}

func (r *TimeOffRepository) ListVacations(ctx context.Context, userID int64, within dates.Range) ([]timeoff.Vacation, error) {
	var rows []*timeoffDatamodel.Vacation
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := overlapping(q, within).Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]timeoff.Vacation, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeoff.VacationFromDataModel(row))
	}
	return out, nil
}

func (r *TimeOffRepository) ListLeaves(ctx context.Context, userID int64, within dates.Range) ([]timeoff.LeaveOfAbsence, error) {
	var rows []*timeoffDatamodel.LeaveOfAbsence
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if err := overlapping(q, within).Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]timeoff.LeaveOfAbsence, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeoff.LeaveFromDataModel(row))
	}
	return out, nil
}

func (r *TimeOffRepository) ListHolidays(ctx context.Context, within dates.Range) ([]timeoff.PublicHoliday, error) {
	var rows []*timeoffDatamodel.PublicHoliday
	q := r.db.WithContext(ctx).Where("date >= ?", within.Start)
	if within.End != nil {
		q = q.Where("date <= ?", *within.End)
	}
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]timeoff.PublicHoliday, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeoff.HolidayFromDataModel(row))
	}
	return out, nil
}

func (r *TimeOffRepository) ListClosingDays(ctx context.Context, within dates.Range) ([]timeoff.ClosingDay, error) {
	var rows []*timeoffDatamodel.ClosingDay
	if err := overlapping(r.db.WithContext(ctx), within).Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]timeoff.ClosingDay, 0, len(rows))
	for _, row := range rows {
		out = append(out, timeoff.ClosingDayFromDataModel(row))
	}
	return out, nil
}

func (r *TimeOffRepository) GetSchedule(ctx context.Context, id int64) (*timeoff.Schedule, error) {
	var row timeoffDatamodel.Schedule
	err := r.db.WithContext(ctx).Preload("Days").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timeoff.ErrScheduleNotFound
		}
		return nil, err
	}
	return timeoff.ScheduleFromDataModel(&row), nil
}
