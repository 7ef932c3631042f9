package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/config"
	"github.com/diewo77/exchange-app/internal/models"
)

type DashboardSummary struct {
	StatusCounts      map[string]int64  `json:"status_counts"`
	OpenTasks         int64             `json:"open_tasks"`
	UpcomingDeadlines []models.Exchange `json:"upcoming_deadlines"`
	RelinquishedTotal float64           `json:"relinquished_total"`
	Restricted        bool              `json:"restricted"`
}

type DashboardService struct {
	DB *gorm.DB
	// Window is how far ahead upcoming deadlines are reported.
	Window time.Duration
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	days := config.Load().DashboardDeadlineDays
	return &DashboardService{DB: db, Window: time.Duration(days) * 24 * time.Hour}
}

// Summary aggregates over the visible-exchange set the caller already
// resolved for this request. restricted=false means the caller sees
// everything and the id list is ignored; restricted=true with an empty list
// means nothing is visible and no queries are issued.
func (s *DashboardService) Summary(ctx context.Context, visibleIDs []uint, restricted bool) (DashboardSummary, error) {
	sum := DashboardSummary{StatusCounts: map[string]int64{}, UpcomingDeadlines: []models.Exchange{}, Restricted: restricted}
	if restricted && len(visibleIDs) == 0 {
		return sum, nil
	}

	scope := func(q *gorm.DB, col string) *gorm.DB {
		if restricted {
			return q.Where(col+" IN ?", visibleIDs)
		}
		return q
	}

	type statusRow struct {
		Status string
		N      int64
	}
	var rows []statusRow
	q := scope(s.DB.WithContext(ctx).Model(&models.Exchange{}), "id").
		Select("status, count(*) as n").Group("status")
	if err := q.Scan(&rows).Error; err != nil {
		return DashboardSummary{}, err
	}
	for _, r := range rows {
		sum.StatusCounts[r.Status] = r.N
	}

	if err := scope(s.DB.WithContext(ctx).Model(&models.Task{}), "exchange_id").
		Where("status = ?", "open").
		Count(&sum.OpenTasks).Error; err != nil {
		return DashboardSummary{}, err
	}

	now := time.Now()
	horizon := now.Add(s.Window)
	if err := scope(s.DB.WithContext(ctx).Model(&models.Exchange{}), "id").
		Where("status = ?", "open").
		Where("(identification_deadline BETWEEN ? AND ?) OR (completion_deadline BETWEEN ? AND ?)", now, horizon, now, horizon).
		Order("identification_deadline asc").
		Limit(10).
		Find(&sum.UpcomingDeadlines).Error; err != nil {
		return DashboardSummary{}, err
	}

	if err := scope(s.DB.WithContext(ctx).Model(&models.Exchange{}), "id").
		Where("status = ?", "open").
		Select("coalesce(sum(relinquished_value), 0)").
		Scan(&sum.RelinquishedTotal).Error; err != nil {
		return DashboardSummary{}, err
	}
	return sum, nil
}
