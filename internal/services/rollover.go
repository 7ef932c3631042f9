package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/exchange-app/internal/models"
)

// RolloverOverdueTasks pushes the due date of every open task that slipped
// past its deadline to the next business day. Meant to run once a day (or on
// demand via the -rollover-only flag); running it twice is harmless because a
// rolled task is no longer overdue.
func RolloverOverdueTasks(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	cutoff := startOfDay(now)
	var tasks []models.Task
	if err := db.WithContext(ctx).
		Where("status = ?", "open").
		Where("due_date < ?", cutoff).
		Find(&tasks).Error; err != nil {
		return 0, err
	}
	rolled := 0
	for _, task := range tasks {
		next := NextBusinessDay(now)
		if err := db.WithContext(ctx).Model(&models.Task{}).
			Where("id = ?", task.ID).
			Update("due_date", next).Error; err != nil {
			return rolled, err
		}
		rolled++
	}
	if rolled > 0 {
		log.Printf("rolled %d overdue tasks to %s", rolled, NextBusinessDay(now).Format("2006-01-02"))
	}
	return rolled, nil
}

// NextBusinessDay returns the next weekday strictly after t, at midnight.
func NextBusinessDay(t time.Time) time.Time {
	d := startOfDay(t).AddDate(0, 0, 1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
