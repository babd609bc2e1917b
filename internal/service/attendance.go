package service

import (
	"alcyxob/gymhub/internal/domain"
	"context"
	"errors"
	"sort"
	"time"
)

// MarkAttendance upserts the member's entry for date. A "present" entry
// recomputes the member's streak.
func (w *Workspace) MarkAttendance(ctx context.Context, memberID string, date time.Time, status domain.AttendanceStatus) error {
	if !status.Valid() {
		return w.svc.invalid(errors.New("status must be present or rest"))
	}
	return w.mutate(ctx, "mark_attendance", func(id domain.Identity) error {
		if memberID != id.UserID {
			member, err := w.svc.tenantUser(ctx, id.GymID, memberID)
			if err != nil || member == nil {
				return err
			}
		}
		return w.svc.recordAttendance(ctx, memberID, domain.DateKey(date), status)
	})
}

// recordAttendance must run under s.mu.
func (s *GymService) recordAttendance(ctx context.Context, memberID, day string, status domain.AttendanceStatus) error {
	err := s.repo.Attendance.UpdateKey(ctx, memberID, func(entries []domain.AttendanceEntry, _ bool) ([]domain.AttendanceEntry, bool, error) {
		for i := range entries {
			if entries[i].Date == day {
				entries[i].Status = status
				return entries, true, nil
			}
		}
		entries = append(entries, domain.AttendanceEntry{Date: day, Status: status})
		sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
		return entries, true, nil
	})
	if err != nil {
		return err
	}
	if status != domain.AttendancePresent {
		return nil
	}
	return s.repo.Streaks.UpdateKey(ctx, memberID, func(prev domain.StreakRecord, _ bool) (domain.StreakRecord, bool, error) {
		next, err := NextStreak(prev, day)
		return next, true, err
	})
}
