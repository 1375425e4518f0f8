package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hireready/backend/ai"
	"github.com/hireready/backend/models"
	"github.com/hireready/backend/prompts"
)

// StartWindow is how long before the scheduled time an interview may start.
const StartWindow = 5 * time.Minute

var (
	defaultCompanies = []string{"Google", "Microsoft", "Amazon", "Apple", "Meta"}
	defaultRoles     = []string{"Software Engineer", "Data Scientist", "Product Manager", "DevOps Engineer", "QA Engineer"}
)

func defaultPositions(role string) []string {
	if strings.TrimSpace(role) == "" {
		role = "Software Engineer"
	}
	return []string{"Junior " + role, "Mid-Level " + role, "Senior " + role, "Lead " + role}
}

type ScheduleService struct {
	schedules ScheduleStore
	gateway   ai.Gateway
	now       func() time.Time
}

func NewScheduleService(schedules ScheduleStore, gateway ai.Gateway) *ScheduleService {
	return &ScheduleService{schedules: schedules, gateway: gateway, now: time.Now}
}

type ScheduleRequest struct {
	Company       string    `json:"company" validate:"required,max=255"`
	Role          string    `json:"role" validate:"max=255"`
	Position      string    `json:"position" validate:"required,max=255"`
	RoundType     string    `json:"round_type" validate:"required,oneof=HR CODING COMMUNICATION PROBLEM_SOLVING APTITUDE"`
	Difficulty    string    `json:"difficulty" validate:"required,oneof=EASY MEDIUM HARD"`
	ResumeText    string    `json:"resume_text"`
	ScheduledTime time.Time `json:"scheduled_time" validate:"required"`
}

func (s *ScheduleService) ScheduleInterview(ctx context.Context, userID string, req ScheduleRequest) (*models.InterviewSchedule, error) {
	schedule := &models.InterviewSchedule{
		UserID:        userID,
		Company:       strings.TrimSpace(req.Company),
		Role:          strings.TrimSpace(req.Role),
		Position:      strings.TrimSpace(req.Position),
		RoundType:     req.RoundType,
		Difficulty:    req.Difficulty,
		ResumeText:    req.ResumeText,
		ScheduledTime: req.ScheduledTime,
		Status:        models.ScheduleScheduled,
	}
	if err := s.schedules.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// ListSchedules returns the user's schedules, latest scheduled time first.
// An empty status returns all of them.
func (s *ScheduleService) ListSchedules(ctx context.Context, userID string, status models.ScheduleStatus) ([]models.InterviewSchedule, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown schedule status %q", ErrValidation, status)
	}
	return s.schedules.ListSchedules(ctx, userID, status)
}

func (s *ScheduleService) GetSchedule(ctx context.Context, scheduleID string) (*models.InterviewSchedule, error) {
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	return schedule, nil
}

// UpdateStatus sets the schedule status, stamping the completion time on
// COMPLETED. COMPLETED and CANCELLED schedules keep their status; setting the
// same status again is a no-op.
func (s *ScheduleService) UpdateStatus(ctx context.Context, scheduleID string, status models.ScheduleStatus) (*models.InterviewSchedule, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown schedule status %q", ErrValidation, status)
	}
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status.Terminal() {
		if schedule.Status == status {
			return schedule, nil
		}
		return nil, fmt.Errorf("%w: schedule is %s", ErrInvalidState, schedule.Status)
	}
	schedule.Status = status
	if status == models.ScheduleCompleted {
		now := s.now()
		schedule.CompletedAt = &now
	}
	if err := s.schedules.SaveSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	slog.Info("Schedule status updated", "schedule_id", scheduleID, "status", status)
	return schedule, nil
}

// CanStart reports whether the start window for the schedule has opened.
func (s *ScheduleService) CanStart(ctx context.Context, scheduleID string) (bool, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return false, err
	}
	return s.now().After(schedule.ScheduledTime.Add(-StartWindow)), nil
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if _, err := s.GetSchedule(ctx, scheduleID); err != nil {
		return err
	}
	return s.schedules.DeleteSchedule(ctx, scheduleID)
}

func (s *ScheduleService) SuggestCompanies(ctx context.Context, query string) []string {
	return s.suggest(ctx, "companies", prompts.SuggestCompanies(query), defaultCompanies)
}

func (s *ScheduleService) SuggestRoles(ctx context.Context, query, company string) []string {
	return s.suggest(ctx, "roles", prompts.SuggestRoles(query, company), defaultRoles)
}

func (s *ScheduleService) SuggestPositions(ctx context.Context, role, company string) []string {
	return s.suggest(ctx, "positions", prompts.SuggestPositions(role, company), defaultPositions(role))
}

// suggest never fails: provider errors and empty replies yield the defaults.
func (s *ScheduleService) suggest(ctx context.Context, kind, prompt string, defaults []string) []string {
	raw, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Failed to get suggestions", "kind", kind, "error", err)
		return append([]string(nil), defaults...)
	}
	items := ai.ParseStringList(raw)
	if len(items) == 0 {
		return append([]string(nil), defaults...)
	}
	return items
}
