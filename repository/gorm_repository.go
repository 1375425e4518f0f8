package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hireready/backend/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicate is returned when a write hits a unique constraint, such as a
// second in-progress session for the same user.
var ErrDuplicate = errors.New("duplicate record")

// ErrStale is returned when a session save would overwrite a status it no
// longer owns, such as an answer landing on a session that was abandoned.
var ErrStale = errors.New("stale session")

const pgUniqueViolation = "23505"

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// DB exposes the underlying handle for health checks.
func (r *GORMRepository) DB() *gorm.DB {
	return r.db
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.InterviewSession{},
		&models.Exchange{},
		&models.Evaluation{},
		&models.InterviewSchedule{},
	)
}

// translateError maps driver errors onto repository sentinels.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	newID(&user.ID)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		slog.Error("Failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// UpdateInterviewReadiness stores the readiness of the user's latest completed
// interview. It reports false when the user does not exist.
func (r *GORMRepository) UpdateInterviewReadiness(ctx context.Context, userID string, readiness float64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("interview_readiness", readiness)
	if res.Error != nil {
		slog.Error("Failed to update interview readiness", "error", res.Error, "user_id", userID)
		return false, fmt.Errorf("failed to update interview readiness: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Interview session operations

func (r *GORMRepository) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	newID(&session.ID)
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err, "user_id", session.UserID)
		return fmt.Errorf("failed to create interview session: %w", translateError(err))
	}
	slog.Info("Interview session created", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

// SaveSession writes every column of the session, including the embedded Q&A
// list. The row must still be in progress or already hold the saved status.
func (r *GORMRepository) SaveSession(ctx context.Context, session *models.InterviewSession) error {
	res := r.db.WithContext(ctx).Model(session).
		Where("status IN ?", []models.SessionStatus{models.StatusInProgress, session.Status}).
		Select("*").
		Updates(session)
	if res.Error != nil {
		slog.Error("Failed to save interview session", "error", res.Error, "session_id", session.ID)
		return fmt.Errorf("failed to save interview session: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		slog.Warn("Stale interview session save rejected", "session_id", session.ID, "status", session.Status)
		return fmt.Errorf("failed to save interview session %s: %w", session.ID, ErrStale)
	}
	return nil
}

func (r *GORMRepository) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get interview session: %w", err)
	}
	return &session, nil
}

func (r *GORMRepository) GetActiveSession(ctx context.Context, userID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusInProgress).
		Order("started_at DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get active interview session", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get active interview session: %w", err)
	}
	return &session, nil
}

// ListSessions returns the user's sessions, newest first.
func (r *GORMRepository) ListSessions(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get interview sessions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get interview sessions: %w", err)
	}
	return sessions, nil
}

// AbandonActiveSessions moves every in-progress session of the user to abandoned.
func (r *GORMRepository) AbandonActiveSessions(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("user_id = ? AND status = ?", userID, models.StatusInProgress).
		Updates(map[string]any{"status": models.StatusAbandoned, "updated_at": time.Now()})
	if res.Error != nil {
		slog.Error("Failed to abandon interview sessions", "error", res.Error, "user_id", userID)
		return 0, fmt.Errorf("failed to abandon interview sessions: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		slog.Info("Interview sessions abandoned", "user_id", userID, "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func (r *GORMRepository) DeleteSession(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.Exchange{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", sessionID).Delete(&models.InterviewSession{}).Error
	})
	if err != nil {
		slog.Error("Failed to delete interview session", "error", err, "session_id", sessionID)
		return fmt.Errorf("failed to delete interview session: %w", err)
	}
	slog.Info("Interview session deleted", "session_id", sessionID)
	return nil
}

// Evaluation operations

// SaveEvaluation inserts the evaluation or replaces the one already stored for
// the same session. A replaced row keeps its id, which is written back to
// evaluation.
func (r *GORMRepository) SaveEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Evaluation
		err := tx.Unscoped().Select("id").Where("session_id = ?", evaluation.SessionID).Take(&existing).Error
		switch {
		case err == nil:
			evaluation.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			newID(&evaluation.ID)
		default:
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).Create(evaluation).Error
	})
	if err != nil {
		slog.Error("Failed to save evaluation", "error", err, "session_id", evaluation.SessionID)
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	slog.Info("Evaluation saved", "evaluation_id", evaluation.ID, "session_id", evaluation.SessionID)
	return nil
}

func (r *GORMRepository) GetEvaluationBySession(ctx context.Context, sessionID string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&evaluation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get evaluation", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return &evaluation, nil
}

// ListEvaluationsByUser returns the user's evaluations, newest first.
func (r *GORMRepository) ListEvaluationsByUser(ctx context.Context, userID string) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("evaluated_at DESC").Find(&evaluations).Error
	if err != nil {
		slog.Error("Failed to list evaluations", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evaluations, nil
}

func (r *GORMRepository) DeleteEvaluationBySession(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.Evaluation{}).Error; err != nil {
		slog.Error("Failed to delete evaluation", "error", err, "session_id", sessionID)
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	slog.Info("Evaluation deleted", "session_id", sessionID)
	return nil
}

// Schedule operations

func (r *GORMRepository) CreateSchedule(ctx context.Context, schedule *models.InterviewSchedule) error {
	newID(&schedule.ID)
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		slog.Error("Failed to create schedule", "error", err, "user_id", schedule.UserID)
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	slog.Info("Interview scheduled", "schedule_id", schedule.ID, "user_id", schedule.UserID, "company", schedule.Company)
	return nil
}

func (r *GORMRepository) SaveSchedule(ctx context.Context, schedule *models.InterviewSchedule) error {
	if err := r.db.WithContext(ctx).Save(schedule).Error; err != nil {
		slog.Error("Failed to save schedule", "error", err, "schedule_id", schedule.ID)
		return fmt.Errorf("failed to save schedule: %w", err)
	}
	return nil
}

func (r *GORMRepository) GetSchedule(ctx context.Context, scheduleID string) (*models.InterviewSchedule, error) {
	var schedule models.InterviewSchedule
	err := r.db.WithContext(ctx).Where("id = ?", scheduleID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get schedule", "error", err, "schedule_id", scheduleID)
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

func (r *GORMRepository) GetScheduleBySession(ctx context.Context, sessionID string) (*models.InterviewSchedule, error) {
	var schedule models.InterviewSchedule
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get schedule by session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get schedule by session: %w", err)
	}
	return &schedule, nil
}

// ListSchedules returns the user's schedules by scheduled time, latest first.
// An empty status matches every status.
func (r *GORMRepository) ListSchedules(ctx context.Context, userID string, status models.ScheduleStatus) ([]models.InterviewSchedule, error) {
	var schedules []models.InterviewSchedule
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("scheduled_time DESC").Find(&schedules).Error; err != nil {
		slog.Error("Failed to list schedules", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

func (r *GORMRepository) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", scheduleID).Delete(&models.InterviewSchedule{}).Error; err != nil {
		slog.Error("Failed to delete schedule", "error", err, "schedule_id", scheduleID)
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	slog.Info("Schedule deleted", "schedule_id", scheduleID)
	return nil
}
