package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hireready/backend/models"
	"gorm.io/gorm"
)

// Exchange log operations. The log is append-only apart from the score
// back-fill on answer entries.

// AppendExchange stores the exchange with the next sequence number for its session.
func (r *GORMRepository) AppendExchange(ctx context.Context, exchange *models.Exchange) error {
	newID(&exchange.ID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&models.Exchange{}).
			Where("session_id = ?", exchange.SessionID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		exchange.Sequence = last + 1
		return tx.Create(exchange).Error
	})
	if err != nil {
		slog.Error("Failed to save exchange", "error", err, "session_id", exchange.SessionID, "type", exchange.Type)
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	return nil
}

// ListExchanges returns the session's exchanges in timestamp order.
func (r *GORMRepository) ListExchanges(ctx context.Context, sessionID string) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Order("sequence ASC").
		Find(&exchanges).Error; err != nil {
		slog.Error("Failed to get exchanges by session", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to get exchanges by session: %w", err)
	}
	return exchanges, nil
}

// FindAnswerExchange returns the latest answer exchange whose text equals text
// exactly, or nil when there is none.
func (r *GORMRepository) FindAnswerExchange(ctx context.Context, sessionID, text string) (*models.Exchange, error) {
	var exchange models.Exchange
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND type = ? AND text = ?", sessionID, models.ExchangeAnswer, text).
		Order("sequence DESC").
		First(&exchange).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to find answer exchange", "error", err, "session_id", sessionID)
		return nil, fmt.Errorf("failed to find answer exchange: %w", err)
	}
	return &exchange, nil
}

// UpdateExchangeScore back-fills the score and feedback of one exchange.
func (r *GORMRepository) UpdateExchangeScore(ctx context.Context, exchangeID string, score int, feedback string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Exchange{}).
		Where("id = ?", exchangeID).
		Updates(map[string]any{"score": score, "feedback": feedback}).Error; err != nil {
		slog.Error("Failed to update exchange score", "error", err, "exchange_id", exchangeID)
		return fmt.Errorf("failed to update exchange score: %w", err)
	}
	return nil
}
