package repository

import (
	"context"
	"time"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

func (r *Repository) GetPreferences(userID int64) (*domain.Preferences, error) {
	query := `
		SELECT view_mode, timezone, week_start, version
		FROM user_preferences WHERE user_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	prefs := &domain.Preferences{
		UserID: userID,
	}

	dst := []any{&prefs.ViewMode, &prefs.Timezone, &prefs.WeekStart, &prefs.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}

	return prefs, nil
}

func (r *Repository) UpsertPreferences(prefs *domain.Preferences) error {
	query := `
		INSERT INTO user_preferences (user_id, view_mode, timezone, week_start)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			view_mode = EXCLUDED.view_mode,
			timezone = EXCLUDED.timezone,
			week_start = EXCLUDED.week_start,
			version = user_preferences.version + 1
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{prefs.UserID, prefs.ViewMode, prefs.Timezone, prefs.WeekStart}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&prefs.Version); err != nil {
		return err
	}

	return nil
}
