package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
)

func (r *Repository) CreateEvent(event *domain.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO events (title, description, mode, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	args := []any{event.Title, event.Description, event.Mode, event.CreatedBy}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&event.ID, &event.CreatedAt, &event.Version); err != nil {
		return err
	}

	if err := r.insertEventChildren(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetEventByID(id int64) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT title, description, mode, created_by, created_at, version
		FROM events WHERE id = $1
	`

	event := &domain.Event{
		ID:         id,
		Capacities: make(domain.RosterCapacity),
		Blocks:     make([]domain.EventBlock, 0),
	}

	dst := []any{&event.Title, &event.Description, &event.Mode, &event.CreatedBy, &event.CreatedAt, &event.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT id, day_of_week, start_hour, end_hour, note
		FROM event_blocks WHERE event_id = $1
		ORDER BY day_of_week, start_hour
	`
	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var block domain.EventBlock
		if err := rows.Scan(&block.ID, &block.DayOfWeek, &block.StartHour, &block.EndHour, &block.Note); err != nil {
			return nil, err
		}
		event.Blocks = append(event.Blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT role, capacity FROM event_capacities WHERE event_id = $1
	`
	capRows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer capRows.Close()

	for capRows.Next() {
		var role domain.RosterRole
		var capacity int32
		if err := capRows.Scan(&role, &capacity); err != nil {
			return nil, err
		}
		event.Capacities[role] = capacity
	}
	if err := capRows.Err(); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *Repository) GetAllEvents() ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, title, description, mode, created_by, created_at, version
		FROM events
		ORDER BY created_at
	`
	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	eventsMap := make(map[int64]*domain.Event)

	for rows.Next() {
		event := &domain.Event{
			Capacities: make(domain.RosterCapacity),
			Blocks:     make([]domain.EventBlock, 0),
		}
		dst := []any{&event.ID, &event.Title, &event.Description, &event.Mode, &event.CreatedBy, &event.CreatedAt, &event.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		events = append(events, event)
		eventsMap[event.ID] = event
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT event_id, id, day_of_week, start_hour, end_hour, note
		FROM event_blocks
		ORDER BY day_of_week, start_hour
	`
	blockRows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer blockRows.Close()

	for blockRows.Next() {
		var eventID int64
		var block domain.EventBlock
		if err := blockRows.Scan(&eventID, &block.ID, &block.DayOfWeek, &block.StartHour, &block.EndHour, &block.Note); err != nil {
			return nil, err
		}
		if event, exists := eventsMap[eventID]; exists {
			event.Blocks = append(event.Blocks, block)
		}
	}
	if err := blockRows.Err(); err != nil {
		return nil, err
	}

	query = `
		SELECT event_id, role, capacity FROM event_capacities
	`
	capRows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer capRows.Close()

	for capRows.Next() {
		var eventID int64
		var role domain.RosterRole
		var capacity int32
		if err := capRows.Scan(&eventID, &role, &capacity); err != nil {
			return nil, err
		}
		if event, exists := eventsMap[eventID]; exists {
			event.Capacities[role] = capacity
		}
	}
	if err := capRows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// UpdateEvent 更新活动及其时间段和名额，时间段和名额整体替换
func (r *Repository) UpdateEvent(event *domain.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE events
		SET
			title = $1,
			description = $2,
			mode = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING created_by, created_at, version
	`
	args := []any{event.Title, event.Description, event.Mode, event.ID, event.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&event.CreatedBy, &event.CreatedAt, &event.Version); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_blocks WHERE event_id = $1`, event.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_capacities WHERE event_id = $1`, event.ID); err != nil {
		return err
	}

	if err := r.insertEventChildren(ctx, tx, event); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) DeleteEvent(id int64) error {
	query := `
		DELETE FROM events WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}

func (r *Repository) insertEventChildren(ctx context.Context, tx *sql.Tx, event *domain.Event) error {
	query := `
		INSERT INTO event_blocks (event_id, day_of_week, start_hour, end_hour, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i := range event.Blocks {
		block := &event.Blocks[i]
		args := []any{event.ID, block.DayOfWeek, block.StartHour, block.EndHour, block.Note}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&block.ID); err != nil {
			return err
		}
	}

	query = `
		INSERT INTO event_capacities (event_id, role, capacity)
		VALUES ($1, $2, $3)
	`
	for role, capacity := range event.Capacities {
		if _, err := tx.ExecContext(ctx, query, event.ID, role, capacity); err != nil {
			return err
		}
	}

	return nil
}
