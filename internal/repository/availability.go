package repository

import (
	"context"
	"time"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/schedule"
)

// GetAvailabilitySlots 读取某个用户一周的空闲表，
// weekOffset 为 0 表示当前周期，1 表示下一周期
func (r *Repository) GetAvailabilitySlots(ownerID int64, weekOffset int32) ([]domain.TimeSlot, error) {
	query := `
		SELECT day_of_week, hour, status
		FROM availability_slots
		WHERE owner_id = $1 AND week_offset = $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, ownerID, weekOffset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.TimeSlot, 0)
	for rows.Next() {
		var slot domain.TimeSlot
		if err := rows.Scan(&slot.DayOfWeek, &slot.Hour, &slot.Status); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// ApplyAvailabilityEdits 在一个事务中持久化一批格子编辑。
// 编辑前应该已经通过空闲表引擎做过锁定检查，这里的 status 过滤
// 只是防止并发的报名把格子变成已确认后仍被覆盖的兜底。
func (r *Repository) ApplyAvailabilityEdits(ownerID int64, weekOffset int32, edits []domain.AvailabilityEdit) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery := `
		DELETE FROM availability_slots
		WHERE owner_id = $1 AND week_offset = $2 AND day_of_week = $3 AND hour = $4
			AND status NOT IN ('committed', 'blocked')
	`
	upsertQuery := `
		INSERT INTO availability_slots (owner_id, week_offset, day_of_week, hour, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, week_offset, day_of_week, hour)
		DO UPDATE SET status = EXCLUDED.status
		WHERE availability_slots.status NOT IN ('committed', 'blocked')
	`

	for _, edit := range edits {
		if edit.Removed {
			if _, err := tx.ExecContext(ctx, deleteQuery, ownerID, weekOffset, edit.DayOfWeek, edit.Hour); err != nil {
				return err
			}
			continue
		}

		if _, err := tx.ExecContext(ctx, upsertQuery, ownerID, weekOffset, edit.DayOfWeek, edit.Hour, edit.Status); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CommitEventSlots 在用户报名成功后，把活动覆盖的小时标记为已确认。
// 已确认和锁定状态只会由这里和策略子系统写入，编辑接口碰不到它们。
func (r *Repository) CommitEventSlots(userID int64, blocks []domain.EventBlock) error {
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
		INSERT INTO availability_slots (owner_id, week_offset, day_of_week, hour, status)
		VALUES ($1, 0, $2, $3, 'committed')
		ON CONFLICT (owner_id, week_offset, day_of_week, hour)
		DO UPDATE SET status = 'committed'
	`

	for _, block := range blocks {
		day, hours := schedule.HourSpan(block, schedule.EventToGridDayOffset)
		for _, hour := range hours {
			if _, err := tx.ExecContext(ctx, query, userID, day, hour); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// FreeEventSlots 在用户退出名单或活动取消后，把已确认的小时释放回来
func (r *Repository) FreeEventSlots(userID int64, blocks []domain.EventBlock) error {
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
		UPDATE availability_slots
		SET status = 'freed'
		WHERE owner_id = $1 AND week_offset = 0 AND day_of_week = $2 AND hour = $3
			AND status = 'committed'
	`

	for _, block := range blocks {
		day, hours := schedule.HourSpan(block, schedule.EventToGridDayOffset)
		for _, hour := range hours {
			if _, err := tx.ExecContext(ctx, query, userID, day, hour); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetRosterMemberSlots 读取某个活动名单上所有用户的空闲表，
// 作为热力图聚合的输入
func (r *Repository) GetRosterMemberSlots(eventID int64) (map[int64][]domain.TimeSlot, error) {
	query := `
		SELECT ra.user_id, avs.day_of_week, avs.hour, avs.status
		FROM roster_assignments ra
		LEFT JOIN availability_slots avs
			ON ra.user_id = avs.owner_id AND avs.week_offset = 0
		WHERE ra.event_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slotsByUser := make(map[int64][]domain.TimeSlot)
	for rows.Next() {
		var row struct {
			userID int64
			day    *int32
			hour   *int32
			status *domain.SlotStatus
		}

		if err := rows.Scan(&row.userID, &row.day, &row.hour, &row.status); err != nil {
			return nil, err
		}

		if _, exists := slotsByUser[row.userID]; !exists {
			slotsByUser[row.userID] = make([]domain.TimeSlot, 0)
		}

		if row.day == nil {
			// 该用户在名单上但还没有提交过任何空闲时间
			continue
		}

		slotsByUser[row.userID] = append(slotsByUser[row.userID], domain.TimeSlot{
			DayOfWeek: *row.day,
			Hour:      *row.hour,
			Status:    *row.status,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slotsByUser, nil
}

// RollWeekForward 把下一周期的空闲表搬到当前周期，
// 由运维定时任务在每周开始时调用
func (r *Repository) RollWeekForward(ownerID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 已确认的格子属于还未结束的报名，保留在当前周期中
	query := `
		DELETE FROM availability_slots
		WHERE owner_id = $1 AND week_offset = 0 AND status NOT IN ('committed', 'blocked')
	`
	if _, err := tx.ExecContext(ctx, query, ownerID); err != nil {
		return err
	}

	query = `
		UPDATE availability_slots
		SET week_offset = 0
		WHERE owner_id = $1 AND week_offset = 1
			AND NOT EXISTS (
				SELECT 1 FROM availability_slots cur
				WHERE cur.owner_id = $1 AND cur.week_offset = 0
					AND cur.day_of_week = availability_slots.day_of_week
					AND cur.hour = availability_slots.hour
			)
	`
	if _, err := tx.ExecContext(ctx, query, ownerID); err != nil {
		return err
	}

	return tx.Commit()
}
