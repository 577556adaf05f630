package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
)

// gridDayIndex 把 time.Weekday 换算成空闲表的天编号（星期日为 0）
func gridDayIndex(weekday time.Weekday) int32 {
	return int32(weekday)
}

func (h *Handler) loadGrid(userID int64, weekOffset int32) (*grid.Grid, error) {
	slots, err := h.repository.GetAvailabilitySlots(userID, weekOffset)
	if err != nil {
		return nil, err
	}
	return grid.FromSlots(slots)
}

// GetMyAvailability 返回当前用户的一周空闲表。
// 带 projected=true 时做滚动周投影：已经过去的格子显示下一周期的数据
func (h *Handler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	current, err := h.loadGrid(myInfo.ID, 0)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if r.URL.Query().Get("projected") != "true" {
		h.successResponse(w, r, "获取空闲表成功", current.Slots())
		return
	}

	next, err := h.loadGrid(myInfo.ID, 1)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// "现在"按用户偏好的时区计算
	prefs, err := h.settings.Load(r.Context(), myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	projector := &grid.Projector{
		Current: current,
		Next:    next,
		Clock: grid.WeekClock{
			TodayIndex:  gridDayIndex(now.Weekday()),
			CurrentHour: float64(now.Hour()) + float64(now.Minute())/60,
		},
	}

	h.successResponse(w, r, "获取空闲表成功", projector.ResolveAll())
}

// UpdateMyAvailability 持久化一批画格会话产生的编辑。
// 先在内存中的空闲表上重放一遍，确保锁定的格子不会被修改
func (h *Handler) UpdateMyAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		WeekOffset int32                     `json:"weekOffset" validate:"min=0,max=1"`
		Edits      []domain.AvailabilityEdit `json:"edits" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	g, err := h.loadGrid(myInfo.ID, req.WeekOffset)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, edit := range req.Edits {
		if edit.Removed {
			err = g.Remove(edit.DayOfWeek, edit.Hour)
		} else {
			err = g.Upsert(edit.DayOfWeek, edit.Hour, edit.Status)
		}

		if err != nil {
			switch {
			case errors.Is(err, grid.ErrSlotLocked),
				errors.Is(err, grid.ErrOutOfRange),
				errors.Is(err, grid.ErrInvalidStatus):
				h.errorResponse(w, r, err.Error())
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
	}

	if err := h.repository.ApplyAvailabilityEdits(myInfo.ID, req.WeekOffset, req.Edits); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "保存空闲表成功", g.Slots())
}
