package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/grid"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/roster"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/schedule"
)

// RoleSummary 是名单中某个职责的占用情况
type RoleSummary struct {
	Role     domain.RosterRole `json:"role"`
	Capacity int32             `json:"capacity"`
	Filled   int32             `json:"filled"`
	IsFull   bool              `json:"isFull"`
}

type RosterResponse struct {
	*domain.Roster
	Summary []RoleSummary `json:"summary"`
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	eventRoster, err := h.repository.FetchRoster(r.Context(), event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	summary := make([]RoleSummary, 0, len(eventRoster.Capacities))
	for _, role := range domain.RolesForMode(event.Mode) {
		capacity, exists := eventRoster.Capacities[role]
		if !exists {
			continue
		}
		summary = append(summary, RoleSummary{
			Role:     role,
			Capacity: capacity,
			Filled:   roster.FilledCount(role, eventRoster.Assignments),
			IsFull:   roster.IsFull(role, eventRoster.Assignments, eventRoster.Capacities),
		})
	}

	h.successResponse(w, r, "获取名单成功", RosterResponse{
		Roster:  eventRoster,
		Summary: summary,
	})
}

func (h *Handler) JoinRoster(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	event := r.Context().Value(EventCtx).(*domain.Event)

	var req struct {
		Role *string `json:"role" validate:"omitempty,oneof=tank healer dps flex"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var preferredRole *domain.RosterRole
	if req.Role != nil {
		role := domain.RosterRole(*req.Role)
		preferredRole = &role
	}

	assignment, err := h.rosterEngine.Join(r.Context(), event, myInfo.ID, preferredRole)
	if err != nil {
		switch {
		case errors.Is(err, roster.ErrRosterFull),
			errors.Is(err, roster.ErrAlreadyJoined),
			errors.Is(err, roster.ErrInvalidRole):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 报名成功后把活动覆盖的时段标记为已确认
	if err := h.repository.CommitEventSlots(myInfo.ID, event.Blocks); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 发送报名成功的通知邮件
	if err := h.publishMailMessage(domain.MailMessage{
		Type: "roster_joined",
		To:   myInfo.Email,
		Data: domain.RosterJoinedMailData{
			DisplayName: myInfo.DisplayName,
			EventTitle:  event.Title,
			Role:        string(assignment.Role),
			Position:    assignment.Position,
		},
	}); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "报名成功", assignment)
}

func (h *Handler) LeaveRoster(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	event := r.Context().Value(EventCtx).(*domain.Event)

	if err := h.rosterEngine.Leave(r.Context(), event.ID, myInfo.ID); err != nil {
		switch {
		case errors.Is(err, roster.ErrNotJoined):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 退出后释放被报名占用的时段
	if err := h.repository.FreeEventSlots(myInfo.ID, event.Blocks); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "退出名单成功", nil)
}

type HeatmapResponse struct {
	Cells []domain.HeatmapCell `json:"cells"`
	Mode  schedule.CountMode   `json:"mode"`
	Stale bool                 `json:"stale"` // true 表示数据库读取失败，返回的是上一次成功聚合的结果
}

// GetRosterHeatmap 聚合名单上所有成员的空闲表。
// 数据库不可用时回退到 redis 中上一次成功的结果，并带上 stale 标记
func (h *Handler) GetRosterHeatmap(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	mode := schedule.CountMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = schedule.CountAvailability
	}
	if !mode.IsValid() {
		h.errorResponse(w, r, "无效的统计口径")
		return
	}

	cacheKey := fmt.Sprintf("heatmap_%d_%s", event.ID, mode)

	slotsByUser, err := h.repository.GetRosterMemberSlots(event.ID)
	if err != nil {
		// 尝试返回上一次成功聚合的结果
		cached, cacheErr := h.redisClient.Get(r.Context(), cacheKey).Result()
		if cacheErr != nil {
			if !errors.Is(cacheErr, redis.Nil) {
				h.logInternalServerError(r, cacheErr)
			}
			h.internalServerError(w, r, err)
			return
		}

		cells := make([]domain.HeatmapCell, 0)
		if err := json.Unmarshal([]byte(cached), &cells); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		h.successResponse(w, r, "获取热力图成功（缓存数据）", HeatmapResponse{
			Cells: cells,
			Mode:  mode,
			Stale: true,
		})
		return
	}

	grids := make([]*grid.Grid, 0, len(slotsByUser))
	for _, slots := range slotsByUser {
		g, err := grid.FromSlots(slots)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		grids = append(grids, g)
	}

	cells, err := schedule.Aggregate(grids, schedule.FullWeek(), mode)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if data, err := json.Marshal(cells); err == nil {
		h.redisClient.Set(r.Context(), cacheKey, data, time.Duration(h.config.Heatmap.CacheExpiration)*time.Second)
	}

	h.successResponse(w, r, "获取热力图成功", HeatmapResponse{
		Cells: cells,
		Mode:  mode,
		Stale: false,
	})
}
