package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/schedule"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/utils"
)

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string                `json:"title" validate:"required"`
		Description string                `json:"description"`
		Mode        string                `json:"mode" validate:"required,oneof=role_based generic"`
		Capacities  domain.RosterCapacity `json:"capacities" validate:"required"`
		Blocks      []domain.EventBlock   `json:"blocks" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	mode := domain.GameMode(req.Mode)
	if err := utils.ValidateEventBlocks(req.Blocks); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateCapacities(mode, req.Capacities); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	subString := r.Context().Value(SubCtxKey).(string)
	createdBy, err := strconv.ParseInt(subString, 10, 64)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	event := &domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Mode:        mode,
		Capacities:  req.Capacities,
		Blocks:      req.Blocks,
		CreatedBy:   createdBy,
	}

	if err := h.repository.CreateEvent(event); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "活动创建成功", event)
}

// EventWithMatch 是活动列表的展示项，带上是否命中当前用户空闲时间的标记
type EventWithMatch struct {
	*domain.Event
	MatchesAvailability bool `json:"matchesAvailability"`
}

// GetAllEvents 返回活动列表，命中当前用户空闲时间的活动排在前面
func (h *Handler) GetAllEvents(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	events, err := h.repository.GetAllEvents()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	g, err := h.loadGrid(myInfo.ID, 0)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	matching, rest := schedule.PartitionByAvailability(events, g, schedule.EventToGridDayOffset)

	result := make([]EventWithMatch, 0, len(events))
	for _, event := range matching {
		result = append(result, EventWithMatch{Event: event, MatchesAvailability: true})
	}
	for _, event := range rest {
		result = append(result, EventWithMatch{Event: event, MatchesAvailability: false})
	}

	h.successResponse(w, r, "获取活动列表成功", result)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)
	h.successResponse(w, r, "获取活动成功", event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	var req struct {
		Title       *string               `json:"title"`
		Description *string               `json:"description"`
		Mode        *string               `json:"mode" validate:"omitempty,oneof=role_based generic"`
		Capacities  domain.RosterCapacity `json:"capacities"`
		Blocks      []domain.EventBlock   `json:"blocks"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Mode != nil {
		event.Mode = domain.GameMode(*req.Mode)
	}
	if req.Capacities != nil {
		event.Capacities = req.Capacities
	}
	if req.Blocks != nil {
		event.Blocks = req.Blocks
	}

	if err := utils.ValidateEventBlocks(event.Blocks); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}
	if err := utils.ValidateCapacities(event.Mode, event.Capacities); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// 修改名额后已有的名单项不能越界
	roster, err := h.repository.FetchRoster(r.Context(), event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateRosterAssignments(roster.Assignments, event.Capacities); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateEvent(event); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "活动已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新活动成功", event)
}

// DeleteEvent 删除活动，同时清空名单并释放所有成员被占用的时段
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	event := r.Context().Value(EventCtx).(*domain.Event)

	assignments, err := h.repository.ReleaseAllAssignments(event.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, assignment := range assignments {
		if err := h.repository.FreeEventSlots(assignment.UserID, event.Blocks); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	if err := h.repository.DeleteEvent(event.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除活动成功", nil)
}
