package seed

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/config"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/repository"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/roster"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/utils"
)

// SeedDemoData 一次性构造一个演示用的公会：
// 随机用户、每人一份空闲表、若干活动，以及随机的报名记录
func SeedDemoData(cfg *config.Config, repo *repository.Repository, userCount int, eventCount int) {
	// 插入随机用户
	users := make([]*domain.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机用户", slog.String("error", err.Error()))
			continue
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入用户", slog.String("error", err.Error()))
			continue
		}

		users = append(users, user)
	}
	slog.Info("插入用户成功", slog.Int("count", len(users)))

	if len(users) == 0 {
		slog.Error("没有可用的用户，终止演示数据生成")
		return
	}

	// 为每个用户生成两个周期的空闲表
	for _, user := range users {
		for weekOffset := int32(0); weekOffset <= 1; weekOffset++ {
			edits := utils.GenerateRandomAvailabilityEdits()
			if err := repo.ApplyAvailabilityEdits(user.ID, weekOffset, edits); err != nil {
				slog.Error("无法插入空闲表", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
			}
		}
	}
	slog.Info("插入空闲表成功", slog.Int("count", len(users)*2))

	// 插入随机活动
	events := make([]*domain.Event, 0, eventCount)
	for i := 0; i < eventCount; i++ {
		event := utils.GenerateRandomEvent(users[rand.Intn(len(users))].ID)
		if err := repo.CreateEvent(event); err != nil {
			slog.Error("无法插入活动", slog.String("error", err.Error()))
			continue
		}

		events = append(events, event)
	}
	slog.Info("插入活动成功", slog.Int("count", len(events)))

	// 让随机的一部分用户报名每个活动
	engine := roster.NewEngine(repo, cfg.Roster.JoinMaxAttempts)
	ctx := context.Background()

	joined := 0
	for _, event := range events {
		for _, user := range users {
			if rand.Intn(2) == 0 {
				continue
			}

			var preferredRole *domain.RosterRole
			if event.Mode == domain.GameModeRoleBased {
				allowed := domain.RolesForMode(event.Mode)
				role := allowed[rand.Intn(len(allowed))]
				preferredRole = &role
			}

			if _, err := engine.Join(ctx, event, user.ID, preferredRole); err != nil {
				// 名额满了是正常情况，换下一个活动
				break
			}

			if err := repo.CommitEventSlots(user.ID, event.Blocks); err != nil {
				slog.Error("无法标记已确认时段", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
			}

			joined++
		}
	}
	slog.Info("插入报名记录成功", slog.Int("count", joined))
}
