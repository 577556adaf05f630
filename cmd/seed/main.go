package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/config"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/repository"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/roster"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/seed"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var eventID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机活动, 3: 插入随机空闲表, 4: 插入随机报名记录, 5: 生成完整演示数据, 6: 周期滚动)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&eventID, "event-id", 0, "随机插入报名记录的活动 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的活动数量")
		} else {
			// 活动的创建者从已有用户中随机选取
			users, err := repo.GetAllUsers()
			if err != nil {
				slog.Error("无法获取所有用户", slog.String("error", err.Error()))
				return
			}
			if len(users) == 0 {
				slog.Error("数据库中没有用户，请先插入用户")
				return
			}

			cnt := n
			for i := 0; i < n; i++ {
				event := utils.GenerateRandomEvent(users[rand.Intn(len(users))].ID)
				if err := repo.CreateEvent(event); err != nil {
					slog.Error("无法插入活动", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入活动成功", slog.Int("count", n-cnt))
		}
	case 3:
		// 为所有用户生成当前周期和下一周期的空闲表
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, user := range users {
			for weekOffset := int32(0); weekOffset <= 1; weekOffset++ {
				edits := utils.GenerateRandomAvailabilityEdits()
				if err := repo.ApplyAvailabilityEdits(user.ID, weekOffset, edits); err != nil {
					slog.Error("无法插入空闲表", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
					continue
				}
				cnt++
			}
		}

		slog.Info("插入空闲表成功", slog.Int("count", cnt))
	case 4:
		if eventID <= 0 {
			slog.Error("请输入合法的活动 ID")
			return
		}

		// 获取对应的活动
		event, err := repo.GetEventByID(eventID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的活动不存在", slog.Int64("event_id", eventID))
			default:
				slog.Error("无法获取活动", slog.String("error", err.Error()))
			}
			return
		}

		// 获取所有用户并随机报名
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}

		engine := roster.NewEngine(repo, cfg.Roster.JoinMaxAttempts)

		cnt := 0
		for _, user := range users {
			var preferredRole *domain.RosterRole
			if event.Mode == domain.GameModeRoleBased {
				allowed := domain.RolesForMode(event.Mode)
				role := allowed[rand.Intn(len(allowed))]
				preferredRole = &role
			}

			if _, err := engine.Join(context.Background(), event, user.ID, preferredRole); err != nil {
				if errors.Is(err, roster.ErrRosterFull) {
					break
				}
				slog.Error("无法插入报名记录", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
				continue
			}

			if err := repo.CommitEventSlots(user.ID, event.Blocks); err != nil {
				slog.Error("无法标记已确认时段", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
			}

			cnt++
		}

		slog.Info("插入报名记录成功", slog.Int("count", cnt))
	case 5:
		seed.SeedDemoData(cfg, repo, n, n/2+1)
	case 6:
		// 每周开始时由定时任务调用，把下一周期的空闲表搬到当前周期
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, user := range users {
			if err := repo.RollWeekForward(user.ID); err != nil {
				slog.Error("周期滚动失败", slog.Int64("user_id", user.ID), slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("周期滚动成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
