package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/config"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/repository"
)

// Service 负责加载和保存用户的展示偏好。
// 偏好总是作为返回值显式传给调用方，不挂在任何全局状态上。
type Service struct {
	cfg         *config.Config
	repository  *repository.Repository
	redisClient *redis.Client
}

func NewService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client) *Service {
	return &Service{
		cfg:         cfg,
		repository:  repo,
		redisClient: rdb,
	}
}

func (s *Service) cacheKey(userID int64) string {
	return fmt.Sprintf("preferences_%d", userID)
}

func (s *Service) defaults(userID int64) *domain.Preferences {
	return &domain.Preferences{
		UserID:    userID,
		ViewMode:  domain.ViewMode(s.cfg.Preference.DefaultViewMode),
		Timezone:  s.cfg.Preference.DefaultTimezone,
		WeekStart: s.cfg.Preference.DefaultWeekStart,
	}
}

// Load 按缓存、数据库、配置默认值的顺序解析用户偏好。
// 用户从未保存过偏好时返回默认值，不视为错误。
func (s *Service) Load(ctx context.Context, userID int64) (*domain.Preferences, error) {
	cached, err := s.redisClient.Get(ctx, s.cacheKey(userID)).Result()
	if err == nil {
		prefs := &domain.Preferences{}
		if err := json.Unmarshal([]byte(cached), prefs); err == nil {
			return prefs, nil
		}
		// 缓存内容损坏时当作未命中，回落到数据库
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	prefs, err := s.repository.GetPreferences(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.defaults(userID), nil
		}
		return nil, err
	}

	if data, err := json.Marshal(prefs); err == nil {
		s.redisClient.Set(ctx, s.cacheKey(userID), data, time.Duration(s.cfg.Preference.CacheExpiration)*time.Second)
	}

	return prefs, nil
}

// Save 持久化偏好并让缓存失效，prefs 的 Version 会被更新为写入后的值
func (s *Service) Save(ctx context.Context, prefs *domain.Preferences) error {
	if err := s.repository.UpsertPreferences(prefs); err != nil {
		return err
	}

	if err := s.redisClient.Del(ctx, s.cacheKey(prefs.UserID)).Err(); err != nil {
		return err
	}

	return nil
}
