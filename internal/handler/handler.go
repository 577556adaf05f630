package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/guildtools-dev/guild-scheduler/backend/internal/config"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/domain"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/repository"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/roster"
	"github.com/guildtools-dev/guild-scheduler/backend/internal/settings"
)

type Handler struct {
	validate     *validator.Validate
	config       *config.Config
	repository   *repository.Repository
	translator   ut.Translator
	mailChannel  *amqp.Channel
	redisClient  *redis.Client
	settings     *settings.Service
	rosterEngine *roster.Engine

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:     validate,
		config:       cfg,
		repository:   repo,
		translator:   trans,
		mailChannel:  mailCh,
		redisClient:  rdb,
		settings:     settings.NewService(cfg, repo, rdb),
		rosterEngine: roster.NewEngine(repo, cfg.Roster.JoinMaxAttempts),

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
			r.Route("/preferences", func(r chi.Router) {
				r.Get("/", h.GetMyPreferences)
				r.Patch("/", h.UpdateMyPreferences)
			})
			r.Route("/availability", func(r chi.Router) {
				r.Get("/", h.GetMyAvailability)
				r.With(h.preventInactiveMember).Post("/", h.UpdateMyAvailability)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 所有成员都有权限查看其他人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleOrganizer, domain.RoleAdmin})).Post("/", h.CreateEvent)
			r.With(h.myInfo).Get("/", h.GetAllEvents)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.eventCtx)
				r.Get("/", h.GetEvent)
				r.With(h.RequiredRole([]domain.Role{domain.RoleOrganizer, domain.RoleAdmin})).Patch("/", h.UpdateEvent)
				r.With(h.RequiredRole([]domain.Role{domain.RoleOrganizer, domain.RoleAdmin})).Delete("/", h.DeleteEvent)
				r.Route("/roster", func(r chi.Router) {
					r.Get("/", h.GetRoster)
					r.Get("/heatmap", h.GetRosterHeatmap)
					r.Route("/join", func(r chi.Router) {
						r.Use(h.myInfo)
						r.Use(h.preventInactiveMember)
						r.Post("/", h.JoinRoster)
					})
					r.With(h.myInfo).Post("/leave", h.LeaveRoster)
				})
			})
		})
	})
}
