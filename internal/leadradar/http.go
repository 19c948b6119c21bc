// Пакет leadradar содержит эталонный сервер BuilderAPI: HTTP обработчики echo поверх GORM, аутентификацию арендатора, метрики Prometheus и запуск сервера.
//
// Основные возможности:
//   - Маршруты форм и конструктора (/api/forms/...).
//   - Конверт ответа {ok, data} / {ok:false, error} с идентификатором запроса.
//   - Метрики HTTP и операций конструктора на отдельном порту.
//   - Корректная остановка по отмене контекста.
package leadradar

// @title LeadRadar Builder API
// @version 1.0
// @description API конструктора форм захвата лидов.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @BasePath /
import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/config"
	"github.com/bmue76/leadradar/internal/leadradar/cronmanager"
	"github.com/bmue76/leadradar/internal/leadradar/maintenance"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.5 init -ot json --generalInfo http.go --dir ./ --output ../../docs --parseInternal
//go:generate go run ../../cmd/docsgen -src apierrors/apierrors.go -out ../../docs/api_errors.md

const shutdownTimeout = 10 * time.Second

type Services struct {
	db      *gorm.DB
	cfg     *config.Config
	version string

	builderOps *prometheus.CounterVec
}

func NewServices(db *gorm.DB, cfg *config.Config, version string) *Services {
	return &Services{
		db:      db,
		cfg:     cfg,
		version: version,
		builderOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadradar",
			Name:      "builder_ops_total",
			Help:      "Builder operations by op and result",
		}, []string{"op", "result"}),
	}
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "LeadRadar")
		return next(c)
	}
}

// NewEcho собирает API сервер. Метрики HTTP и операций регистрируются в reg.
func (s *Services) NewEcho(reg prometheus.Registerer) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		EErrorMsgStatus(c, err, code)
	}

	promMiddleware, err := echoprometheus.MiddlewareConfig{
		Subsystem:  "leadradar",
		Registerer: reg,
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}
	if err := reg.Register(s.builderOps); err != nil {
		return nil, err
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(ServerHeader)
	if s.cfg.CORSEnable {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType},
			ExposeHeaders: []string{echo.HeaderXRequestID},
		}))
	}
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{Limit: "1M"}))
	e.Use(promMiddleware)

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	apiGroup.GET("version/", func(c echo.Context) error {
		return EOk(c, http.StatusOK, map[string]interface{}{
			"version": s.version,
		})
	})

	apiGroup.GET("_health/", func(c echo.Context) error {
		sqlDB, err := s.db.DB()
		if err != nil {
			return EError(c, err)
		}
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return EErrorMsgStatus(c, err, http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	if s.cfg.SwaggerEnable {
		apiGroup.GET("swagger.json/", s.getSwaggerJSON)
		apiGroup.GET("swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/api/swagger.json/")))
	}

	formsGroup := apiGroup.Group("forms/", TenantMiddleware([]byte(s.cfg.SecretKey)))
	s.AddFormServices(formsGroup)

	return e, nil
}

// Server запускает API и метрики и блокируется до отмены ctx или ошибки одного из слушателей.
func Server(ctx context.Context, db *gorm.DB, cfg *config.Config, version string) error {
	s := NewServices(db, cfg, version)

	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "leadradar",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))
	if err := prometheus.Register(bootTimeGauge); err != nil {
		return err
	}

	e, err := s.NewEcho(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	stats, err := maintenance.NewFormStatsCollector(db, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	jobRegistry := cronmanager.JobRegistry{
		"form_stats": cronmanager.Job{
			Func:     stats.Collect,
			Schedule: "@every 1m",
		},
	}
	if cfg.ArchivedRetentionDays > 0 {
		jobRegistry["archived_forms_clean"] = cronmanager.Job{
			Func:     maintenance.NewArchivedFormsCleaner(db, cfg.ArchivedRetention()).CleanArchivedForms,
			Schedule: "30 3 * * *",
		}
	}
	cron := cronmanager.NewCronManager(jobRegistry)
	if err := cron.LoadJobs(); err != nil {
		return err
	}
	cron.Start()
	defer cron.Stop()
	stats.Collect()

	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandler())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Start API server", "addr", cfg.ListenAddr, "version", version)
		return ignoreClosed(e.Start(cfg.ListenAddr))
	})
	g.Go(func() error {
		slog.Info("Start metrics server", "addr", cfg.MetricsAddr)
		return ignoreClosed(metrics.Start(cfg.MetricsAddr))
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(e.Shutdown(shutdownCtx), metrics.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
