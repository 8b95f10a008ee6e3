package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirsrus/embmonitor/controller"
	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/metrics"
	"github.com/kirsrus/embmonitor/service"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/sirupsen/logrus"
)

const (
	waitRestartStartServer = 10 * time.Second
	shutdownTimeout        = 5 * time.Second
	address                = ":8080"
	// Каждые 10 секунд подавать в канал (ping), иначе клиент его закроет
	pingInterval = 10 * time.Second
)

// ConfigWeb конфигурация структуры Web
type ConfigWeb struct {
	Log *logrus.Logger

	// Адрес HTTP-сервера в виде host:port
	Address string
}

// Web служба WEB-сервисов. Инициализируется через NewWeb. Даёт REST API управления устройством,
// поток показаний по WebSocket и метрики
type Web struct {
	ctx context.Context
	log *logrus.Entry
	e   *echo.Echo

	monitorCtl controller.MonitorCtl

	upgrader     websocket.Upgrader
	subscribers  *sync.Map
	pingInterval time.Duration

	address   string
	serveOnce sync.Once
}

// NewWeb конструктор структуры Web. Сервер стартует через Serve после регистрации хэндлеров
// и останавливается при отмене ctx
func NewWeb(ctx context.Context, monitorCtl controller.MonitorCtl, config *ConfigWeb) (service.WebSvc, error) {
	if config == nil {
		return nil, errors.New("не установлена конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	if monitorCtl == nil {
		return nil, errors.New("не передан контроллер мониторинга")
	}

	web := Web{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "web",
			"scope":  "service",
		}),
		e: echo.New(),

		monitorCtl: monitorCtl,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		subscribers:  new(sync.Map),
		pingInterval: pingInterval,

		address: address,
	}
	if config.Address != "" {
		web.address = config.Address
	}

	web.e.HideBanner = true
	web.e.HidePort = true
	web.e.Use(middleware.Recover())
	web.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	web.e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &web, nil
}

// Serve запускает HTTP-сервер. Повторные вызовы ничего не делают
func (m *Web) Serve() {
	m.serveOnce.Do(func() {
		go m.serve()
	})
}

func (m *Web) serve() {
	go func() {
		<-m.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := m.e.Shutdown(ctx); err != nil {
			m.log.Warnf("ошибка остановки HTTP-сервера: %v", err)
		}
	}()

	for {
		m.log.Infof("старт HTTP-сервера на %s", m.address)
		err := m.e.Start(m.address)
		if m.ctx.Err() != nil {
			m.log.Info("HTTP-сервер остановлен")
			return
		}
		m.log.Errorf("сервер неожиданно завершил работу: %v", err)
		select {
		case <-m.ctx.Done():
			return
		case <-time.After(waitRestartStartServer):
		}
	}
}

// Ответ с последними показаниями
type sampleResponse struct {
	Sample     model.TelemetrySample  `json:"sample"`
	Monitoring map[model.Channel]bool `json:"monitoring"`
}

// SampleApi последние не устаревшие показания каналов и состояние мониторинга
func (m *Web) SampleApi(path string) {
	m.e.GET(path, func(c echo.Context) error {
		return c.JSON(http.StatusOK, sampleResponse{
			Sample:     m.monitorCtl.Latest(),
			Monitoring: m.monitorCtl.Monitoring(),
		})
	})
}

type monitoringRequest struct {
	Enabled *bool `json:"enabled"`
}

type thresholdRequest struct {
	// Порог строкой ("23.5") или числом (23.5)
	Value json.RawMessage `json:"value"`
}

type commandResponse struct {
	Command string `json:"command"`
}

// CommandApi команды устройству: path/monitoring/:channel и path/threshold/:channel
func (m *Web) CommandApi(path string) {
	path = strings.TrimSuffix(path, "/")

	m.e.POST(path+"/monitoring/:channel", func(c echo.Context) error {
		channel, ok := model.ParseChannel(c.Param("channel"))
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "неизвестный канал: " + c.Param("channel")})
		}
		var req monitoringRequest
		if err := c.Bind(&req); err != nil || req.Enabled == nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "ожидается {\"enabled\": true|false}"})
		}
		cmd, err := m.monitorCtl.SetMonitoring(channel, *req.Enabled)
		if err != nil {
			return m.commandError(c, err)
		}
		return c.JSON(http.StatusOK, commandResponse{Command: cmd.String()})
	})

	m.e.POST(path+"/threshold/:channel", func(c echo.Context) error {
		channel, ok := model.ParseChannel(c.Param("channel"))
		if !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "неизвестный канал: " + c.Param("channel")})
		}
		var req thresholdRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"message": "ожидается {\"value\": \"<порог>\"}"})
		}
		cmd, err := m.monitorCtl.SetThreshold(channel, thresholdText(req.Value))
		if err != nil {
			return m.commandError(c, err)
		}
		return c.JSON(http.StatusOK, commandResponse{Command: cmd.String()})
	})
}

// Ошибка ввода пользователя даёт 400, ошибка связи с устройством 503
func (m *Web) commandError(c echo.Context, err error) error {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": validationErr.Error()})
	}
	m.log.Warn(err)
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"message": "ошибка: " + err.Error()})
}

// Текст порога из тела запроса. Строка JSON раскавычивается, число берётся как есть
func thresholdText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}

// MetricsApi метрики Prometheus
func (m *Web) MetricsApi(path string) {
	m.e.GET(path, echo.WrapHandler(metrics.Handler()))
}
