package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	promptx "github.com/tanpawarit/rulebase-agent/agent/prompt"
)

// Runner executes one agent request.
type Runner interface {
	Run(ctx context.Context, req contractx.RunRequest) (contractx.RunResponse, error)
}

type Catalog interface {
	Infos() []promptx.ToolInfo
}

type Server struct {
	echo    *echo.Echo
	runner  Runner
	catalog Catalog
}

type errorBody struct {
	Detail string `json:"detail"`
}

type toolBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// New mounts POST /agent, GET /ping, GET /tools and GET /metrics. A nil
// gatherer serves the default prometheus registry.
func New(runner Runner, catalog Catalog, gatherer prometheus.Gatherer) (*Server, error) {
	if runner == nil {
		return nil, errors.New("agent runner is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	s := &Server{echo: e, runner: runner, catalog: catalog}
	e.POST("/agent", s.runAgent)
	e.GET("/ping", s.ping)
	e.GET("/tools", s.tools)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("http server listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) runAgent(c echo.Context) error {
	var req contractx.RunRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	resp, err := s.runner.Run(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) tools(c echo.Context) error {
	infos := s.catalog.Infos()
	out := make([]toolBody, 0, len(infos))
	for _, info := range infos {
		out = append(out, toolBody{Name: info.Name, Description: info.Description})
	}
	return c.JSON(http.StatusOK, out)
}

func handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	case errors.Is(err, contractx.ErrValidation):
		code = http.StatusBadRequest
	}

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("agent request failed")
	}
	if !c.Response().Committed {
		_ = c.JSON(code, errorBody{Detail: msg})
	}
}
