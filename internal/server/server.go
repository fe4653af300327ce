// Package server exposes source stripping over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mobiless/internal/logger"
	"github.com/samcharles93/mobiless/internal/metrics"
	"github.com/samcharles93/mobiless/pkg/mobi"
)

const (
	// MIMEMobipocket is the media type of a MOBI book.
	MIMEMobipocket = "application/x-mobipocket-ebook"

	HeaderRequestID       = "X-Request-Id"
	HeaderRemovedBytes    = "X-Removed-Bytes"
	HeaderRemovedSections = "X-Removed-Sections"

	// DefaultMaxUpload bounds request bodies when Config.MaxUpload is unset.
	DefaultMaxUpload int64 = 256 << 20
)

type Config struct {
	MaxUpload int64
	Logger    logger.Logger
}

type Server struct {
	maxUpload int64
	log       logger.Logger
	clock     func() time.Time
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func New(cfg Config) *Server {
	s := &Server{
		maxUpload: cfg.MaxUpload,
		log:       cfg.Logger,
		clock:     time.Now,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)

	e.POST("/v1/strip", s.handleStrip)
	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", func(c *echo.Context) error {
		metrics.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		id := c.Request().Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(HeaderRequestID, id)
		return next(c)
	}
}

func (s *Server) handleStrip(c *echo.Context) error {
	log := s.log.With("request_id", c.Response().Header().Get(HeaderRequestID))
	data, err := s.readBody(c)
	if err != nil {
		return writeRequestError(c, err)
	}

	started := s.clock()
	f, err := mobi.Open(data, len(data), mobi.WithLogger(log))
	if err != nil {
		metrics.Observe(metrics.ResultInvalid, 0, 0, s.clock().Sub(started).Seconds())
		return writeFormatError(c, err)
	}
	res, err := f.RemoveSources()
	if err != nil {
		metrics.Observe(metrics.ResultInvalid, 0, 0, s.clock().Sub(started).Seconds())
		return writeFormatError(c, err)
	}
	result := metrics.ResultStripped
	if res.BytesRemoved == 0 {
		result = metrics.ResultUnchanged
	}
	metrics.Observe(result, len(res.Removed), res.BytesRemoved, s.clock().Sub(started).Seconds())
	log.Info("stripped upload", "length", res.Length, "bytes_removed", res.BytesRemoved)

	h := c.Response().Header()
	h.Set(HeaderRemovedBytes, strconv.Itoa(res.BytesRemoved))
	h.Set(HeaderRemovedSections, strconv.Itoa(len(res.Removed)))
	return c.Blob(http.StatusOK, MIMEMobipocket, f.Bytes())
}

func (s *Server) handleInspect(c *echo.Context) error {
	data, err := s.readBody(c)
	if err != nil {
		return writeRequestError(c, err)
	}
	f, err := mobi.Open(data, len(data))
	if err != nil {
		return writeFormatError(c, err)
	}
	info, err := f.Info()
	if err != nil {
		return writeFormatError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type requestError struct {
	status int
	typ    string
	msg    string
}

func (e *requestError) Error() string { return e.msg }

// readBody reads the whole request body, bounded by the upload limit.
func (s *Server) readBody(c *echo.Context) ([]byte, error) {
	tooLarge := &requestError{
		status: http.StatusRequestEntityTooLarge,
		typ:    "too_large",
		msg:    fmt.Sprintf("body exceeds %d bytes", s.maxUpload),
	}
	req := c.Request()
	if req.ContentLength > s.maxUpload {
		return nil, tooLarge
	}
	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxUpload+1))
	if err != nil {
		return nil, &requestError{status: http.StatusBadRequest, typ: "invalid_request_error", msg: err.Error()}
	}
	if int64(len(data)) > s.maxUpload {
		return nil, tooLarge
	}
	if len(data) == 0 {
		return nil, &requestError{status: http.StatusBadRequest, typ: "invalid_request_error", msg: "empty body"}
	}
	return data, nil
}

func writeRequestError(c *echo.Context, err error) error {
	var re *requestError
	if errors.As(err, &re) {
		return writeError(c, re.status, re.typ, re.msg)
	}
	return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
}

func writeFormatError(c *echo.Context, err error) error {
	if errors.Is(err, mobi.ErrFormat) {
		return writeError(c, http.StatusUnprocessableEntity, "format_error", err.Error())
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}
