package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hGPhillies/Project-NNTP-Niklas/internal/domain"
	"github.com/hGPhillies/Project-NNTP-Niklas/internal/engine"
	"github.com/labstack/echo/v5"
)

// Operations is what the HTTP surface needs from the engine service.
type Operations interface {
	Authenticate(ctx context.Context, s domain.Session) domain.Result
	ListGroups(ctx context.Context, s domain.Session) domain.Result
	ListArticlesInGroup(ctx context.Context, s domain.Session, group string) domain.Result
	GetHeaders(ctx context.Context, s domain.Session, articleID, group string) domain.Result
	GetArticle(ctx context.Context, s domain.Session, articleID, group string) domain.Result
	History(ctx context.Context, limit int) ([]*domain.OperationRecord, error)
	Operation(ctx context.Context, id string) (*domain.OperationRecord, error)
}

type OperationsController struct {
	Ops Operations

	// Defaults supplies host, port, timeout and principal when the
	// request does not override them.
	Defaults domain.Session
}

// Authenticate runs the handshake only
func (ctrl *OperationsController) Authenticate(c *echo.Context) error {
	s, err := ctrl.session(c)
	if err != nil {
		return err
	}
	return respond(c, ctrl.Ops.Authenticate(c.Request().Context(), s))
}

func (ctrl *OperationsController) ListGroups(c *echo.Context) error {
	s, err := ctrl.session(c)
	if err != nil {
		return err
	}
	return respond(c, ctrl.Ops.ListGroups(c.Request().Context(), s))
}

func (ctrl *OperationsController) ListArticles(c *echo.Context) error {
	s, err := ctrl.session(c)
	if err != nil {
		return err
	}
	return respond(c, ctrl.Ops.ListArticlesInGroup(c.Request().Context(), s, pathParam(c, "name")))
}

func (ctrl *OperationsController) GetHeaders(c *echo.Context) error {
	s, err := ctrl.session(c)
	if err != nil {
		return err
	}
	res := ctrl.Ops.GetHeaders(c.Request().Context(), s, pathParam(c, "id"), c.QueryParam("group"))
	return respond(c, res)
}

func (ctrl *OperationsController) GetArticle(c *echo.Context) error {
	s, err := ctrl.session(c)
	if err != nil {
		return err
	}
	res := ctrl.Ops.GetArticle(c.Request().Context(), s, pathParam(c, "id"), c.QueryParam("group"))
	return respond(c, res)
}

// History lists recorded operations, newest first
func (ctrl *OperationsController) History(c *echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	records, err := ctrl.Ops.History(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read history")
	}
	return c.JSON(http.StatusOK, records)
}

func (ctrl *OperationsController) HistoryItem(c *echo.Context) error {
	rec, err := ctrl.Ops.Operation(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, engine.ErrNoHistory):
		return echo.NewHTTPError(http.StatusNotFound, "History is disabled")
	case err != nil:
		return echo.NewHTTPError(http.StatusNotFound, "Operation not found")
	}
	return c.JSON(http.StatusOK, rec)
}

// session applies query overrides and HTTP basic credentials on top of
// the configured defaults.
func (ctrl *OperationsController) session(c *echo.Context) (domain.Session, error) {
	s := ctrl.Defaults

	if v := c.QueryParam("host"); v != "" {
		s.Host = v
	}
	if v := c.QueryParam("port"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return s, echo.NewHTTPError(http.StatusBadRequest, "invalid port")
		}
		s.Port = port
	}
	if v := c.QueryParam("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return s, echo.NewHTTPError(http.StatusBadRequest, "invalid timeout")
		}
		s.Timeout = d
	}
	if user, pass, ok := c.Request().BasicAuth(); ok {
		s.Username, s.Password = user, pass
	}
	return s, nil
}

func pathParam(c *echo.Context, name string) string {
	v := c.Param(name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}
