package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/univlib/circulation-service/internal/errs"
	"github.com/univlib/circulation-service/internal/model"
	"github.com/univlib/circulation-service/pkg/validate"
)

type Handler struct {
	circulationSvc CirculationService
	log            *zap.Logger
}

func New(circulationSvc CirculationService, log *zap.Logger) *Handler {
	return &Handler{
		circulationSvc: circulationSvc,
		log:            log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig()),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
	)

	api.POST("/borrows", h.Borrow)
	api.POST("/borrows/:recordId/return", h.Return)
	api.POST("/holds", h.PlaceHold)
	api.POST("/reservations", h.Reserve)
	api.DELETE("/reservations/:reservationId", h.CancelReservation)
	api.GET("/reservations/queue-position", h.QueuePosition)
	api.POST("/fines", h.AddManualFine)
	api.POST("/fines/:fineId/pay", h.PayFine)
	api.POST("/fines/waive", h.WaiveFine)

	// cron entry points; the in-process scheduler calls the same sweeps
	api.POST("/sweeps/overdue-fines", h.SweepOverdue)
	api.POST("/sweeps/ready-expiry", h.SweepReadyExpiry)
	api.POST("/sweeps/hold-expiry", h.SweepHoldExpiry)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the circulation error taxonomy onto statuses. Every policy
// rejection keeps its specific message so the caller can render it as is.
func httpError(err error) *echo.HTTPError {
	var pw *errs.PriorityWindowError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &pw),
		errors.Is(err, errs.ErrAccountNotApproved):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrAlreadyBorrowed),
		errors.Is(err, errs.ErrAlreadyReserved),
		errors.Is(err, errs.ErrAlreadyOnHold),
		errors.Is(err, errs.ErrRecordNotBorrowed),
		errors.Is(err, errs.ErrFineExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrNoCopyAvailable),
		errors.Is(err, errs.ErrNoPendingFine),
		errors.Is(err, errs.ErrFineNotPayable):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Borrow(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	rec, err := h.circulationSvc.Borrow(ctx, req.UserID, req.BookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Return(c echo.Context) error {
	recordID := c.Param("recordId")
	if recordID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordId is empty")
	}
	var req model.ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.circulationSvc.Return(ctx, recordID, req.BookID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) PlaceHold(c echo.Context) error {
	var req model.HoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	hold, err := h.circulationSvc.PlaceHold(ctx, req.UserID, req.BookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, hold)
}

func (h *Handler) Reserve(c echo.Context) error {
	var req model.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	rsv, err := h.circulationSvc.Reserve(ctx, req.UserID, req.BookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rsv)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	reservationID := c.Param("reservationId")
	if reservationID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}

	ctx := c.Request().Context()
	if err := h.circulationSvc.CancelReservation(ctx, reservationID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) QueuePosition(c echo.Context) error {
	userID := c.QueryParam("userId")
	bookID := c.QueryParam("bookId")
	if userID == "" || bookID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId and bookId are required")
	}

	ctx := c.Request().Context()
	resp, err := h.circulationSvc.QueuePosition(ctx, userID, bookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) PayFine(c echo.Context) error {
	fineID := c.Param("fineId")
	if fineID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "fineId is empty")
	}

	ctx := c.Request().Context()
	fine, err := h.circulationSvc.PayFine(ctx, fineID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, fine)
}

func (h *Handler) WaiveFine(c echo.Context) error {
	var req model.WaiveFineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.circulationSvc.WaiveFine(ctx, req.BorrowRecordID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusOK)
}

func (h *Handler) AddManualFine(c echo.Context) error {
	var req model.ManualFineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	fine, err := h.circulationSvc.AddManualFine(ctx, req.BorrowRecordID, req.Amount, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, fine)
}

func (h *Handler) SweepOverdue(c echo.Context) error {
	summary, err := h.circulationSvc.SweepOverdue(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) SweepReadyExpiry(c echo.Context) error {
	summary, err := h.circulationSvc.SweepReadyExpiry(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) SweepHoldExpiry(c echo.Context) error {
	summary, err := h.circulationSvc.SweepHoldExpiry(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
