package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-checkin/internal/audit"
	"github.com/iliyamo/conference-checkin/internal/auth"
	"github.com/iliyamo/conference-checkin/internal/queue"
	"github.com/iliyamo/conference-checkin/internal/repository"
	"github.com/iliyamo/conference-checkin/internal/service"
)

// CheckinHandler exposes the check-in desk operations: QR scan, manual
// lookup, listing and QR-verified reversal. Authorization runs before
// any service call so a forbidden request never reaches the store.
type CheckinHandler struct {
	Checkins *service.CheckinService
	Gate     *auth.Gate
	Audit    audit.Sink
}

// NewCheckinHandler constructs a CheckinHandler. All dependencies must
// be non-nil.
func NewCheckinHandler(checkins *service.CheckinService, gate *auth.Gate, sink audit.Sink) *CheckinHandler {
	if checkins == nil || gate == nil || sink == nil {
		panic("nil dependency passed to NewCheckinHandler")
	}
	return &CheckinHandler{Checkins: checkins, Gate: gate, Audit: sink}
}

type scanReq struct {
	QRCode    string  `json:"qr_code"`
	SessionID *uint64 `json:"session_id"`
}

type manualReq struct {
	RegistrationID uint64  `json:"registration_id"`
	SessionID      *uint64 `json:"session_id"`
}

type deleteReq struct {
	QRCode string `json:"qr_code"`
}

// Scan handles POST /v1/checkins/scan. A missing session_id records a
// conference-level check-in.
func (h *CheckinHandler) Scan(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Gate.Authorize(userID, getRole(c), auth.PermCheckinRecord, 0) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req scanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.QRCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}

	ctx := c.Request().Context()
	detail, err := h.Checkins.ScanByQR(ctx, req.QRCode, req.SessionID)
	if err != nil {
		return h.mapRecordError(c, err)
	}
	h.afterRecord(c, userID, detail)
	return c.JSON(http.StatusCreated, echo.Map{"item": detail})
}

// Manual handles POST /v1/checkins/manual for desk lookups without a
// scannable badge.
func (h *CheckinHandler) Manual(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Gate.Authorize(userID, getRole(c), auth.PermCheckinRecord, 0) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req manualReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RegistrationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration_id is required"})
	}

	ctx := c.Request().Context()
	detail, err := h.Checkins.Manual(ctx, req.RegistrationID, req.SessionID)
	if err != nil {
		return h.mapRecordError(c, err)
	}
	h.afterRecord(c, userID, detail)
	return c.JSON(http.StatusCreated, echo.Map{"item": detail})
}

// List handles GET /v1/checkins with conference_id/attendee_id filters
// and page/limit pagination, newest first.
func (h *CheckinHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Gate.Authorize(userID, getRole(c), auth.PermCheckinList, 0) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var f repository.CheckinFilter
	if v := c.QueryParam("conference_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.ConferenceID = n
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid conference_id"})
		}
	}
	if v := c.QueryParam("attendee_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.AttendeeID = n
		} else {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid attendee_id"})
		}
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if f.Limit > 100 {
		f.Limit = 100
	}

	items, err := h.Checkins.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load check-ins"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Delete handles DELETE /v1/checkins/:id. The request body must carry
// the registration's original QR code as proof of possession; a
// mismatch leaves everything untouched.
func (h *CheckinHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !h.Gate.Authorize(userID, getRole(c), auth.PermCheckinDelete, 0) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	checkinID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || checkinID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check-in id"})
	}

	var req deleteReq
	if err := c.Bind(&req); err != nil || req.QRCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_code is required"})
	}

	ctx := c.Request().Context()
	verdict, err := h.Checkins.VerifyQRForDelete(ctx, checkinID, req.QRCode)
	if err != nil {
		if errors.Is(err, service.ErrCheckinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "check-in not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	if !verdict.Valid {
		_ = h.Audit.Append(ctx, audit.Entry{
			ActorID:  userID,
			Action:   "checkin.delete",
			Resource: "checkin/" + strconv.FormatUint(checkinID, 10),
			Status:   "rejected",
			Details:  map[string]string{"reason": verdict.Message},
		})
		return c.JSON(http.StatusForbidden, echo.Map{"valid": false, "error": verdict.Message})
	}

	if err := h.Checkins.Delete(ctx, checkinID); err != nil {
		if errors.Is(err, service.ErrCheckinNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "check-in not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	_ = h.Audit.Append(ctx, audit.Entry{
		ActorID:  userID,
		Action:   "checkin.delete",
		Resource: "checkin/" + strconv.FormatUint(checkinID, 10),
		Status:   "success",
	})
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// mapRecordError translates recorder error kinds to HTTP responses.
func (h *CheckinHandler) mapRecordError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrRegistrationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
}

// afterRecord emits the audit entry and the checkin.recorded event for
// a committed attempt. Both are best-effort.
func (h *CheckinHandler) afterRecord(c echo.Context, userID uint64, detail *repository.CheckinDetail) {
	ctx := c.Request().Context()
	_ = h.Audit.Append(ctx, audit.Entry{
		ActorID:  userID,
		Action:   "checkin.record",
		Resource: "checkin/" + strconv.FormatUint(detail.ID, 10),
		Status:   detail.Status,
		Details: map[string]string{
			"registration_id": strconv.FormatUint(detail.RegistrationID, 10),
			"method":          detail.Method,
		},
	})
	_ = queue.PublishCheckinRecorded(ctx, queue.CheckinRecordedEvent{
		CheckinID:      detail.ID,
		RegistrationID: detail.RegistrationID,
		ConferenceID:   detail.ConferenceID,
		SessionID:      detail.SessionID,
		AttendeeID:     detail.AttendeeID,
		AttendeeName:   detail.AttendeeName,
		Method:         detail.Method,
		Status:         detail.Status,
		CheckinTime:    detail.CheckinTime.UTC().Format(time.RFC3339),
	})
}
