package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-checkin/internal/audit"
	"github.com/iliyamo/conference-checkin/internal/auth"
	"github.com/iliyamo/conference-checkin/internal/model"
	"github.com/iliyamo/conference-checkin/internal/service"
)

// RegistrationHandler exposes registration creation and lookup.  All
// methods assume that JWT authentication has already been performed by
// middleware; authorization against the permission gate happens here so
// a forbidden caller causes zero state change.
type RegistrationHandler struct {
	Registrations *service.RegistrationService
	Gate          *auth.Gate
	Audit         audit.Sink
}

// NewRegistrationHandler constructs a RegistrationHandler. All
// dependencies must be non-nil.
func NewRegistrationHandler(regs *service.RegistrationService, gate *auth.Gate, sink audit.Sink) *RegistrationHandler {
	if regs == nil || gate == nil || sink == nil {
		panic("nil dependency passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Registrations: regs, Gate: gate, Audit: sink}
}

type createRegistrationReq struct {
	AttendeeID   uint64 `json:"attendee_id"` // optional; defaults to the caller
	ConferenceID uint64 `json:"conference_id"`
}

type registrationResp struct {
	ID               uint64 `json:"id"`
	AttendeeID       uint64 `json:"attendee_id"`
	ConferenceID     uint64 `json:"conference_id"`
	RegistrationDate string `json:"registration_date"`
	Status           string `json:"status"`
	QRCode           string `json:"qr_code"`
}

func registrationToResp(reg *model.Registration) registrationResp {
	return registrationResp{
		ID:               reg.ID,
		AttendeeID:       reg.AttendeeID,
		ConferenceID:     reg.ConferenceID,
		RegistrationDate: reg.RegistrationDate.UTC().Format(time.RFC3339),
		Status:           reg.Status,
		QRCode:           reg.QRCode,
	}
}

// Create handles POST /v1/registrations. Attendees register themselves;
// staff and organizers may pass attendee_id to register someone else.
// The response carries the freshly minted QR code.
func (h *RegistrationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := getRole(c)

	var req createRegistrationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ConferenceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "conference_id is required"})
	}
	attendeeID := req.AttendeeID
	if attendeeID == 0 {
		attendeeID = userID
	}

	if !h.Gate.Authorize(userID, role, auth.PermRegistrationCreate, req.ConferenceID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	// Attendees may only register themselves; desk roles may register others.
	if role == model.RoleAttendee && attendeeID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx := c.Request().Context()
	reg, err := h.Registrations.Create(ctx, attendeeID, req.ConferenceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConferenceNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conference not found"})
		case errors.Is(err, service.ErrAttendeeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "attendee not found"})
		case errors.Is(err, service.ErrQRCodeExhausted):
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate qr code"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create registration failed"})
		}
	}

	_ = h.Audit.Append(ctx, audit.Entry{
		ActorID:  userID,
		Action:   "registration.create",
		Resource: "registration/" + strconv.FormatUint(reg.ID, 10),
		Status:   "success",
		Details: map[string]string{
			"attendee_id":   strconv.FormatUint(attendeeID, 10),
			"conference_id": strconv.FormatUint(req.ConferenceID, 10),
		},
	})

	return c.JSON(http.StatusCreated, registrationToResp(reg))
}

// Get handles GET /v1/registrations/:id.
func (h *RegistrationHandler) Get(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}

	reg, err := h.Registrations.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "registration not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, registrationToResp(reg))
}
