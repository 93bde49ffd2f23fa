package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly/gatherly-api/internal/catalog"
	"github.com/gatherly/gatherly-api/internal/directory"
	"github.com/gatherly/gatherly-api/internal/ledger"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/session"
)

type AttendanceHandler struct {
	catalog   *catalog.Catalog
	directory *directory.Directory
	ledger    *ledger.Ledger
	sessions  *session.Manager
}

func NewAttendanceHandler(catalog *catalog.Catalog, directory *directory.Directory, ledger *ledger.Ledger, sessions *session.Manager) *AttendanceHandler {
	return &AttendanceHandler{catalog: catalog, directory: directory, ledger: ledger, sessions: sessions}
}

type RegisterAttendanceRequest struct {
	SessionInput
	Body struct {
		UserID  int64 `json:"user_id" doc:"User to register" required:"true"`
		EventID int64 `json:"event_id" doc:"Event to register for" required:"true"`
	}
}

type RegisterAttendanceResponse struct {
	Body models.AttendanceRecord
}

// HandleRegisterAttendance claims a capacity slot in the catalog and
// records the registration in the ledger. The two are updated
// independently: if the ledger insert loses a race after the counter was
// bumped, the counter stays one ahead and the stats endpoints surface
// the difference as is.
func (h *AttendanceHandler) HandleRegisterAttendance(ctx context.Context, input *RegisterAttendanceRequest) (*RegisterAttendanceResponse, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	// 1. Resolve the references
	if _, ok := h.directory.Get(input.Body.UserID); !ok {
		return nil, huma.Error404NotFound("User not found")
	}
	if _, ok := h.catalog.Get(input.Body.EventID); !ok {
		return nil, huma.Error404NotFound("Event not found")
	}

	// 2. Refuse duplicates before touching the capacity counter
	if _, ok := h.ledger.Get(input.Body.UserID, input.Body.EventID); ok {
		return nil, huma.Error409Conflict("User is already registered for this event")
	}

	// 3. Claim a slot
	if !h.catalog.IncrementAttendance(input.Body.EventID) {
		return nil, huma.Error409Conflict("Event is at capacity")
	}

	// 4. Record the registration
	record, err := h.ledger.Register(input.Body.UserID, input.Body.EventID)
	switch {
	case errors.Is(err, models.ErrAlreadyRegistered):
		return nil, huma.Error409Conflict("User is already registered for this event")
	case err != nil:
		return nil, huma.Error500InternalServerError("Failed to record registration: " + err.Error())
	}

	return &RegisterAttendanceResponse{Body: record}, nil
}

type CheckInRequest struct {
	SessionInput
	ID int64 `path:"id" doc:"Attendance record id"`
}

type CheckInResponse struct {
	Body models.AttendanceRecord
}

func (h *AttendanceHandler) HandleCheckIn(ctx context.Context, input *CheckInRequest) (*CheckInResponse, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	record, ok := h.ledger.CheckIn(input.ID)
	if !ok {
		if _, exists := h.ledger.GetByID(input.ID); !exists {
			return nil, huma.Error404NotFound("Attendance record not found")
		}
		return nil, huma.Error409Conflict("Already checked in")
	}
	return &CheckInResponse{Body: record}, nil
}

type CheckInByPairRequest struct {
	SessionInput
	Body struct {
		UserID  int64 `json:"user_id" required:"true"`
		EventID int64 `json:"event_id" required:"true"`
	}
}

type CheckInByPairResponse struct {
	Body models.AttendanceRecord
}

// HandleCheckInByPair checks a user in by (user, event) instead of
// record id, for door lists that only know who is in front of them.
func (h *AttendanceHandler) HandleCheckInByPair(ctx context.Context, input *CheckInByPairRequest) (*CheckInByPairResponse, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	record, ok := h.ledger.CheckInByUserAndEvent(input.Body.UserID, input.Body.EventID)
	if !ok {
		if _, exists := h.ledger.Get(input.Body.UserID, input.Body.EventID); !exists {
			return nil, huma.Error404NotFound("No registration for this user and event")
		}
		return nil, huma.Error409Conflict("Already checked in")
	}
	return &CheckInByPairResponse{Body: record}, nil
}

type UpdateNotesRequest struct {
	SessionInput
	ID   int64 `path:"id" doc:"Attendance record id"`
	Body struct {
		Notes string `json:"notes" doc:"Free-form notes, replaces the previous value"`
	}
}

type UpdateNotesResponse struct {
	Body models.AttendanceRecord
}

func (h *AttendanceHandler) HandleUpdateNotes(ctx context.Context, input *UpdateNotesRequest) (*UpdateNotesResponse, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	record, ok := h.ledger.UpdateNotes(input.ID, input.Body.Notes)
	if !ok {
		return nil, huma.Error404NotFound("Attendance record not found")
	}
	return &UpdateNotesResponse{Body: record}, nil
}

type CancelAttendanceRequest struct {
	SessionInput
	ID int64 `path:"id" doc:"Attendance record id"`
}

// HandleCancelAttendance removes the record outright. The event's
// registered-attendees counter is not decremented; a cancelled spot is
// not handed back.
func (h *AttendanceHandler) HandleCancelAttendance(ctx context.Context, input *CancelAttendanceRequest) (*struct{}, error) {
	if _, _, err := requireLogin(h.sessions, input.SessionInput); err != nil {
		return nil, err
	}

	if !h.ledger.Cancel(input.ID) {
		return nil, huma.Error404NotFound("Attendance record not found")
	}
	return nil, nil
}

type ListAttendanceRequest struct {
	UserID int64 `query:"user_id" doc:"Only return records for this user" required:"false"`
}

type ListAttendanceResponse struct {
	Body []models.AttendanceRecord
}

func (h *AttendanceHandler) HandleListAttendance(ctx context.Context, input *ListAttendanceRequest) (*ListAttendanceResponse, error) {
	if input.UserID != 0 {
		return &ListAttendanceResponse{Body: h.ledger.ByUser(input.UserID)}, nil
	}
	return &ListAttendanceResponse{Body: h.ledger.All()}, nil
}

type StatsResponse struct {
	Body models.Statistics
}

func (h *AttendanceHandler) HandleStats(ctx context.Context, input *struct{}) (*StatsResponse, error) {
	return &StatsResponse{Body: h.ledger.Stats()}, nil
}
