package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly/gatherly-api/internal/catalog"
	"github.com/gatherly/gatherly-api/internal/ledger"
	"github.com/gatherly/gatherly-api/internal/models"
)

type EventHandler struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
}

func NewEventHandler(catalog *catalog.Catalog, ledger *ledger.Ledger) *EventHandler {
	return &EventHandler{catalog: catalog, ledger: ledger}
}

type ListEventsRequest struct {
	Category string `query:"category" doc:"Only return events in this category (case-insensitive)" required:"false"`
}

type ListEventsResponse struct {
	Body []models.Event
}

func (h *EventHandler) HandleListEvents(ctx context.Context, input *ListEventsRequest) (*ListEventsResponse, error) {
	events := h.catalog.List()
	if input.Category != "" {
		events = h.catalog.ListByCategory(input.Category)
	}
	return &ListEventsResponse{Body: events}, nil
}

type GetEventRequest struct {
	ID int64 `path:"id" doc:"Event id"`
}

type GetEventResponse struct {
	Body models.Event
}

func (h *EventHandler) HandleGetEvent(ctx context.Context, input *GetEventRequest) (*GetEventResponse, error) {
	event, ok := h.catalog.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("Event not found")
	}
	return &GetEventResponse{Body: event}, nil
}

type ListCategoriesResponse struct {
	Body []string
}

func (h *EventHandler) HandleListCategories(ctx context.Context, input *struct{}) (*ListCategoriesResponse, error) {
	return &ListCategoriesResponse{Body: h.catalog.Categories()}, nil
}

type EventAttendanceRequest struct {
	ID int64 `path:"id" doc:"Event id"`
}

type EventAttendanceResponse struct {
	Body []models.AttendanceRecord
}

func (h *EventHandler) HandleEventAttendance(ctx context.Context, input *EventAttendanceRequest) (*EventAttendanceResponse, error) {
	if _, ok := h.catalog.Get(input.ID); !ok {
		return nil, huma.Error404NotFound("Event not found")
	}
	return &EventAttendanceResponse{Body: h.ledger.ByEvent(input.ID)}, nil
}

type EventStatsRequest struct {
	ID int64 `path:"id" doc:"Event id"`
}

type EventStatsResponse struct {
	Body struct {
		EventID        int64   `json:"event_id"`
		Registered     int     `json:"registered" doc:"Registrations held in the ledger"`
		CheckedIn      int     `json:"checked_in"`
		AttendanceRate float64 `json:"attendance_rate" doc:"Checked-in share of registrations, percent"`
	}
}

// HandleEventStats reports the ledger's view of one event. The counts
// here are derived from attendance records and can differ from the
// event's registered-attendees counter, which the catalog maintains
// separately.
func (h *EventHandler) HandleEventStats(ctx context.Context, input *EventStatsRequest) (*EventStatsResponse, error) {
	if _, ok := h.catalog.Get(input.ID); !ok {
		return nil, huma.Error404NotFound("Event not found")
	}
	res := &EventStatsResponse{}
	res.Body.EventID = input.ID
	res.Body.Registered = h.ledger.RegisteredCount(input.ID)
	res.Body.CheckedIn = h.ledger.CheckedInCount(input.ID)
	res.Body.AttendanceRate = h.ledger.AttendanceRate(input.ID)
	return res, nil
}
