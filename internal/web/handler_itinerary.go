package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fallincloud/travelog/internal/domain"
	"github.com/fallincloud/travelog/internal/schedule"
	"github.com/fallincloud/travelog/internal/service"
)

func (s *Server) handleNewItinerary(w http.ResponseWriter, r *http.Request) {
	travelID, err := strconv.ParseInt(r.URL.Query().Get("travel"), 10, 64)
	if err != nil {
		s.flashError(w, r, "missing travel id")
		seeOther(w, r, "/travels")
		return
	}

	travel, err := s.travels.GetTravel(r.Context(), travelID)
	if err != nil {
		s.logger.Error("get travel failed", "travel_id", travelID, "error", err)
		s.flashError(w, r, "failed to load travel")
		seeOther(w, r, "/travels")
		return
	}
	if travel == nil {
		s.flashError(w, r, "travel not found")
		seeOther(w, r, "/travels")
		return
	}

	if err := s.renderPage(w, r,
		map[string]any{"Travel": travel, "Methods": domain.ItineraryTransportMethods()},
		"pages/itinerary_form.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleCreateItinerary(w http.ResponseWriter, r *http.Request) {
	travelID, err := strconv.ParseInt(r.FormValue("travelId"), 10, 64)
	if err != nil {
		s.flashError(w, r, "missing travel id")
		seeOther(w, r, "/travels")
		return
	}

	it, err := parseItineraryForm(r)
	if err != nil {
		s.flashError(w, r, err.Error())
		seeOther(w, r, fmt.Sprintf("/travels/%d", travelID))
		return
	}
	it.TravelID = travelID

	if _, err := s.travels.CreateItinerary(r.Context(), it); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			s.flashError(w, r, "travel not found")
			seeOther(w, r, "/travels")
		case service.IsValidation(err):
			s.flashError(w, r, err.Error())
			seeOther(w, r, fmt.Sprintf("/travels/%d", travelID))
		default:
			s.logger.Error("create itinerary failed", "travel_id", travelID, "error", err)
			s.flashError(w, r, "failed to create itinerary")
			seeOther(w, r, fmt.Sprintf("/travels/%d", travelID))
		}
		return
	}

	s.flashSuccess(w, r, "itinerary added")
	seeOther(w, r, fmt.Sprintf("/travels/%d", travelID))
}

func (s *Server) handleEditItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid itinerary id", http.StatusBadRequest)
		return
	}

	it, err := s.travels.GetItinerary(r.Context(), id)
	if err != nil {
		s.logger.Error("get itinerary failed", "itinerary_id", id, "error", err)
		s.flashError(w, r, "failed to load itinerary")
		seeOther(w, r, "/travels")
		return
	}
	if it == nil {
		s.flashError(w, r, "itinerary not found")
		seeOther(w, r, "/travels")
		return
	}

	travel, err := s.travels.GetTravel(r.Context(), it.TravelID)
	if err != nil || travel == nil {
		s.flashError(w, r, "travel not found")
		seeOther(w, r, "/travels")
		return
	}

	if err := s.renderPage(w, r,
		map[string]any{
			"Itinerary":     it,
			"Travel":        travel,
			"Methods":       domain.ItineraryTransportMethods(),
			"StartDateTime": formatDateTimeLocal(it.TravelDate, it.StartTime),
			"EndDateTime":   formatDateTimeLocal(it.TravelDate, it.EndTime),
		},
		"pages/itinerary_form.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleUpdateItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid itinerary id", http.StatusBadRequest)
		return
	}

	it, err := parseItineraryForm(r)
	if err != nil {
		s.flashError(w, r, err.Error())
		seeOther(w, r, fmt.Sprintf("/itineraries/%d/edit", id))
		return
	}
	it.ID = id

	updated, err := s.travels.UpdateItinerary(r.Context(), it)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			s.flashError(w, r, "itinerary not found")
			seeOther(w, r, "/travels")
		case service.IsValidation(err):
			s.flashError(w, r, err.Error())
			seeOther(w, r, fmt.Sprintf("/itineraries/%d/edit", id))
		default:
			s.logger.Error("update itinerary failed", "itinerary_id", id, "error", err)
			s.flashError(w, r, "failed to update itinerary")
			seeOther(w, r, fmt.Sprintf("/itineraries/%d/edit", id))
		}
		return
	}

	s.flashSuccess(w, r, "itinerary updated")
	seeOther(w, r, fmt.Sprintf("/travels/%d", updated.TravelID))
}

func (s *Server) handleDeleteItinerary(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid itinerary id", http.StatusBadRequest)
		return
	}

	deleted, err := s.travels.DeleteItinerary(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			s.flashError(w, r, "itinerary not found")
		} else {
			s.logger.Error("delete itinerary failed", "itinerary_id", id, "error", err)
			s.flashError(w, r, "failed to delete itinerary")
		}
		seeOther(w, r, "/travels")
		return
	}

	s.flashSuccess(w, r, "itinerary deleted")
	seeOther(w, r, fmt.Sprintf("/travels/%d", deleted.TravelID))
}

// parseItineraryForm reads itinerary fields from the form. The
// datetime-local inputs are split into a calendar date and an "HH:MM" time of
// day; malformed times are rejected here, before anything is persisted.
func parseItineraryForm(r *http.Request) (*domain.Itinerary, error) {
	it := &domain.Itinerary{
		Title:         trimmedForm(r, "title"),
		Content:       r.FormValue("content"),
		Location:      trimmedForm(r, "location"),
		FlightNumber:  trimmedForm(r, "flightNumber"),
		TrainNumber:   trimmedForm(r, "trainNumber"),
		BusNumber:     trimmedForm(r, "busNumber"),
		StartLocation: trimmedForm(r, "startLocation"),
		EndLocation:   trimmedForm(r, "endLocation"),
	}

	if v := trimmedForm(r, "transportMethod"); v != "" {
		method, err := domain.ParseTransportMethod(v)
		if err != nil {
			return nil, err
		}
		it.TransportMethod = method
	}

	start := trimmedForm(r, "startDateTime")
	if start != "" {
		date, clock, err := splitDateTimeLocal(start)
		if err != nil {
			return nil, err
		}
		it.TravelDate = date
		it.StartTime = clock
	}

	if end := trimmedForm(r, "endDateTime"); end != "" {
		_, clock, err := splitDateTimeLocal(end)
		if err != nil {
			return nil, err
		}
		it.EndTime = clock
	}

	if v := trimmedForm(r, "cost"); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cost %q", v)
		}
		it.Cost = &cost
	}

	if imgs := r.Form["images"]; len(imgs) > 0 {
		for _, img := range imgs {
			if img = strings.TrimSpace(img); img != "" {
				it.Images = append(it.Images, img)
			}
		}
	}

	return it, nil
}

// splitDateTimeLocal breaks a "2006-01-02T15:04" form value into its
// calendar date and validated "HH:MM" time of day.
func splitDateTimeLocal(v string) (time.Time, string, error) {
	datePart, timePart, found := strings.Cut(v, "T")
	if !found {
		return time.Time{}, "", fmt.Errorf("invalid date-time %q", v)
	}
	date, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date %q", datePart)
	}
	clock, err := schedule.ParseClock(timePart)
	if err != nil {
		return time.Time{}, "", err
	}
	return date, clock.String(), nil
}

// formatDateTimeLocal renders a stored date + time pair back into the
// datetime-local input format, defaulting an absent time to midnight.
func formatDateTimeLocal(date time.Time, timeOfDay string) string {
	if date.IsZero() {
		return ""
	}
	if timeOfDay == "" {
		timeOfDay = "00:00"
	}
	return date.Format("2006-01-02") + "T" + timeOfDay
}
