package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fallincloud/travelog/internal/domain"
	"github.com/fallincloud/travelog/internal/schedule"
	"github.com/fallincloud/travelog/internal/service"
)

func (s *Server) handleListTravels(w http.ResponseWriter, r *http.Request) {
	travels, err := s.travels.ListTravels(r.Context())
	if err != nil {
		s.logger.Error("list travels failed", "error", err)
		s.flashError(w, r, "failed to load travels")
		travels = nil
	}

	if err := s.renderPage(w, r,
		map[string]any{"Travels": travels, "ActiveNav": "travels"},
		"pages/travels.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleNewTravel(w http.ResponseWriter, r *http.Request) {
	if err := s.renderPage(w, r,
		map[string]any{"Methods": domain.TravelTransportMethods()},
		"pages/travel_form.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleCreateTravel(w http.ResponseWriter, r *http.Request) {
	travel, coverData, coverMime, err := s.parseTravelForm(r)
	if err != nil {
		s.flashError(w, r, err.Error())
		seeOther(w, r, "/travels/new")
		return
	}

	created, err := s.travels.CreateTravel(r.Context(), travel, coverData, coverMime)
	if err != nil {
		if service.IsValidation(err) {
			s.flashError(w, r, err.Error())
		} else {
			s.logger.Error("create travel failed", "error", err)
			s.flashError(w, r, "failed to create travel")
		}
		seeOther(w, r, "/travels/new")
		return
	}

	s.flashSuccess(w, r, "travel created")
	seeOther(w, r, fmt.Sprintf("/travels/%d", created.ID))
}

// itineraryView pairs an itinerary with its server-rendered countdown seed.
// The client refreshes the countdown from the JSON API afterwards.
type itineraryView struct {
	*domain.Itinerary
	Countdown schedule.Countdown
}

func (s *Server) handleShowTravel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid travel id", http.StatusBadRequest)
		return
	}

	travel, itineraries, err := s.travels.TravelDetail(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		s.flashError(w, r, "travel not found")
		seeOther(w, r, "/travels")
		return
	}
	if err != nil {
		s.logger.Error("get travel failed", "travel_id", id, "error", err)
		s.flashError(w, r, "failed to load travel")
		seeOther(w, r, "/travels")
		return
	}

	now := s.now()
	views := make([]itineraryView, 0, len(itineraries))
	for _, it := range itineraries {
		target := schedule.MergeInstant(it.TravelDate.In(now.Location()), it.StartTime)
		views = append(views, itineraryView{
			Itinerary: it,
			Countdown: schedule.ComputeCountdown(target, it.TransportMethod, now),
		})
	}

	if err := s.renderPage(w, r,
		map[string]any{"Travel": travel, "Itineraries": views, "ActiveNav": "travels"},
		"pages/travel_detail.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleEditTravel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid travel id", http.StatusBadRequest)
		return
	}

	travel, err := s.travels.GetTravel(r.Context(), id)
	if err != nil {
		s.logger.Error("get travel failed", "travel_id", id, "error", err)
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
		map[string]any{"Travel": travel, "Methods": domain.TravelTransportMethods()},
		"pages/travel_form.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

func (s *Server) handleUpdateTravel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid travel id", http.StatusBadRequest)
		return
	}

	travel, coverData, coverMime, err := s.parseTravelForm(r)
	if err != nil {
		s.flashError(w, r, err.Error())
		seeOther(w, r, fmt.Sprintf("/travels/%d/edit", id))
		return
	}
	travel.ID = id

	if _, err := s.travels.UpdateTravel(r.Context(), travel, coverData, coverMime); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			s.flashError(w, r, "travel not found")
			seeOther(w, r, "/travels")
		case service.IsValidation(err):
			s.flashError(w, r, err.Error())
			seeOther(w, r, fmt.Sprintf("/travels/%d/edit", id))
		default:
			s.logger.Error("update travel failed", "travel_id", id, "error", err)
			s.flashError(w, r, "failed to update travel")
			seeOther(w, r, fmt.Sprintf("/travels/%d/edit", id))
		}
		return
	}

	s.flashSuccess(w, r, "travel updated")
	seeOther(w, r, fmt.Sprintf("/travels/%d", id))
}

func (s *Server) handleDeleteTravel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, "invalid travel id", http.StatusBadRequest)
		return
	}

	if err := s.travels.DeleteTravel(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			s.flashError(w, r, "travel not found")
		} else {
			s.logger.Error("delete travel failed", "travel_id", id, "error", err)
			s.flashError(w, r, "failed to delete travel")
		}
		seeOther(w, r, "/travels")
		return
	}

	s.flashSuccess(w, r, "travel deleted")
	seeOther(w, r, "/travels")
}

// parseTravelForm reads the travel fields and the optional cover upload from
// a multipart form. Invalid input never reaches the service layer.
func (s *Server) parseTravelForm(r *http.Request) (*domain.Travel, []byte, string, error) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		// Plain urlencoded forms (no cover upload) are fine too.
		if err := r.ParseForm(); err != nil {
			return nil, nil, "", fmt.Errorf("failed to parse form")
		}
	}

	travel := &domain.Travel{
		Title:         trimmedForm(r, "title"),
		Description:   r.FormValue("description"),
		StartLocation: trimmedForm(r, "startLocation"),
		EndLocation:   trimmedForm(r, "endLocation"),
	}

	if v := trimmedForm(r, "transportMethod"); v != "" {
		method, err := domain.ParseTransportMethod(v)
		if err != nil {
			return nil, nil, "", err
		}
		travel.TransportMethod = method
	}

	if v := trimmedForm(r, "totalCost"); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, "", fmt.Errorf("invalid total cost %q", v)
		}
		travel.TotalCost = &cost
	}

	var err error
	if travel.StartDate, err = parseOptionalDate(r.FormValue("startDate")); err != nil {
		return nil, nil, "", err
	}
	if travel.EndDate, err = parseOptionalDate(r.FormValue("endDate")); err != nil {
		return nil, nil, "", err
	}

	coverData, coverMime, err := s.readImageUpload(r, "coverImage")
	if err != nil {
		return nil, nil, "", err
	}

	return travel, coverData, coverMime, nil
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", v)
	}
	return &t, nil
}
