package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fallincloud/travelog/internal/domain"
	"github.com/fallincloud/travelog/internal/imagestore"
	"github.com/fallincloud/travelog/internal/schedule"
)

// defaultLocation is shown for itinerary legs (lodging, self-guided tours)
// that have no meaningful start/end location.
const defaultLocation = "See details in content"

// UploadPrefix is the URL path under which stored images are served.
const UploadPrefix = "/uploads/"

// travelRepository is the subset of store.TravelStore that TravelService requires.
type travelRepository interface {
	Create(ctx context.Context, t *domain.Travel) (*domain.Travel, error)
	GetByID(ctx context.Context, id int64) (*domain.Travel, error)
	List(ctx context.Context) ([]*domain.Travel, error)
	Update(ctx context.Context, t *domain.Travel) error
	Delete(ctx context.Context, id int64) error
}

// itineraryRepository is the subset of store.ItineraryStore that TravelService requires.
type itineraryRepository interface {
	Create(ctx context.Context, it *domain.Itinerary) (*domain.Itinerary, error)
	GetByID(ctx context.Context, id int64) (*domain.Itinerary, error)
	ListByTravelID(ctx context.Context, travelID int64) ([]*domain.Itinerary, error)
	Update(ctx context.Context, it *domain.Itinerary) error
	Delete(ctx context.Context, id int64) error
}

type TravelService struct {
	travelStore    travelRepository
	itineraryStore itineraryRepository
	images         imagestore.ImageStore
	logger         *slog.Logger
}

func NewTravelService(
	travelStore travelRepository,
	itineraryStore itineraryRepository,
	images imagestore.ImageStore,
	logger *slog.Logger,
) *TravelService {
	return &TravelService{
		travelStore:    travelStore,
		itineraryStore: itineraryStore,
		images:         images,
		logger:         logger,
	}
}

func (s *TravelService) ListTravels(ctx context.Context) ([]*domain.Travel, error) {
	return s.travelStore.List(ctx)
}

func (s *TravelService) GetTravel(ctx context.Context, id int64) (*domain.Travel, error) {
	return s.travelStore.GetByID(ctx, id)
}

// TravelDetail returns a travel and its itineraries in chronological order.
// The order is recomputed on every read.
func (s *TravelService) TravelDetail(ctx context.Context, id int64) (*domain.Travel, []*domain.Itinerary, error) {
	travel, err := s.travelStore.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get travel: %w", err)
	}
	if travel == nil {
		return nil, nil, ErrNotFound
	}

	itineraries, err := s.itineraryStore.ListByTravelID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list itineraries: %w", err)
	}

	return travel, schedule.OrderItineraries(itineraries), nil
}

// CreateTravel validates and persists a new travel, storing the cover image
// first when one was uploaded.
func (s *TravelService) CreateTravel(ctx context.Context, t *domain.Travel, coverData []byte, coverMime string) (*domain.Travel, error) {
	if strings.TrimSpace(t.Title) == "" {
		return nil, ValidationError("title is required")
	}
	t.Title = strings.TrimSpace(t.Title)

	if len(coverData) > 0 {
		key, err := s.images.Save(ctx, "cover", coverMime, bytes.NewReader(coverData))
		if err != nil {
			return nil, fmt.Errorf("failed to save cover image: %w", err)
		}
		t.CoverImage = key
	}

	travel, err := s.travelStore.Create(ctx, t)
	if err != nil {
		if t.CoverImage != "" {
			if derr := s.images.Delete(ctx, t.CoverImage); derr != nil {
				s.logger.Error("failed to remove cover after create error", "storage_key", t.CoverImage, "error", derr)
			}
		}
		return nil, err
	}

	s.logger.Info("travel created", "travel_id", travel.ID, "title", travel.Title)
	return travel, nil
}

// UpdateTravel applies edits to an existing travel. A newly uploaded cover
// replaces the old one; without an upload the existing cover is kept.
func (s *TravelService) UpdateTravel(ctx context.Context, t *domain.Travel, coverData []byte, coverMime string) (*domain.Travel, error) {
	if strings.TrimSpace(t.Title) == "" {
		return nil, ValidationError("title is required")
	}
	t.Title = strings.TrimSpace(t.Title)

	existing, err := s.travelStore.GetByID(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get travel: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	t.CoverImage = existing.CoverImage
	if len(coverData) > 0 {
		key, err := s.images.Save(ctx, "cover", coverMime, bytes.NewReader(coverData))
		if err != nil {
			return nil, fmt.Errorf("failed to save cover image: %w", err)
		}
		t.CoverImage = key
	}

	if err := s.travelStore.Update(ctx, t); err != nil {
		return nil, err
	}

	if len(coverData) > 0 && existing.CoverImage != "" {
		if err := s.images.Delete(ctx, existing.CoverImage); err != nil {
			s.logger.Error("failed to delete replaced cover", "storage_key", existing.CoverImage, "error", err)
		}
	}

	s.logger.Info("travel updated", "travel_id", t.ID)
	return s.travelStore.GetByID(ctx, t.ID)
}

// DeleteTravel removes the travel and, through the cascade, all of its
// itineraries. Stored image files are removed best-effort afterwards; a
// failed file removal never fails the delete.
func (s *TravelService) DeleteTravel(ctx context.Context, id int64) error {
	travel, err := s.travelStore.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get travel: %w", err)
	}
	if travel == nil {
		return ErrNotFound
	}

	itineraries, err := s.itineraryStore.ListByTravelID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list itineraries: %w", err)
	}

	if err := s.travelStore.Delete(ctx, id); err != nil {
		return err
	}

	if travel.CoverImage != "" {
		if err := s.images.Delete(ctx, travel.CoverImage); err != nil {
			s.logger.Error("failed to delete cover image", "storage_key", travel.CoverImage, "error", err)
		}
	}
	for _, it := range itineraries {
		for _, url := range it.Images {
			key, ok := strings.CutPrefix(url, UploadPrefix)
			if !ok {
				continue
			}
			if err := s.images.Delete(ctx, key); err != nil {
				s.logger.Error("failed to delete itinerary image", "storage_key", key, "error", err)
			}
		}
	}

	s.logger.Info("travel deleted", "travel_id", id, "itineraries", len(itineraries))
	return nil
}

func (s *TravelService) validateItinerary(it *domain.Itinerary) error {
	if strings.TrimSpace(it.Title) == "" {
		return ValidationError("title is required")
	}
	if it.TravelDate.IsZero() {
		return ValidationError("start time is required")
	}
	if it.TransportMethod == "" {
		return ValidationError("transport method is required")
	}
	return nil
}

// CreateItinerary validates and persists a new itinerary leg.
func (s *TravelService) CreateItinerary(ctx context.Context, it *domain.Itinerary) (*domain.Itinerary, error) {
	if err := s.validateItinerary(it); err != nil {
		return nil, err
	}

	travel, err := s.travelStore.GetByID(ctx, it.TravelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get travel: %w", err)
	}
	if travel == nil {
		return nil, ErrNotFound
	}

	it.Title = strings.TrimSpace(it.Title)
	if it.TransportMethod.NeedsDefaultLocation() {
		it.Location = defaultLocation
	}

	created, err := s.itineraryStore.Create(ctx, it)
	if err != nil {
		return nil, err
	}

	s.logger.Info("itinerary created", "itinerary_id", created.ID, "travel_id", created.TravelID)
	return created, nil
}

func (s *TravelService) GetItinerary(ctx context.Context, id int64) (*domain.Itinerary, error) {
	return s.itineraryStore.GetByID(ctx, id)
}

// UpdateItinerary applies edits to an existing itinerary leg.
func (s *TravelService) UpdateItinerary(ctx context.Context, it *domain.Itinerary) (*domain.Itinerary, error) {
	if err := s.validateItinerary(it); err != nil {
		return nil, err
	}

	existing, err := s.itineraryStore.GetByID(ctx, it.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	it.TravelID = existing.TravelID
	it.Title = strings.TrimSpace(it.Title)
	if it.TransportMethod.NeedsDefaultLocation() {
		it.Location = defaultLocation
	} else if existing.TransportMethod.NeedsDefaultLocation() && it.Location == defaultLocation {
		it.Location = ""
	}

	if err := s.itineraryStore.Update(ctx, it); err != nil {
		return nil, err
	}

	s.logger.Info("itinerary updated", "itinerary_id", it.ID)
	return s.itineraryStore.GetByID(ctx, it.ID)
}

func (s *TravelService) DeleteItinerary(ctx context.Context, id int64) (*domain.Itinerary, error) {
	it, err := s.itineraryStore.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if it == nil {
		return nil, ErrNotFound
	}

	if err := s.itineraryStore.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("itinerary deleted", "itinerary_id", id, "travel_id", it.TravelID)
	return it, nil
}

// SaveImage stores an uploaded gallery image and returns the URL it will be
// served from.
func (s *TravelService) SaveImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	key, err := s.images.Save(ctx, "gallery", mimeType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	s.logger.Debug("gallery image saved", "storage_key", key, "bytes", len(data))
	return UploadPrefix + key, nil
}

// ItineraryCountdown pairs an itinerary with its current countdown state.
type ItineraryCountdown struct {
	ItineraryID int64              `json:"itineraryId"`
	Countdown   schedule.Countdown `json:"countdown"`
}

// Countdowns evaluates the countdown for every itinerary of a travel against
// the supplied reference time. Itineraries whose target instant cannot be
// determined are omitted rather than reported as errors.
func (s *TravelService) Countdowns(ctx context.Context, travelID int64, now time.Time) ([]ItineraryCountdown, error) {
	_, itineraries, err := s.TravelDetail(ctx, travelID)
	if err != nil {
		return nil, err
	}

	out := make([]ItineraryCountdown, 0, len(itineraries))
	for _, it := range itineraries {
		if it.TravelDate.IsZero() {
			continue
		}
		target := schedule.MergeInstant(it.TravelDate.In(now.Location()), it.StartTime)
		out = append(out, ItineraryCountdown{
			ItineraryID: it.ID,
			Countdown:   schedule.ComputeCountdown(target, it.TransportMethod, now),
		})
	}
	return out, nil
}
