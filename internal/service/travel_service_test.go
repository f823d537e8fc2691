package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fallincloud/travelog/internal/db"
	"github.com/fallincloud/travelog/internal/domain"
	"github.com/fallincloud/travelog/internal/schedule"
	"github.com/fallincloud/travelog/internal/store"
)

// stubImageStore is a minimal in-memory imagestore.ImageStore for tests.
type stubImageStore struct {
	saved   map[string][]byte
	saveErr error
	counter int
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{saved: make(map[string][]byte)}
}

func (s *stubImageStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.counter++
	key := prefix + "_" + string(rune('a'+s.counter-1)) + ".jpg"
	s.saved[key] = data
	return key, nil
}

func (s *stubImageStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubImageStore) Delete(_ context.Context, key string) error {
	if _, ok := s.saved[key]; !ok {
		return errors.New("not found")
	}
	delete(s.saved, key)
	return nil
}

func newTestService(t *testing.T) (*TravelService, *stubImageStore) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	images := newStubImageStore()
	svc := NewTravelService(
		store.NewTravelStore(d),
		store.NewItineraryStore(d),
		images,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, images
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateTravelRequiresTitle(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateTravel(context.Background(), &domain.Travel{Title: "   "}, nil, "")
	assert.True(t, IsValidation(err))
}

func TestCreateTravelWithCover(t *testing.T) {
	svc, images := newTestService(t)

	travel, err := svc.CreateTravel(context.Background(),
		&domain.Travel{Title: "Xinjiang Loop"}, []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.NotEmpty(t, travel.CoverImage)
	assert.Contains(t, images.saved, travel.CoverImage)
}

func TestUpdateTravelReplacesCover(t *testing.T) {
	svc, images := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, []byte("old"), "image/jpeg")
	require.NoError(t, err)
	oldCover := travel.CoverImage

	travel.Title = "Trip, renamed"
	updated, err := svc.UpdateTravel(ctx, travel, []byte("new"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "Trip, renamed", updated.Title)
	assert.NotEqual(t, oldCover, updated.CoverImage)
	assert.NotContains(t, images.saved, oldCover)
	assert.Contains(t, images.saved, updated.CoverImage)
}

func TestUpdateTravelKeepsCoverWithoutUpload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, []byte("cover"), "image/jpeg")
	require.NoError(t, err)

	updated, err := svc.UpdateTravel(ctx, travel, nil, "")
	require.NoError(t, err)
	assert.Equal(t, travel.CoverImage, updated.CoverImage)
}

func TestUpdateTravelMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.UpdateTravel(context.Background(), &domain.Travel{ID: 404, Title: "ghost"}, nil, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTravelDetailOrdersItineraries(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, nil, "")
	require.NoError(t, err)

	mk := func(title, day, start string) {
		_, err := svc.CreateItinerary(ctx, &domain.Itinerary{
			TravelID:        travel.ID,
			Title:           title,
			TravelDate:      date(day),
			StartTime:       start,
			TransportMethod: domain.TransportTrain,
		})
		require.NoError(t, err)
	}
	mk("evening", "2025-05-01", "20:00")
	mk("late", "2025-05-02", "")
	mk("morning", "2025-05-01", "07:45")

	_, itineraries, err := svc.TravelDetail(ctx, travel.ID)
	require.NoError(t, err)
	require.Len(t, itineraries, 3)
	assert.Equal(t, "morning", itineraries[0].Title)
	assert.Equal(t, "evening", itineraries[1].Title)
	assert.Equal(t, "late", itineraries[2].Title)
}

func TestTravelDetailMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.TravelDetail(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateItineraryValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, nil, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		it   *domain.Itinerary
	}{
		{"missing title", &domain.Itinerary{
			TravelID: travel.ID, TravelDate: date("2025-05-01"),
			TransportMethod: domain.TransportTrain,
		}},
		{"missing date", &domain.Itinerary{
			TravelID: travel.ID, Title: "leg",
			TransportMethod: domain.TransportTrain,
		}},
		{"missing transport", &domain.Itinerary{
			TravelID: travel.ID, Title: "leg", TravelDate: date("2025-05-01"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItinerary(ctx, tt.it)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestCreateItineraryParentMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateItinerary(context.Background(), &domain.Itinerary{
		TravelID: 404, Title: "leg", TravelDate: date("2025-05-01"),
		TransportMethod: domain.TransportTrain,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateItineraryDefaultLocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, nil, "")
	require.NoError(t, err)

	lodging, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "Hotel night", TravelDate: date("2025-05-01"),
		TransportMethod: domain.TransportLodging,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultLocation, lodging.Location)

	train, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "Ride", TravelDate: date("2025-05-01"),
		TransportMethod: domain.TransportTrain, Location: "Platform 3",
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform 3", train.Location)
}

func TestUpdateItinerary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, nil, "")
	require.NoError(t, err)

	it, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "Old", TravelDate: date("2025-05-01"),
		TransportMethod: domain.TransportTrain,
	})
	require.NoError(t, err)

	it.Title = "New"
	it.StartTime = "09:00"
	updated, err := svc.UpdateItinerary(ctx, it)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, travel.ID, updated.TravelID)
}

func TestDeleteTravelCascadesAndRemovesImages(t *testing.T) {
	svc, images := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, []byte("cover"), "image/jpeg")
	require.NoError(t, err)

	url, err := svc.SaveImage(ctx, []byte("gallery"), "image/jpeg")
	require.NoError(t, err)

	it, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "leg", TravelDate: date("2025-05-01"),
		TransportMethod: domain.TransportTrain,
		Images:          []string{url},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTravel(ctx, travel.ID))

	gone, err := svc.GetItinerary(ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, images.saved)

	assert.ErrorIs(t, svc.DeleteTravel(ctx, travel.ID), ErrNotFound)
}

func TestSaveImageReturnsServableURL(t *testing.T) {
	svc, images := newTestService(t)

	url, err := svc.SaveImage(context.Background(), []byte("png bytes"), "image/png")
	require.NoError(t, err)
	assert.Contains(t, url, UploadPrefix)
	assert.Contains(t, images.saved, url[len(UploadPrefix):])
}

func TestCountdowns(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	travel, err := svc.CreateTravel(ctx, &domain.Travel{Title: "Trip"}, nil, "")
	require.NoError(t, err)

	soon, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "soon", TravelDate: date("2025-05-01"),
		StartTime: "10:30", TransportMethod: domain.TransportTrain,
	})
	require.NoError(t, err)
	past, err := svc.CreateItinerary(ctx, &domain.Itinerary{
		TravelID: travel.ID, Title: "past", TravelDate: date("2025-04-30"),
		TransportMethod: domain.TransportPlane,
	})
	require.NoError(t, err)

	now := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	countdowns, err := svc.Countdowns(ctx, travel.ID, now)
	require.NoError(t, err)
	require.Len(t, countdowns, 2)

	byID := map[int64]schedule.Countdown{}
	for _, c := range countdowns {
		byID[c.ItineraryID] = c.Countdown
	}
	assert.Equal(t, "30 minutes", byID[soon.ID].Label)
	assert.True(t, byID[soon.ID].Urgent)
	assert.Equal(t, schedule.LabelDeparted, byID[past.ID].Label)
	assert.False(t, byID[past.ID].Urgent)
}

func TestCountdownsTravelMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Countdowns(context.Background(), 404, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
