package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fallincloud/travelog/internal/domain"
)

func createParentTravel(t *testing.T, d *sql.DB) *domain.Travel {
	t.Helper()
	travel, err := NewTravelStore(d).Create(context.Background(), &domain.Travel{Title: "Parent"})
	require.NoError(t, err)
	return travel
}

func TestItineraryStoreCreate(t *testing.T) {
	d := openTestDB(t)
	travel := createParentTravel(t, d)
	store := NewItineraryStore(d)
	ctx := context.Background()

	cost := 88.0
	it, err := store.Create(ctx, &domain.Itinerary{
		TravelID:        travel.ID,
		Title:           "Morning train",
		Content:         "<p>Seat 12A</p>",
		TravelDate:      time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC),
		Cost:            &cost,
		TransportMethod: domain.TransportTrain,
		TrainNumber:     "G1234",
		StartLocation:   "Shanghai Hongqiao",
		EndLocation:     "Hangzhou East",
		StartTime:       "08:15",
		EndTime:         "09:20",
		Images:          []string{"/uploads/a.jpg", "/uploads/b.jpg"},
	})
	require.NoError(t, err)
	assert.NotZero(t, it.ID)
	assert.Equal(t, travel.ID, it.TravelID)
	assert.Equal(t, "08:15", it.StartTime)
	assert.Equal(t, "G1234", it.TrainNumber)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, it.Images)
}

func TestItineraryStoreEmptyImages(t *testing.T) {
	d := openTestDB(t)
	travel := createParentTravel(t, d)
	store := NewItineraryStore(d)

	it, err := store.Create(context.Background(), &domain.Itinerary{
		TravelID:        travel.ID,
		Title:           "Walk",
		TravelDate:      time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC),
		TransportMethod: domain.TransportWalkingTour,
	})
	require.NoError(t, err)
	assert.Empty(t, it.Images)
	assert.Empty(t, it.StartTime)
}

func TestItineraryStoreGetByIDMissing(t *testing.T) {
	store := NewItineraryStore(openTestDB(t))

	it, err := store.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, it)
}

func TestItineraryStoreListByTravelID(t *testing.T) {
	d := openTestDB(t)
	travel := createParentTravel(t, d)
	other := createParentTravel(t, d)
	store := NewItineraryStore(d)
	ctx := context.Background()

	date := time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC)
	for _, title := range []string{"one", "two"} {
		_, err := store.Create(ctx, &domain.Itinerary{
			TravelID: travel.ID, Title: title, TravelDate: date,
			TransportMethod: domain.TransportSelfDrive,
		})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, &domain.Itinerary{
		TravelID: other.ID, Title: "elsewhere", TravelDate: date,
		TransportMethod: domain.TransportSelfDrive,
	})
	require.NoError(t, err)

	list, err := store.ListByTravelID(ctx, travel.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, "two", list[1].Title)
}

func TestItineraryStoreUpdate(t *testing.T) {
	d := openTestDB(t)
	travel := createParentTravel(t, d)
	store := NewItineraryStore(d)
	ctx := context.Background()

	it, err := store.Create(ctx, &domain.Itinerary{
		TravelID:        travel.ID,
		Title:           "Old title",
		TravelDate:      time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC),
		TransportMethod: domain.TransportCoach,
	})
	require.NoError(t, err)

	it.Title = "New title"
	it.StartTime = "14:30"
	it.Images = []string{"/uploads/c.png"}
	require.NoError(t, store.Update(ctx, it))

	updated, err := store.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "14:30", updated.StartTime)
	assert.Equal(t, []string{"/uploads/c.png"}, updated.Images)
}

func TestItineraryStoreUpdateMissing(t *testing.T) {
	store := NewItineraryStore(openTestDB(t))

	err := store.Update(context.Background(), &domain.Itinerary{
		ID: 404, Title: "ghost", TravelDate: time.Now(),
		TransportMethod: domain.TransportTrain,
	})
	assert.Error(t, err)
}

func TestItineraryStoreDelete(t *testing.T) {
	d := openTestDB(t)
	travel := createParentTravel(t, d)
	store := NewItineraryStore(d)
	ctx := context.Background()

	it, err := store.Create(ctx, &domain.Itinerary{
		TravelID:        travel.ID,
		Title:           "Doomed",
		TravelDate:      time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC),
		TransportMethod: domain.TransportLodging,
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, it.ID))

	gone, err := store.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.Error(t, store.Delete(ctx, it.ID))
}
