package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fallincloud/travelog/internal/domain"
)

type ItineraryStore struct {
	db *sql.DB
}

func NewItineraryStore(db *sql.DB) *ItineraryStore {
	return &ItineraryStore{db: db}
}

func (s *ItineraryStore) Create(ctx context.Context, it *domain.Itinerary) (*domain.Itinerary, error) {
	images, err := marshalImages(it.Images)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO itineraries (travel_id, title, content, location, travel_date,
			cost, transport_method, flight_number, train_number, bus_number,
			start_location, end_location, start_time, end_time, images)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, it.TravelID, it.Title, it.Content, it.Location, it.TravelDate,
		it.Cost, string(it.TransportMethod), it.FlightNumber, it.TrainNumber, it.BusNumber,
		it.StartLocation, it.EndLocation, it.StartTime, it.EndTime, images)
	if err != nil {
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItineraryStore) GetByID(ctx context.Context, id int64) (*domain.Itinerary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, travel_id, title, content, location, travel_date, cost,
			transport_method, flight_number, train_number, bus_number,
			start_location, end_location, start_time, end_time, images,
			created_at, updated_at
		FROM itineraries WHERE id = ?
	`, id)

	it, err := scanItinerary(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	return it, nil
}

// ListByTravelID returns a travel's itineraries in storage order. Callers
// that need chronological order run the result through schedule.OrderItineraries.
func (s *ItineraryStore) ListByTravelID(ctx context.Context, travelID int64) ([]*domain.Itinerary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, travel_id, title, content, location, travel_date, cost,
			transport_method, flight_number, train_number, bus_number,
			start_location, end_location, start_time, end_time, images,
			created_at, updated_at
		FROM itineraries WHERE travel_id = ? ORDER BY id ASC
	`, travelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var itineraries []*domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		itineraries = append(itineraries, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itineraries: %w", err)
	}

	return itineraries, nil
}

func (s *ItineraryStore) Update(ctx context.Context, it *domain.Itinerary) error {
	images, err := marshalImages(it.Images)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE itineraries SET title = ?, content = ?, location = ?,
			travel_date = ?, cost = ?, transport_method = ?, flight_number = ?,
			train_number = ?, bus_number = ?, start_location = ?, end_location = ?,
			start_time = ?, end_time = ?, images = ?, updated_at = datetime('now')
		WHERE id = ?
	`, it.Title, it.Content, it.Location, it.TravelDate, it.Cost,
		string(it.TransportMethod), it.FlightNumber, it.TrainNumber, it.BusNumber,
		it.StartLocation, it.EndLocation, it.StartTime, it.EndTime, images, it.ID)
	if err != nil {
		return fmt.Errorf("failed to update itinerary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("itinerary not found")
	}

	return nil
}

func (s *ItineraryStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM itineraries WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("itinerary not found")
	}

	return nil
}

func scanItinerary(scan func(...any) error) (*domain.Itinerary, error) {
	it := &domain.Itinerary{}
	var images string
	err := scan(&it.ID, &it.TravelID, &it.Title, &it.Content, &it.Location,
		&it.TravelDate, &it.Cost, &it.TransportMethod, &it.FlightNumber,
		&it.TrainNumber, &it.BusNumber, &it.StartLocation, &it.EndLocation,
		&it.StartTime, &it.EndTime, &images, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(images), &it.Images); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary images: %w", err)
	}
	return it, nil
}

func marshalImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("failed to encode itinerary images: %w", err)
	}
	return string(data), nil
}
