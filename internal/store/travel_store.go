package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fallincloud/travelog/internal/domain"
)

type TravelStore struct {
	db *sql.DB
}

func NewTravelStore(db *sql.DB) *TravelStore {
	return &TravelStore{db: db}
}

func (s *TravelStore) Create(ctx context.Context, t *domain.Travel) (*domain.Travel, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO travels (title, description, start_location, end_location,
			transport_method, total_cost, start_date, end_date, cover_image)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Title, t.Description, t.StartLocation, t.EndLocation,
		string(t.TransportMethod), t.TotalCost, t.StartDate, t.EndDate, t.CoverImage)
	if err != nil {
		return nil, fmt.Errorf("failed to create travel: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *TravelStore) GetByID(ctx context.Context, id int64) (*domain.Travel, error) {
	t := &domain.Travel{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, start_location, end_location,
			transport_method, total_cost, start_date, end_date, cover_image,
			created_at, updated_at
		FROM travels WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.StartLocation, &t.EndLocation,
		&t.TransportMethod, &t.TotalCost, &t.StartDate, &t.EndDate, &t.CoverImage,
		&t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get travel: %w", err)
	}

	return t, nil
}

// List returns all travels, most recently created first.
func (s *TravelStore) List(ctx context.Context) ([]*domain.Travel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, start_location, end_location,
			transport_method, total_cost, start_date, end_date, cover_image,
			created_at, updated_at
		FROM travels ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list travels: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var travels []*domain.Travel
	for rows.Next() {
		t := &domain.Travel{}
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.StartLocation, &t.EndLocation,
			&t.TransportMethod, &t.TotalCost, &t.StartDate, &t.EndDate, &t.CoverImage,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan travel: %w", err)
		}
		travels = append(travels, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating travels: %w", err)
	}

	return travels, nil
}

func (s *TravelStore) Update(ctx context.Context, t *domain.Travel) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE travels SET title = ?, description = ?, start_location = ?,
			end_location = ?, transport_method = ?, total_cost = ?,
			start_date = ?, end_date = ?, cover_image = ?,
			updated_at = datetime('now')
		WHERE id = ?
	`, t.Title, t.Description, t.StartLocation, t.EndLocation,
		string(t.TransportMethod), t.TotalCost, t.StartDate, t.EndDate, t.CoverImage, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update travel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("travel not found")
	}

	return nil
}

// Delete removes the travel. Its itineraries go with it via the
// ON DELETE CASCADE foreign key.
func (s *TravelStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM travels WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete travel: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("travel not found")
	}

	return nil
}
