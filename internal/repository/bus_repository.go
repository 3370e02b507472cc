package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/swiftroute/bus-seat-reservation/internal/model"
)

// BusRepo provides read access to bus records: lookup by external bus
// ID and route search. Bus data (name, route, schedule, fare) is
// read-only to the inventory engine; creation and deletion go through
// InventoryRepo because they must touch the seat inventory atomically.
type BusRepo struct {
	db *sql.DB
}

// NewBusRepo returns a BusRepo bound to the given database.
func NewBusRepo(db *sql.DB) *BusRepo { return &BusRepo{db: db} }

const busColumns = `id, bus_id, name, number, source, destination, travel_date,
                    departure_time, fare_per_seat, total_seats, created_at, updated_at`

// GetByBusID fetches a bus by its external identifier. It returns
// ErrBusNotFound when no row matches.
func (r *BusRepo) GetByBusID(ctx context.Context, busID string) (*model.Bus, error) {
	q := `SELECT ` + busColumns + ` FROM buses WHERE bus_id = ? LIMIT 1`
	var b model.Bus
	err := r.db.QueryRowContext(ctx, q, busID).Scan(
		&b.ID, &b.BusID, &b.Name, &b.Number, &b.Source, &b.Destination, &b.TravelDate,
		&b.DepartureTime, &b.FarePerSeat, &b.TotalSeats, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Search returns buses matching a route. Source and destination are
// compared case-insensitively; the travel date is optional and matches
// the whole day when provided. Results are ordered by departure time.
func (r *BusRepo) Search(ctx context.Context, source, destination string, travelDate *time.Time) ([]model.Bus, error) {
	where := []string{"LOWER(source) = ?", "LOWER(destination) = ?"}
	args := []interface{}{strings.ToLower(strings.TrimSpace(source)), strings.ToLower(strings.TrimSpace(destination))}
	if travelDate != nil {
		where = append(where, "travel_date = ?")
		args = append(args, travelDate.UTC().Format("2006-01-02"))
	}
	q := `SELECT ` + busColumns + ` FROM buses WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY travel_date, departure_time`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buses := make([]model.Bus, 0)
	for rows.Next() {
		var b model.Bus
		if err := rows.Scan(
			&b.ID, &b.BusID, &b.Name, &b.Number, &b.Source, &b.Destination, &b.TravelDate,
			&b.DepartureTime, &b.FarePerSeat, &b.TotalSeats, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return buses, nil
}
