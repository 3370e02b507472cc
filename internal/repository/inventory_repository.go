package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/swiftroute/bus-seat-reservation/internal/inventory"
	"github.com/swiftroute/bus-seat-reservation/internal/model"
)

// InventoryRepo is the only component that touches durable seat
// inventory. It implements inventory.Store over MySQL and additionally
// owns bus registration and deregistration, because both must create or
// verify the seat inventory atomically with the bus record. Booking
// writes happen inside a single transaction so that the seat map
// mutation and the ledger entry form one durable unit.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns an InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to compose
// transactions across repositories.
func (r *InventoryRepo) DB() *sql.DB { return r.db }

// LoadSeatMap reconstructs the in-memory seat map for busID from the
// bus_seats table. Every bus is created with its full layout, so zero
// rows means the bus does not exist.
func (r *InventoryRepo) LoadSeatMap(ctx context.Context, busID string) (*inventory.SeatMap, error) {
	const q = `SELECT seat_label, status FROM bus_seats WHERE bus_id = ?`
	rows, err := r.db.QueryContext(ctx, q, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var layout, available []string
	for rows.Next() {
		var seat model.BusSeat
		if err := rows.Scan(&seat.SeatLabel, &seat.Status); err != nil {
			return nil, err
		}
		layout = append(layout, seat.SeatLabel)
		if seat.Status == "FREE" {
			available = append(available, seat.SeatLabel)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(layout) == 0 {
		return nil, inventory.ErrBusNotFound
	}
	return inventory.NewSeatMap(busID, layout, available)
}

// SaveBooking persists a successful claim: the ledger entry is inserted
// as pending, the claimed seats are flipped to BOOKED, and the entry is
// promoted to confirmed, all inside one transaction. The seat UPDATE
// carries a status='FREE' guard and an affected-rows check so that any
// disagreement with the in-memory claim aborts the transaction instead
// of double-booking.
func (r *InventoryRepo) SaveBooking(ctx context.Context, sm *inventory.SeatMap, b *inventory.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO bookings (booking_id, bus_id, user_id, total_fare, booking_date, status)
	             VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		b.ID, b.BusID, b.UserID, b.TotalFare,
		b.BookingDate.UTC().Format("2006-01-02 15:04:05"), inventory.StatusPending,
	); err != nil {
		return err
	}

	seatQ := `INSERT INTO booking_seats (booking_id, seat_label, position) VALUES `
	args := make([]interface{}, 0, len(b.Seats)*3)
	for i, label := range b.Seats {
		if i > 0 {
			seatQ += ","
		}
		seatQ += "(?, ?, ?)"
		args = append(args, b.ID, label, i)
	}
	if _, err := tx.ExecContext(ctx, seatQ, args...); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bus_seats SET status = 'BOOKED'
		 WHERE bus_id = ? AND status = 'FREE' AND seat_label IN (`+placeholders(len(b.Seats))+`)`,
		seatArgs(b.BusID, b.Seats)...,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(b.Seats)) {
		return fmt.Errorf("expected to book %d seats, booked %d", len(b.Seats), n)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE booking_id = ?`,
		inventory.StatusConfirmed, b.ID,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SaveCancellation marks the ledger entry canceled and returns its seats
// to FREE within one transaction. The booking row is kept; the ledger is
// append-only and cancellation is a status transition.
func (r *InventoryRepo) SaveCancellation(ctx context.Context, sm *inventory.SeatMap, bookingID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var busID string
	if err := tx.QueryRowContext(ctx,
		`SELECT bus_id FROM bookings WHERE booking_id = ?`, bookingID,
	).Scan(&busID); err != nil {
		if err == sql.ErrNoRows {
			return inventory.ErrBookingNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE booking_id = ?`,
		inventory.StatusCanceled, bookingID,
	); err != nil {
		return err
	}

	seats, err := bookingSeatsTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if len(seats) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE bus_seats SET status = 'FREE'
			 WHERE bus_id = ? AND seat_label IN (`+placeholders(len(seats))+`)`,
			seatArgs(busID, seats)...,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetBooking loads one ledger entry with its seats in request order.
func (r *InventoryRepo) GetBooking(ctx context.Context, bookingID string) (*inventory.Booking, error) {
	const q = `SELECT booking_id, bus_id, user_id, total_fare, booking_date, status
	           FROM bookings WHERE booking_id = ?`
	var b inventory.Booking
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&b.ID, &b.BusID, &b.UserID, &b.TotalFare, &b.BookingDate, &b.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, inventory.ErrBookingNotFound
		}
		return nil, err
	}
	const seatQ = `SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, seatQ, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBookingsByUser returns a user's booking history, newest first.
func (r *InventoryRepo) ListBookingsByUser(ctx context.Context, userID uint64) ([]inventory.Booking, error) {
	return r.listBookings(ctx, `user_id = ?`, userID)
}

// ListBookingsByBus returns every ledger entry for a bus, canceled
// entries included.
func (r *InventoryRepo) ListBookingsByBus(ctx context.Context, busID string) ([]inventory.Booking, error) {
	return r.listBookings(ctx, `bus_id = ?`, busID)
}

func (r *InventoryRepo) listBookings(ctx context.Context, cond string, arg interface{}) ([]inventory.Booking, error) {
	q := `SELECT booking_id, bus_id, user_id, total_fare, booking_date, status
	      FROM bookings WHERE ` + cond + ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]inventory.Booking, 0)
	index := make(map[string]int)
	for rows.Next() {
		var b inventory.Booking
		if err := rows.Scan(&b.ID, &b.BusID, &b.UserID, &b.TotalFare, &b.BookingDate, &b.Status); err != nil {
			return nil, err
		}
		index[b.ID] = len(bookings)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	// Fetch seats for all bookings in one query.
	ids := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	seatQ := `SELECT booking_id, seat_label FROM booking_seats
	          WHERE booking_id IN (` + placeholders(len(ids)) + `) ORDER BY booking_id, position`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var id, label string
		if err := srows.Scan(&id, &label); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			bookings[i].Seats = append(bookings[i].Seats, label)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBus registers a bus and its full FREE seat inventory in one
// transaction. The layout is generated from bus.TotalSeats. Duplicate
// bus_id or registration number yields ErrBusExists.
func (r *InventoryRepo) CreateBus(ctx context.Context, bus *model.Bus) (*inventory.SeatMap, error) {
	layout := inventory.GenerateLayout(bus.TotalSeats)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO buses (bus_id, name, number, source, destination, travel_date,
	                                departure_time, fare_per_seat, total_seats)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins,
		bus.BusID, bus.Name, bus.Number, bus.Source, bus.Destination,
		bus.TravelDate.UTC().Format("2006-01-02"), bus.DepartureTime,
		bus.FarePerSeat, bus.TotalSeats,
	); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrBusExists
		}
		return nil, err
	}

	seatQ := `INSERT INTO bus_seats (bus_id, seat_label, deck, status) VALUES `
	args := make([]interface{}, 0, len(layout)*4)
	for i, label := range layout {
		deck, err := inventory.DeckOf(label)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			seatQ += ","
		}
		seatQ += "(?, ?, ?, 'FREE')"
		args = append(args, bus.BusID, label, string(deck))
	}
	if _, err := tx.ExecContext(ctx, seatQ, args...); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return inventory.NewSeatMap(bus.BusID, layout, layout)
}

// DeleteBus deregisters a bus. It is permitted only when every seat is
// FREE, i.e. the pools equal the full layout; otherwise it fails with
// inventory.ErrBusHasBookings. The check runs inside the delete
// transaction so a concurrent booking cannot slip between check and
// delete. Ledger rows are kept.
func (r *InventoryRepo) DeleteBus(ctx context.Context, busID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var booked int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bus_seats WHERE bus_id = ? AND status <> 'FREE'`, busID,
	).Scan(&booked); err != nil {
		return err
	}
	if booked > 0 {
		return inventory.ErrBusHasBookings
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bus_seats WHERE bus_id = ?`, busID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM buses WHERE bus_id = ?`, busID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBusNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func bookingSeatsTx(ctx context.Context, tx *sql.Tx, bookingID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY position`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		seats = append(seats, label)
	}
	return seats, rows.Err()
}

// placeholders returns "?,?,...,?" with n markers for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// seatArgs prepends busID to the seat labels as query arguments.
func seatArgs(busID string, seats []string) []interface{} {
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, busID)
	for _, s := range seats {
		args = append(args, s)
	}
	return args
}
