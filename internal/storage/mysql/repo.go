package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"hotel_rooms/internal/domain"
	"hotel_rooms/internal/seq"
)

// Repo is a RoomStore on MySQL. Schema lives in migrations/.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open parses dsn and forces parseTime and UTC so DATE columns scan into time.Time.
func Open(dsn string) (*sql.DB, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	conn, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(conn), nil
}

func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *Repo) Load(ctx context.Context) (*seq.List[*domain.Room], error) {
	rows, err := r.db.QueryContext(ctx, listRoomsSQL)
	if err != nil {
		return nil, errors.Join(domain.ErrPersistenceRead, err)
	}
	defer rows.Close()

	rooms := seq.New[*domain.Room]()
	byNumber := map[int]*domain.Room{}
	for rows.Next() {
		var (
			number, price int
			typ, image    string
			includesJSON  []byte
		)
		if err := rows.Scan(&number, &typ, &includesJSON, &price, &image); err != nil {
			return nil, errors.Join(domain.ErrPersistenceRead, err)
		}
		var includes []string
		if err := json.Unmarshal(includesJSON, &includes); err != nil {
			return nil, fmt.Errorf("%w: room %d includes: %w", domain.ErrPersistenceRead, number, err)
		}
		room := domain.NewRoom(number, typ, includes, price, image)
		rooms.Append(room)
		byNumber[number] = room
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(domain.ErrPersistenceRead, err)
	}
	if rooms.Len() == 0 {
		return nil, domain.ErrStoreEmpty
	}

	brows, err := r.db.QueryContext(ctx, listBookingsSQL)
	if err != nil {
		return nil, errors.Join(domain.ErrPersistenceRead, err)
	}
	defer brows.Close()
	for brows.Next() {
		var number int
		var start, end time.Time
		if err := brows.Scan(&number, &start, &end); err != nil {
			return nil, errors.Join(domain.ErrPersistenceRead, err)
		}
		room, ok := byNumber[number]
		if !ok {
			continue
		}
		d, err := domain.NewDateRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: room %d: %w", domain.ErrPersistenceRead, number, err)
		}
		room.AddBooking(d)
	}
	if err := brows.Err(); err != nil {
		return nil, errors.Join(domain.ErrPersistenceRead, err)
	}
	return rooms, nil
}

// Save overwrites the tables with rooms in one transaction.
func (r *Repo) Save(ctx context.Context, rooms *seq.List[*domain.Room]) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(domain.ErrPersistenceWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = errors.Join(domain.ErrPersistenceWrite, err)
		}
	}()

	numbers := make([]any, 0, rooms.Len())
	for pos, room := range rooms.All() {
		if err = writeRoom(ctx, tx, pos, room); err != nil {
			return err
		}
		numbers = append(numbers, room.Number)
	}
	if len(numbers) == 0 {
		_, err = tx.ExecContext(ctx, "DELETE FROM rooms")
	} else {
		_, err = tx.ExecContext(ctx, deleteRoomsPrefix+placeholders(len(numbers)), numbers...)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertRoom writes one room and replaces its bookings. A new room goes to the end.
func (r *Repo) UpsertRoom(ctx context.Context, room *domain.Room) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(domain.ErrPersistenceWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			err = errors.Join(domain.ErrPersistenceWrite, err)
		}
	}()

	var pos int
	err = tx.QueryRowContext(ctx, positionOfSQL, room.Number).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, nextPositionSQL).Scan(&pos)
	}
	if err != nil {
		return err
	}
	if err = writeRoom(ctx, tx, pos, room); err != nil {
		return err
	}
	return tx.Commit()
}

func writeRoom(ctx context.Context, tx *sql.Tx, pos int, room *domain.Room) error {
	includes := room.Includes
	if includes == nil {
		includes = []string{}
	}
	inc, _ := json.Marshal(includes)
	if _, err := tx.ExecContext(ctx, upsertRoomSQL,
		room.Number,
		pos,
		room.Type,
		string(inc),
		room.Price,
		room.ImageName,
	); err != nil {
		return fmt.Errorf("upsert room %d: %w", room.Number, err)
	}
	if _, err := tx.ExecContext(ctx, deleteBookingsSQL, room.Number); err != nil {
		return fmt.Errorf("clear bookings %d: %w", room.Number, err)
	}
	bs := room.Bookings()
	if bs.Len() == 0 {
		return nil
	}
	values := make([]string, 0, bs.Len())
	args := make([]any, 0, bs.Len()*4)
	for i, b := range bs.All() {
		values = append(values, "(?,?,?,?)")
		args = append(args, room.Number, i, b.Start, b.End)
	}
	if _, err := tx.ExecContext(ctx, insertBookingsPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("insert bookings %d: %w", room.Number, err)
	}
	return nil
}

func placeholders(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
}
