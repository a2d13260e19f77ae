//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_rooms/internal/domain"
	mysqlrepo "hotel_rooms/internal/storage/mysql"
)

// ---------- small helpers ----------
func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=rooms",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?multiStatements=true&charset=utf8mb4,utf8",
		"root", hostPort, "rooms")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

// ---------- the test ----------
func TestRepo_MySQL_SaveLoadUpsert(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	if _, err := repo.Load(ctx); !errors.Is(err, domain.ErrStoreEmpty) {
		t.Fatalf("empty tables: want ErrStoreEmpty, got %v", err)
	}

	rooms := domain.DefaultInventory()
	r, _ := rooms.Get(65)
	mar1 := domain.Day(2025, time.March, 1)
	r.AddBooking(domain.DateRange{Start: mar1, End: mar1.AddDate(0, 0, 2)})
	r.AddBooking(domain.DateRange{Start: mar1.AddDate(0, 1, 0), End: mar1.AddDate(0, 1, 0)})

	if err := repo.Save(ctx, rooms); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 67 {
		t.Fatalf("want 67 rooms, got %d", got.Len())
	}
	g, _ := got.Get(65)
	if g.Number != 66 || g.Bookings().Len() != 2 || len(g.Includes) != 6 {
		t.Fatalf("unexpected room: %+v", g)
	}
	b, _ := g.Bookings().Get(0)
	if !b.Start.Equal(mar1) || b.Days() != 3 {
		t.Fatalf("booking mismatch: %v", b)
	}

	// Upsert replaces bookings and keeps position; a new room lands last.
	g.ReplaceBookings(nil)
	if err := repo.UpsertRoom(ctx, g); err != nil {
		t.Fatalf("UpsertRoom: %v", err)
	}
	if err := repo.UpsertRoom(ctx, domain.NewRoom(99, "Annex", nil, 10, "")); err != nil {
		t.Fatalf("UpsertRoom new: %v", err)
	}
	got, _ = repo.Load(ctx)
	g, _ = got.Get(65)
	last, _ := got.Get(got.Len() - 1)
	if g.Bookings().Len() != 0 || last.Number != 99 {
		t.Fatalf("after upsert: room66=%d bookings, last=%d", g.Bookings().Len(), last.Number)
	}

	// Saving a smaller collection drops the rest.
	small := domain.DefaultInventory()
	small = small.Filter(func(r *domain.Room) bool { return r.Number <= 2 })
	if err := repo.Save(ctx, small); err != nil {
		t.Fatalf("Save small: %v", err)
	}
	got, _ = repo.Load(ctx)
	if got.Len() != 2 {
		t.Fatalf("want 2 rooms, got %d", got.Len())
	}
}
