package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgRow struct {
	owner string
	img   GeneratedImage
}

// fakeSQL interprets the handful of statements PostgresStore issues.
type fakeSQL struct {
	rows  []pgRow
	execs []string
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, query)
	if strings.Contains(query, "insert into textfx_history") {
		f.rows = append(f.rows, pgRow{
			owner: args[1].(string),
			img: GeneratedImage{
				ID:        args[0].(string),
				Text:      args[2].(string),
				Prompt:    args[3].(string),
				MIMEType:  args[4].(string),
				Data:      args[5].([]byte),
				CreatedAt: args[6].(time.Time),
			},
		})
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeSQL) owned(owner string) []GeneratedImage {
	var out []GeneratedImage
	for _, r := range f.rows {
		if r.owner == owner {
			out = append(out, r.img)
		}
	}
	slices.SortFunc(out, func(a, b GeneratedImage) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (f *fakeSQL) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	for _, img := range f.owned(args[0].(string)) {
		if img.ID == args[1].(string) {
			return &fakeRows{imgs: []GeneratedImage{img}, i: 0}
		}
	}
	return &fakeRows{}
}

func (f *fakeSQL) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	return &fakeRows{imgs: f.owned(args[0].(string)), i: -1}, nil
}

// fakeRows serves images as pgx.Rows, and as a pgx.Row when i starts at 0.
type fakeRows struct {
	imgs []GeneratedImage
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}
func (r *fakeRows) RawValues() [][]byte { return nil }
func (r *fakeRows) Conn() *pgx.Conn     { return nil }

func (r *fakeRows) Next() bool {
	r.i++
	return r.i < len(r.imgs)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.i < 0 || r.i >= len(r.imgs) {
		return pgx.ErrNoRows
	}
	img := r.imgs[r.i]
	*dest[0].(*string) = img.ID
	*dest[1].(*string) = img.Text
	*dest[2].(*string) = img.Prompt
	*dest[3].(*string) = img.MIMEType
	*dest[4].(*[]byte) = img.Data
	*dest[5].(*time.Time) = img.CreatedAt
	return nil
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := &fakeSQL{}
	s := NewPostgresStore(db, "owner-1")
	base := time.Unix(1700000000, 0)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Add(ctx, sample(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(list); !slices.Equal(got, []string{"c", "b", "a"}) {
		t.Errorf("unexpected order %v", got)
	}
	if string(list[0].Data) != "png-c" {
		t.Errorf("unexpected data %q", list[0].Data)
	}
}

func TestPostgresStoreGet(t *testing.T) {
	ctx := context.Background()
	db := &fakeSQL{}
	s := NewPostgresStore(db, "owner-1")
	s.Add(ctx, sample("a", time.Now()))

	got, err := s.Get(ctx, "a")
	if err != nil || got == nil || got.Text != "HELLO a" {
		t.Fatalf("Get(a) = %+v, %v", got, err)
	}

	got, err = s.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Errorf("Get(missing) = %+v, %v; want nil, nil", got, err)
	}

	got, err = NewPostgresStore(db, "someone-else").Get(ctx, "a")
	if err != nil || got != nil {
		t.Errorf("other owner read the record: %+v, %v", got, err)
	}
}

func TestMigrate(t *testing.T) {
	db := &fakeSQL{}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatal(err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "create table if not exists textfx_history") {
		t.Errorf("unexpected statements %v", db.execs)
	}
}

func TestScanImageWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := scanImage(errRow{boom})
	if !errors.Is(err, boom) || errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("unexpected error %v", err)
	}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
