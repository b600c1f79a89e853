package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/eringen/pubsite/locale"
)

// Driver names accepted in Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultTable is the blog post table in the hosted store.
const DefaultTable = "blog_posts"

var reIdent = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// translatable lists the fields stored once per locale as <field>_<code>.
var translatable = []string{"title", "excerpt", "content"}

// Config selects the backing database. An empty DSN disables the store.
type Config struct {
	Driver string
	DSN    string
	Table  string
}

// Store is a read-only client over the blog post table. A Store built without
// a DSN is disabled: every read returns no rows and no error, so pages render
// their empty state instead of failing.
type Store struct {
	db     *sqlx.DB
	driver string
	table  string
	codes  []locale.Code
	now    func() time.Time
}

// Open connects to the configured store. The connection itself is lazy for
// network drivers; failures surface on the first query.
func Open(ctx context.Context, cfg Config, reg *locale.Registry) (*Store, error) {
	s := &Store{
		driver: cfg.Driver,
		table:  cfg.Table,
		codes:  reg.Codes(),
		now:    time.Now,
	}
	if s.driver == "" {
		s.driver = DriverSQLite
	}
	if s.table == "" {
		s.table = DefaultTable
	}
	if !reIdent.MatchString(s.table) {
		return nil, fmt.Errorf("content: invalid table name %q", s.table)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return s, nil
	}
	switch s.driver {
	case DriverSQLite:
		if err := ensureDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("content: %w", err)
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("content: unsupported driver %q", s.driver)
	}
	dsn := cfg.DSN
	if s.driver == DriverSQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sqlx.Open(s.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("content: open %s: %w", s.driver, err)
	}
	if s.driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
		`); err != nil {
			db.Close()
			return nil, fmt.Errorf("content: configure sqlite: %w", err)
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	}
	s.db = db
	return s, nil
}

// sqliteDSN makes the driver write time.Time values in SQLite's own format,
// which julianday understands.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0o755)
}

// Enabled reports whether the store has a database behind it.
func (s *Store) Enabled() bool {
	return s.db != nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func column(field string, c locale.Code) string {
	return field + "_" + strings.ReplaceAll(string(c), "-", "_")
}

func (s *Store) columns() string {
	cols := []string{"slug"}
	for _, f := range translatable {
		for _, c := range s.codes {
			cols = append(cols, column(f, c))
		}
	}
	cols = append(cols, "cover_image", "author", "published_at", "updated_at", "is_published")
	return strings.Join(cols, ", ")
}

// visible is the predicate every read applies. SQLite stores timestamps as
// text in whatever form the writer chose, so it compares through julianday.
func (s *Store) visible() string {
	if s.driver == DriverSQLite {
		return `is_published = TRUE AND julianday(published_at) <= julianday(?)`
	}
	return `is_published = TRUE AND published_at <= ?`
}

func (s *Store) newestFirst() string {
	if s.driver == DriverSQLite {
		return ` ORDER BY julianday(published_at) DESC`
	}
	return ` ORDER BY published_at DESC`
}

// nowArg is the bound value visible compares against.
func (s *Store) nowArg() any {
	now := s.now().UTC()
	if s.driver == DriverSQLite {
		return now.Format(time.RFC3339Nano)
	}
	return now
}

// timestampLayouts are the text forms accepted for timestamp columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// timestamp scans a nullable timestamp stored natively or as text.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (t *timestamp) Scan(v any) error {
	switch v := v.(type) {
	case nil:
		*t = timestamp{}
		return nil
	case time.Time:
		*t = timestamp{Time: v, Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	}
	return fmt.Errorf("content: cannot scan %T into timestamp", v)
}

func (t *timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			*t = timestamp{Time: v, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("content: unrecognized timestamp %q", s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanPost(row rowScanner) (Post, error) {
	var (
		p         Post
		cover     sql.NullString
		author    sql.NullString
		published timestamp
		updatedAt timestamp
	)
	texts := make([][]sql.NullString, len(translatable))
	dest := []any{&p.Slug}
	for i := range translatable {
		texts[i] = make([]sql.NullString, len(s.codes))
		for j := range s.codes {
			dest = append(dest, &texts[i][j])
		}
	}
	dest = append(dest, &cover, &author, &published, &updatedAt, &p.Published)
	if err := row.Scan(dest...); err != nil {
		return Post{}, err
	}
	fields := []*Text{&p.Title, &p.Excerpt, &p.Content}
	for i, field := range fields {
		*field = make(Text, len(s.codes))
		for j, c := range s.codes {
			(*field)[c] = texts[i][j].String
		}
	}
	if !published.Valid {
		return Post{}, fmt.Errorf("content: post %q has no published_at", p.Slug)
	}
	p.PublishedAt = published.Time
	p.CoverImage = cover.String
	p.Author = author.String
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return p, nil
}

// PublishedPosts returns every visible post, newest first, with all locales.
func (s *Store) PublishedPosts(ctx context.Context) ([]Post, error) {
	if s.db == nil {
		return nil, nil
	}
	q := s.db.Rebind(`SELECT ` + s.columns() + ` FROM ` + s.table +
		` WHERE ` + s.visible() + s.newestFirst())
	rows, err := s.db.QueryxContext(ctx, q, s.nowArg())
	if err != nil {
		return nil, fmt.Errorf("content: list published: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := s.scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("content: scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("content: list published: %w", err)
	}
	return posts, nil
}

// ListPublished returns visible posts in locale c, newest first.
func (s *Store) ListPublished(ctx context.Context, c locale.Code) ([]LocalizedPost, error) {
	posts, err := s.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	return LocalizeAll(posts, c), nil
}

// GetBySlug returns the visible post with slug in locale c. A missing post is
// reported through the bool, not as an error.
func (s *Store) GetBySlug(ctx context.Context, slug string, c locale.Code) (LocalizedPost, bool, error) {
	if s.db == nil {
		return LocalizedPost{}, false, nil
	}
	q := s.db.Rebind(`SELECT ` + s.columns() + ` FROM ` + s.table +
		` WHERE ` + s.visible() + ` AND slug = ? LIMIT 1`)
	p, err := s.scanPost(s.db.QueryRowxContext(ctx, q, s.nowArg(), slug))
	if errors.Is(err, sql.ErrNoRows) {
		return LocalizedPost{}, false, nil
	}
	if err != nil {
		return LocalizedPost{}, false, fmt.Errorf("content: get %q: %w", slug, err)
	}
	return p.Localize(c), true, nil
}

type slugRow struct {
	Slug      string    `db:"slug"`
	UpdatedAt timestamp `db:"updated_at"`
}

// ListSlugsForSitemap returns slug and update time of every visible post.
func (s *Store) ListSlugsForSitemap(ctx context.Context) ([]SlugEntry, error) {
	if s.db == nil {
		return nil, nil
	}
	var rows []slugRow
	q := s.db.Rebind(`SELECT slug, updated_at FROM ` + s.table +
		` WHERE ` + s.visible() + s.newestFirst())
	if err := s.db.SelectContext(ctx, &rows, q, s.nowArg()); err != nil {
		return nil, fmt.Errorf("content: list slugs: %w", err)
	}
	entries := make([]SlugEntry, 0, len(rows))
	for _, r := range rows {
		e := SlugEntry{Slug: r.Slug}
		if r.UpdatedAt.Valid {
			e.UpdatedAt = r.UpdatedAt.Time
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// EnsureSchema creates the post table in a local SQLite database. The hosted
// store is managed elsewhere, so this refuses to touch any other driver.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	if s.driver != DriverSQLite {
		return fmt.Errorf("content: schema bootstrap is only supported for %s", DriverSQLite)
	}
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + s.table + " (\n")
	b.WriteString("    slug TEXT PRIMARY KEY,\n")
	for _, f := range translatable {
		for _, c := range s.codes {
			b.WriteString("    " + column(f, c) + " TEXT NOT NULL DEFAULT '',\n")
		}
	}
	b.WriteString(`    cover_image TEXT,
    author TEXT NOT NULL DEFAULT '',
    published_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP,
    is_published BOOLEAN NOT NULL DEFAULT FALSE
);`)
	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("content: ensure schema: %w", err)
	}
	return nil
}
