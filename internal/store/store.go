package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides CRUD operations for profile records backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the profile database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dbPath := filepath.Join(dir, "profiles.db")
	dsn := dbPath + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id                     TEXT PRIMARY KEY,
		email                  TEXT NOT NULL DEFAULT '',
		tier                   TEXT NOT NULL DEFAULT 'free',
		stripe_subscription_id TEXT NOT NULL DEFAULT '',
		stripe_customer_id     TEXT NOT NULL DEFAULT '',
		created_at             INTEGER NOT NULL,
		updated_at             INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_tier ON users(tier);
	CREATE TABLE IF NOT EXISTS children (
		id         TEXT PRIMARY KEY,
		parent_id  TEXT NOT NULL DEFAULT '',
		name       TEXT NOT NULL DEFAULT '',
		username   TEXT NOT NULL DEFAULT '',
		year_level INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_children_parent_id ON children(parent_id);
	CREATE TABLE IF NOT EXISTS quiz_results (
		id              TEXT PRIMARY KEY,
		child_id        TEXT NOT NULL DEFAULT '',
		section_id      TEXT NOT NULL DEFAULT '',
		total_questions INTEGER NOT NULL DEFAULT 0,
		correct_answers INTEGER NOT NULL DEFAULT 0,
		created_at      INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_quiz_results_child_id ON quiz_results(child_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init profile schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity (used for readiness probes).
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateUser inserts a new user profile record.
func (s *Store) CreateUser(u *User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Tier = NormalizeTier(u.Tier)

	_, err := s.db.Exec(`
		INSERT INTO users (id, email, tier, stripe_subscription_id, stripe_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, string(u.Tier), u.StripeSubscriptionID, u.StripeCustomerID,
		u.CreatedAt.Unix(), u.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user profile by ID. Returns (nil, nil) when absent.
func (s *Store) GetUser(id string) (*User, error) {
	row := s.db.QueryRow(`SELECT
		id, email, tier, stripe_subscription_id, stripe_customer_id, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// UpdateUserTier performs a single unconditional write of the tier state for
// a user. The write is an upsert with no read-before-write and no concurrency
// token: if two writes race, the one that lands last wins. A subscription ID
// of "" clears the stored subscription reference.
func (s *Store) UpdateUserTier(userID string, tier Tier, subscriptionID string) error {
	now := time.Now().UTC().Unix()
	_, err := s.db.Exec(`
		INSERT INTO users (id, tier, stripe_subscription_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			stripe_subscription_id = excluded.stripe_subscription_id,
			updated_at = excluded.updated_at`,
		userID, string(tier), subscriptionID, now, now,
	)
	if err != nil {
		return fmt.Errorf("update user tier: %w", err)
	}
	return nil
}

// SetUserBillingCustomer records the Stripe customer ID for a user.
func (s *Store) SetUserBillingCustomer(userID, customerID string) error {
	now := time.Now().UTC().Unix()
	_, err := s.db.Exec(`
		INSERT INTO users (id, stripe_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stripe_customer_id = excluded.stripe_customer_id,
			updated_at = excluded.updated_at`,
		userID, customerID, now, now,
	)
	if err != nil {
		return fmt.Errorf("set user billing customer: %w", err)
	}
	return nil
}

// ListUsers returns all user profiles, newest first.
func (s *Store) ListUsers() ([]*User, error) {
	rows, err := s.db.Query(`SELECT
		id, email, tier, stripe_subscription_id, stripe_customer_id, created_at, updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of user profiles.
func (s *Store) CountUsers() (int, error) {
	return s.countTable("users")
}

// CountChildren returns the total number of child profiles.
func (s *Store) CountChildren() (int, error) {
	return s.countTable("children")
}

// CountQuizResults returns the total number of completed quizzes.
func (s *Store) CountQuizResults() (int, error) {
	return s.countTable("quiz_results")
}

func (s *Store) countTable(table string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// UsersByTier returns a map of tier -> user count.
func (s *Store) UsersByTier() (map[Tier]int, error) {
	rows, err := s.db.Query(`SELECT tier, COUNT(*) FROM users GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("count users by tier: %w", err)
	}
	defer rows.Close()

	counts := make(map[Tier]int)
	for rows.Next() {
		var tier string
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Tier(tier)] = count
	}
	return counts, rows.Err()
}

// CreateChild inserts a new child profile record.
func (s *Store) CreateChild(c *Child) error {
	if c == nil {
		return fmt.Errorf("child is nil")
	}
	if c.ID == "" {
		c.ID = NewChildID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO children (id, parent_id, name, username, year_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.ParentID, c.Name, c.Username, c.YearLevel, c.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create child: %w", err)
	}
	return nil
}

// ListChildren returns all child profiles, newest first.
func (s *Store) ListChildren() ([]*Child, error) {
	rows, err := s.db.Query(`SELECT
		id, parent_id, name, username, year_level, created_at
		FROM children ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []*Child
	for rows.Next() {
		var c Child
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Username, &c.YearLevel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		children = append(children, &c)
	}
	return children, rows.Err()
}

// ListChildrenByParent returns the child profiles of one parent, newest first.
func (s *Store) ListChildrenByParent(parentID string) ([]*Child, error) {
	rows, err := s.db.Query(`SELECT
		id, parent_id, name, username, year_level, created_at
		FROM children WHERE parent_id = ? ORDER BY created_at DESC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list children by parent: %w", err)
	}
	defer rows.Close()

	var children []*Child
	for rows.Next() {
		var c Child
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.Username, &c.YearLevel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0).UTC()
		children = append(children, &c)
	}
	return children, rows.Err()
}

// CreateQuizResult inserts a completed quiz record.
func (s *Store) CreateQuizResult(q *QuizResult) error {
	if q == nil {
		return fmt.Errorf("quiz result is nil")
	}
	if q.ID == "" {
		q.ID = NewQuizResultID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO quiz_results (id, child_id, section_id, total_questions, correct_answers, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.ChildID, q.SectionID, q.TotalQuestions, q.CorrectAnswers, q.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("create quiz result: %w", err)
	}
	return nil
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (*User, error) {
	var u User
	var tier string
	var createdAt, updatedAt int64

	err := sc.Scan(&u.ID, &u.Email, &tier, &u.StripeSubscriptionID, &u.StripeCustomerID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.Tier = NormalizeTier(Tier(tier))
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &u, nil
}
