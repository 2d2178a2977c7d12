package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"RoboAdvisor/internal/model"
)

// SQLiteStore persists goals and registrations to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the analytics reader does not block goal writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite goal store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS goals (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			goal_id                 TEXT UNIQUE NOT NULL,
			owner_id                TEXT NOT NULL DEFAULT '',
			corpus                  REAL NOT NULL,
			sip                     REAL NOT NULL,
			horizon                 INTEGER NOT NULL,
			risk_category           TEXT NOT NULL,
			conservative_projection REAL,
			expected_projection     REAL,
			best_case_projection    REAL,
			base_return             REAL,
			adjusted_return         REAL,
			recent_1y_return        REAL,
			recent_1y_source        TEXT,
			confidence              TEXT,
			confidence_pct          INTEGER,
			volatility              REAL,
			mean_reversion_applied  INTEGER NOT NULL DEFAULT 0,
			projection_category     TEXT,
			category_fallback       INTEGER NOT NULL DEFAULT 0,
			created_at              INTEGER NOT NULL,
			updated_at              INTEGER NOT NULL,
			status                  TEXT NOT NULL DEFAULT 'saved',
			email_sent_at           INTEGER,
			revisited_at            INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goal_owner ON goals(owner_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_goal_status ON goals(status)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			name                    TEXT NOT NULL DEFAULT '',
			email                   TEXT NOT NULL,
			city                    TEXT NOT NULL DEFAULT '',
			country                 TEXT NOT NULL DEFAULT '',
			consent                 INTEGER NOT NULL,
			consent_at              INTEGER NOT NULL,
			questionnaire_completed INTEGER NOT NULL DEFAULT 1,
			recommendations_viewed  INTEGER NOT NULL DEFAULT 0,
			risk_score              INTEGER,
			risk_category           TEXT NOT NULL DEFAULT '',
			created_at              INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reg_email ON registrations(email)`,
		`CREATE INDEX IF NOT EXISTS idx_reg_country ON registrations(country)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

const goalColumns = `goal_id, owner_id, corpus, sip, horizon, risk_category,
	conservative_projection, expected_projection, best_case_projection,
	base_return, adjusted_return, recent_1y_return, recent_1y_source,
	confidence, confidence_pct, volatility, mean_reversion_applied,
	projection_category, category_fallback,
	created_at, updated_at, status, email_sent_at, revisited_at`

func (s *SQLiteStore) Save(ctx context.Context, rec *model.GoalRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := rec.Projection
	_, err := s.db.ExecContext(ctx, `INSERT INTO goals (`+goalColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.GoalID, rec.OwnerID, rec.Input.Corpus, rec.Input.MonthlySIP,
		rec.Input.HorizonYears, string(rec.Input.RiskCategory),
		p.Conservative, p.Expected, p.BestCase,
		p.BaseReturn, p.AdjustedReturn, p.RecentReturn, string(p.RecentReturnSource),
		p.Confidence, p.ConfidencePercentage, p.Volatility, boolInt(p.MeanReversionApplied),
		string(p.Category), boolInt(p.CategoryFallback),
		rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), string(rec.Status),
		nullTime(rec.EmailSentAt), nullTime(rec.RevisitedAt),
	)
	if err != nil {
		return "", fmt.Errorf("insert goal %s: %w", rec.GoalID, err)
	}
	return rec.GoalID, nil
}

func (s *SQLiteStore) Get(ctx context.Context, goalID string) (*model.GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE goal_id = ?`, goalID)
	rec, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal %s: %w", goalID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]model.GoalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []model.GoalRecord
	for rows.Next() {
		rec, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkEmailSent(ctx context.Context, goalID string, at time.Time) error {
	return s.mark(ctx, goalID, model.StatusEmailSent, "email_sent_at", at)
}

func (s *SQLiteStore) MarkRevisited(ctx context.Context, goalID string, at time.Time) error {
	return s.mark(ctx, goalID, model.StatusRevisited, "revisited_at", at)
}

// mark reads the current status and writes the advanced one in a single
// transaction so concurrent events cannot demote each other.
func (s *SQLiteStore) mark(ctx context.Context, goalID string, event model.GoalStatus, stampCol string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM goals WHERE goal_id = ?`, goalID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}

	next := model.GoalStatus(current).Advance(event)
	ts := at.UnixNano()
	if _, err := tx.ExecContext(ctx,
		`UPDATE goals SET status = ?, updated_at = ?, `+stampCol+` = ? WHERE goal_id = ?`,
		string(next), ts, ts, goalID,
	); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Analytics(ctx context.Context) (*Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := newAnalytics()
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(AVG(corpus), 0), COALESCE(AVG(sip), 0),
		COALESCE(AVG(horizon), 0), COALESCE(AVG(expected_projection), 0)
		FROM goals`).Scan(&a.TotalGoals, &a.AvgCorpus, &a.AvgSIP, &a.AvgHorizon, &a.AvgExpected)
	if err != nil {
		return nil, fmt.Errorf("goal totals: %w", err)
	}

	groups := []struct {
		col string
		add func(key string, n int)
	}{
		{"status", func(k string, n int) { a.ByStatus[model.GoalStatus(k)] = n }},
		{"confidence", func(k string, n int) { a.ByConfidence[k] = n }},
		{"risk_category", func(k string, n int) { a.ByRiskCategory[model.RiskCategory(k)] = n }},
	}
	for _, g := range groups {
		if err := s.countBy(ctx, g.col, g.add); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *SQLiteStore) countBy(ctx context.Context, col string, add func(string, int)) error {
	rows, err := s.db.QueryContext(ctx, `SELECT COALESCE(`+col+`, ''), COUNT(*) FROM goals GROUP BY 1`)
	if err != nil {
		return fmt.Errorf("count by %s: %w", col, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("count by %s: %w", col, err)
		}
		add(key, n)
	}
	return rows.Err()
}

const registrationColumns = `id, name, email, city, country, consent, consent_at,
	questionnaire_completed, recommendations_viewed, risk_score, risk_category, created_at`

func (s *SQLiteStore) SaveRegistration(ctx context.Context, reg *model.Registration, at time.Time) (int64, error) {
	if err := reg.Normalize(); err != nil {
		return 0, fmt.Errorf("invalid registration: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var score sql.NullInt64
	if reg.RiskScore != nil {
		score = sql.NullInt64{Int64: int64(*reg.RiskScore), Valid: true}
	}
	ts := at.UnixNano()
	res, err := s.db.ExecContext(ctx, `INSERT INTO registrations (
		name, email, city, country, consent, consent_at,
		questionnaire_completed, recommendations_viewed, risk_score, risk_category, created_at)
		VALUES (?,?,?,?,?,?,1,0,?,?,?)`,
		reg.Name, reg.Email, reg.City, reg.Country, boolInt(reg.Consent), ts,
		score, string(reg.RiskCategory), ts,
	)
	if err != nil {
		return 0, fmt.Errorf("insert registration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("registration id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) MarkRecommendationsViewed(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE registrations SET recommendations_viewed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark viewed %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("registration %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) LatestRegistrations(ctx context.Context, limit int) ([]model.Registration, error) {
	if limit <= 0 {
		limit = DefaultRegistrationLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+registrationColumns+` FROM registrations
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []model.Registration
	for rows.Next() {
		var (
			r                          model.Registration
			risk                       string
			consent, completed, viewed int
			consentAt, created         int64
			score                      sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.City, &r.Country, &consent, &consentAt,
			&completed, &viewed, &score, &risk, &created); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		r.Consent = consent != 0
		r.QuestionnaireCompleted = completed != 0
		r.RecommendationsViewed = viewed != 0
		r.RiskCategory = model.RiskCategory(risk)
		r.ConsentAt = time.Unix(0, consentAt).UTC()
		r.CreatedAt = time.Unix(0, created).UTC()
		if score.Valid {
			n := int(score.Int64)
			r.RiskScore = &n
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Overview(ctx context.Context) (*Overview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := newOverview()
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT email),
		COALESCE(SUM(questionnaire_completed), 0), COALESCE(SUM(recommendations_viewed), 0)
		FROM registrations`).Scan(&o.TotalRegistered, &o.TotalQuestionnaireCompleted, &o.TotalRecommendationsViewed)
	if err != nil {
		return nil, fmt.Errorf("registration totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT country, COUNT(*) FROM registrations GROUP BY country`)
	if err != nil {
		return nil, fmt.Errorf("count by country: %w", err)
	}
	for rows.Next() {
		var country string
		var n int
		if err := rows.Scan(&country, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("count by country: %w", err)
		}
		o.ByCountry[country] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by country: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `SELECT city, country, COUNT(*) FROM registrations
		WHERE city <> '' GROUP BY city, country`)
	if err != nil {
		return nil, fmt.Errorf("count by city: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c CityCount
		if err := rows.Scan(&c.City, &c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("count by city: %w", err)
		}
		o.TopCities = append(o.TopCities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by city: %w", err)
	}
	o.finish()
	return o, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite goal store")
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(sc scanner) (*model.GoalRecord, error) {
	var (
		rec                    model.GoalRecord
		risk, source, category string
		status                 string
		reverted, fellBack     int
		created, updated       int64
		emailSent, revisited   sql.NullInt64
	)
	p := &rec.Projection
	err := sc.Scan(
		&rec.GoalID, &rec.OwnerID, &rec.Input.Corpus, &rec.Input.MonthlySIP,
		&rec.Input.HorizonYears, &risk,
		&p.Conservative, &p.Expected, &p.BestCase,
		&p.BaseReturn, &p.AdjustedReturn, &p.RecentReturn, &source,
		&p.Confidence, &p.ConfidencePercentage, &p.Volatility, &reverted,
		&category, &fellBack,
		&created, &updated, &status, &emailSent, &revisited,
	)
	if err != nil {
		return nil, err
	}
	rec.Input.RiskCategory = model.RiskCategory(risk)
	p.RecentReturnSource = model.RecentReturnSource(source)
	p.MeanReversionApplied = reverted != 0
	p.Category = model.RiskCategory(category)
	p.CategoryFallback = fellBack != 0
	rec.Status = model.GoalStatus(status)
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	rec.EmailSentAt = timePtr(emailSent)
	rec.RevisitedAt = timePtr(revisited)
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(0, n.Int64).UTC()
	return &t
}
