package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/OswaldHeaney/reviewnet/crypto"
	"github.com/OswaldHeaney/reviewnet/fhe"
	"github.com/OswaldHeaney/reviewnet/ledger"
)

// PostgresArchive implements ledger.Archiver with PostgreSQL persistence.
type PostgresArchive struct {
	db *sql.DB
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// NewPostgresArchive creates a new PostgreSQL-backed archive.
func NewPostgresArchive(config *PostgresConfig) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	archive := &PostgresArchive{db: db}
	if err := archive.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return archive, nil
}

func (a *PostgresArchive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS papers (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL,
		category TEXT NOT NULL,
		author VARCHAR(128) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT PRIMARY KEY,
		paper_id BIGINT NOT NULL REFERENCES papers(id),
		reviewer VARCHAR(128) NOT NULL,
		recommendation_handle VARCHAR(128) NOT NULL,
		quality_handle VARCHAR(128) NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		UNIQUE (paper_id, reviewer)
	);

	CREATE INDEX IF NOT EXISTS idx_papers_author ON papers(author);
	CREATE INDEX IF NOT EXISTS idx_reviews_paper ON reviews(paper_id);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := a.db.ExecContext(ctx, schema)
	return err
}

// SavePaper persists a committed paper record.
func (a *PostgresArchive) SavePaper(p *ledger.Paper) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO papers (id, title, abstract, category, author, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Title, p.Abstract, p.Category, p.Author.String(), p.Active, p.CreatedAt,
	)
	return err
}

// SaveReview persists a committed review record.
func (a *PostgresArchive) SaveReview(r *ledger.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO reviews (id, paper_id, reviewer, recommendation_handle, quality_handle, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.PaperID, r.Reviewer.String(), r.Recommendation.String(), r.Quality.String(), r.Comment, r.CreatedAt,
	)
	return err
}

// SetPaperActive persists a paper's active flag.
func (a *PostgresArchive) SetPaperActive(paperID uint64, active bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := a.db.ExecContext(ctx, "UPDATE papers SET active = $2 WHERE id = $1", paperID, active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("paper %d not present in archive", paperID)
	}
	return nil
}

// LoadAll retrieves all persisted records ordered by id.
func (a *PostgresArchive) LoadAll() ([]*ledger.Paper, []*ledger.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	papers, err := a.loadPapers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading papers: %w", err)
	}
	reviews, err := a.loadReviews(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading reviews: %w", err)
	}
	return papers, reviews, nil
}

func (a *PostgresArchive) loadPapers(ctx context.Context) ([]*ledger.Paper, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, title, abstract, category, author, active, created_at
		FROM papers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []*ledger.Paper
	for rows.Next() {
		var (
			p      ledger.Paper
			author string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Abstract, &p.Category, &author, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		p.Author, err = crypto.NewPrincipalFromString(author)
		if err != nil {
			return nil, fmt.Errorf("paper %d has invalid author identity: %w", p.ID, err)
		}
		papers = append(papers, &p)
	}
	return papers, rows.Err()
}

func (a *PostgresArchive) loadReviews(ctx context.Context) ([]*ledger.Review, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, paper_id, reviewer, recommendation_handle, quality_handle, comment, created_at
		FROM reviews ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*ledger.Review
	for rows.Next() {
		var (
			r          ledger.Review
			reviewer   string
			recHandle  string
			qualHandle string
		)
		if err := rows.Scan(&r.ID, &r.PaperID, &reviewer, &recHandle, &qualHandle, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		r.Reviewer, err = crypto.NewPrincipalFromString(reviewer)
		if err != nil {
			return nil, fmt.Errorf("review %d has invalid reviewer identity: %w", r.ID, err)
		}
		r.Recommendation = fhe.Handle(recHandle)
		r.Quality = fhe.Handle(qualHandle)
		reviews = append(reviews, &r)
	}
	return reviews, rows.Err()
}

// Close closes the database connection.
func (a *PostgresArchive) Close() error {
	return a.db.Close()
}
