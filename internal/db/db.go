package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"guru-api/internal/config"
)

type APIKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:k"`
	ID            int64      `bun:"id,pk,autoincrement"`
	KeyString     string     `bun:"key_string,notnull,unique"`
	OwnerName     string     `bun:"owner_name,notnull"`
	Credits       int        `bun:"credits,notnull,default:0"`
	IsUnlimited   bool       `bun:"is_unlimited,notnull,default:false"`
	ExpiresAt     *time.Time `bun:"expires_at,nullzero"`
	IsActive      bool       `bun:"is_active,notnull,default:true"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64             `bun:"id,pk,autoincrement"`
	Content       string            `bun:"content,notnull"`
	Metadata      map[string]string `bun:"metadata,type:jsonb"`
}

type Figure struct {
	bun.BaseModel `bun:"table:content_library,alias:f"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Subject       string `bun:"subject,notnull"`
	Medium        string `bun:"medium,notnull"`
	ImageURL      string `bun:"image_url,notnull"`
	Description   string `bun:"description,notnull"`
	PageNumber    int    `bun:"page_number"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.SupabaseURL + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.SupabaseKey))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*APIKey)(nil), (*Document)(nil), (*Figure)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Store wraps the bun connection; every component gets one injected.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetActiveKey(ctx context.Context, keyString string) (*APIKey, error) {
	key := new(APIKey)
	err := s.db.NewSelect().
		Model(key).
		Where("k.key_string = ?", keyString).
		Where("k.is_active = TRUE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (s *Store) InsertKey(ctx context.Context, key *APIKey) error {
	_, err := s.db.NewInsert().Model(key).Exec(ctx)
	return err
}

// DebitKey decrements the balance in a single statement so concurrent
// requests against the same key cannot lose an update.
func (s *Store) DebitKey(ctx context.Context, id int64) (int, error) {
	var credits int
	_, err := s.db.NewUpdate().
		Model((*APIKey)(nil)).
		Set("credits = credits - 1").
		Where("id = ?", id).
		Returning("credits").
		Exec(ctx, &credits)
	return credits, err
}

func (s *Store) RevokeKey(ctx context.Context, keyString string) error {
	_, err := s.db.NewUpdate().
		Model((*APIKey)(nil)).
		Set("is_active = FALSE").
		Where("key_string = ?", keyString).
		Exec(ctx)
	return err
}

func (s *Store) ListKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	err := s.db.NewSelect().Model(&keys).Order("id").Scan(ctx)
	return keys, err
}

func (s *Store) SearchDocuments(ctx context.Context, keyword, subject, medium string, limit int) ([]Document, error) {
	var docs []Document
	err := s.db.NewSelect().
		Model(&docs).
		Column("d.id", "d.content", "d.metadata").
		Where("d.metadata->>'subject' = ?", subject).
		Where("d.metadata->>'medium' = ?", medium).
		Where("d.content ILIKE ?", "%"+keyword+"%").
		Order("d.id").
		Limit(limit).
		Scan(ctx)
	return docs, err
}

func (s *Store) FindFigure(ctx context.Context, figureID, subject, medium string) (*Figure, error) {
	fig := new(Figure)
	err := s.db.NewSelect().
		Model(fig).
		Where("f.subject = ?", subject).
		Where("f.medium = ?", medium).
		Where("f.description ILIKE ?", "%Figure "+figureID+"%").
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fig, nil
}

func (s *Store) StoreDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&docs).Exec(ctx)
	return err
}

func (s *Store) StoreFigures(ctx context.Context, figs []Figure) error {
	if len(figs) == 0 {
		return nil
	}
	_, err := s.db.NewInsert().Model(&figs).Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
