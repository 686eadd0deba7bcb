package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/nutricoach/core/store"
	"github.com/siherrmann/nutricoach/helper"
	"github.com/siherrmann/nutricoach/model"
	loadSql "github.com/siherrmann/nutricoach/sql"
)

// IngredientsDBHandlerFunctions defines the interface for Ingredients database operations.
type IngredientsDBHandlerFunctions interface {
	InsertIngredient(ctx context.Context, position int, record *model.IngredientRecord) error
	SeedFromStore(ctx context.Context, s *store.Store) error
	SelectAllIngredients(ctx context.Context) ([]model.IngredientRecord, error)
	Search(ctx context.Context, embedding []float32, k int) (model.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
	DeleteAllIngredients(ctx context.Context) (int64, error)
}

// IngredientsDBHandler handles ingredient-related database operations.
// It mirrors the embedding store in postgres and searches it with pgvector.
type IngredientsDBHandler struct {
	db        *helper.Database
	dimension int
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewIngredientsDBHandler creates a new ingredients database handler.
// It loads ingredient-related SQL functions and creates the table for embeddings of length embeddingDim.
// If force is true, it will reload the SQL functions even if they already exist.
func NewIngredientsDBHandler(db *helper.Database, embeddingDim int, force bool) (*IngredientsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	ingredientsDbHandler := &IngredientsDBHandler{
		db:        db,
		dimension: embeddingDim,
	}

	err := loadSql.LoadIngredientsSql(ingredientsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load ingredients sql", err)
	}

	err = ingredientsDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized IngredientsDBHandler")

	return ingredientsDbHandler, nil
}

// CreateTable creates the 'ingredients' table in the database.
// If the table already exists, it does not create it again.
func (h *IngredientsDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_ingredients($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("init ingredients", err)
	}

	h.db.Logger.Info("Checked/created table ingredients")

	return nil
}

// InsertIngredient inserts record at position. The RID of record is set from the database.
func (h *IngredientsDBHandler) InsertIngredient(ctx context.Context, position int, record *model.IngredientRecord) error {
	return h.insert(ctx, h.db.Instance, position, record)
}

func (h *IngredientsDBHandler) insert(ctx context.Context, q queryRower, position int, record *model.IngredientRecord) error {
	if len(record.Embedding) != h.dimension {
		return helper.NewError("insert ingredient", fmt.Errorf("embedding dimension %d differs from table dimension %d", len(record.Embedding), h.dimension))
	}

	tags := record.HealthConcernType
	if tags == nil {
		tags = []string{}
	}

	row := q.QueryRowContext(
		ctx,
		`SELECT * FROM insert_ingredient($1, $2, $3, $4, $5)`,
		position,
		record.Name,
		pgvector.NewVector(record.Embedding),
		record.EvidenceStrength,
		pq.Array(tags),
	)

	_, err := scanIngredient(row, record)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SeedFromStore replaces the table contents with the records of s, keeping store order
func (h *IngredientsDBHandler) SeedFromStore(ctx context.Context, s *store.Store) error {
	if s.Len() > 0 && s.Dimension() != h.dimension {
		return helper.NewError("seed ingredients", fmt.Errorf("store dimension %d differs from table dimension %d", s.Dimension(), h.dimension))
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT delete_all_ingredients();`); err != nil {
		return helper.NewError("delete ingredients", err)
	}

	for i, record := range s.Records() {
		if err := h.insert(ctx, tx, i, &record); err != nil {
			return helper.NewError(fmt.Sprintf("insert record %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit", err)
	}

	h.db.Logger.Info("Seeded ingredients", "count", s.Len())

	return nil
}

// SelectAllIngredients returns all records in store order
func (h *IngredientsDBHandler) SelectAllIngredients(ctx context.Context) ([]model.IngredientRecord, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_ingredients()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []model.IngredientRecord
	for rows.Next() {
		var record model.IngredientRecord
		if _, err := scanIngredient(rows, &record); err != nil {
			return nil, helper.NewError("scan", err)
		}
		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// Search returns the k records most similar to embedding by cosine similarity.
// Ties are ordered by store position. k <= 0 uses model.DefaultTopK.
func (h *IngredientsDBHandler) Search(ctx context.Context, embedding []float32, k int) (model.RetrievalResult, error) {
	if k <= 0 {
		k = model.DefaultTopK
	}
	if len(embedding) != h.dimension {
		return nil, helper.NewError("search ingredients", fmt.Errorf("embedding dimension %d differs from table dimension %d", len(embedding), h.dimension))
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_ingredients_by_similarity($1, $2)`,
		pgvector.NewVector(embedding),
		k,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	result := model.RetrievalResult{}
	for rows.Next() {
		var scored model.ScoredIngredient
		var id int64
		var position int
		var createdAt time.Time
		var vector pgvector.Vector
		err := rows.Scan(
			&id,
			&scored.Record.RID,
			&position,
			&scored.Record.Name,
			&vector,
			&scored.Record.EvidenceStrength,
			pq.Array(&scored.Record.HealthConcernType),
			&createdAt,
			&scored.Score,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		scored.Record.Embedding = vector.Slice()
		result = append(result, scored)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return result, nil
}

// Count returns the number of stored records
func (h *IngredientsDBHandler) Count(ctx context.Context) (int, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_ingredients();`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count ingredients", err)
	}
	return int(count), nil
}

// DeleteAllIngredients removes every record and returns how many were deleted
func (h *IngredientsDBHandler) DeleteAllIngredients(ctx context.Context) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT delete_all_ingredients();`).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("delete ingredients", err)
	}
	return deleted, nil
}

// Dimension returns the embedding length of the table
func (h *IngredientsDBHandler) Dimension() int {
	return h.dimension
}

type scanner interface {
	Scan(dest ...any) error
}

// scanIngredient scans a row of the ingredient functions into record and returns its position
func scanIngredient(row scanner, record *model.IngredientRecord) (int, error) {
	var id int64
	var position int
	var createdAt time.Time
	var vector pgvector.Vector
	err := row.Scan(
		&id,
		&record.RID,
		&position,
		&record.Name,
		&vector,
		&record.EvidenceStrength,
		pq.Array(&record.HealthConcernType),
		&createdAt,
	)
	if err != nil {
		return 0, err
	}
	record.Embedding = vector.Slice()
	return position, nil
}
