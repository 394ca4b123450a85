package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/common"
	"github.com/RndUsr76/Notish/internal/dbx"
	"github.com/google/uuid"
)

const pgColumns = `id, user_id, content, text_content, tags, project, created_at, updated_at`

// PostgresRepository implements Repository against a remote PostgreSQL
// database opened with the pgx stdlib driver.
type PostgresRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewPostgresRepository returns a PostgresRepository bound to db.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, now: time.Now}
}

func pgMark(n int) string { return "$" + strconv.Itoa(n) }

func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]models.Note, error) {
	query := `SELECT ` + pgColumns + ` FROM notes WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("list", fmt.Errorf("select notes: %w", err))
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanPostgresNote(rows)
		if err != nil {
			return nil, storeErr("list", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID string, fields models.NoteFields) (models.Note, error) {
	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return models.Note{}, storeErr("create", err)
	}

	now := r.now().UTC()
	n := models.Note{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Content:     fields.Content,
		TextContent: fields.TextContent,
		Tags:        fields.Tags,
		Project:     models.NormalizeProject(fields.Project),
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}

	query := `INSERT INTO notes (` + pgColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		n.ID, ownerID, encodeContent(n.Content), n.TextContent, tags, n.Project, now, now,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return models.Note{}, storeErr("create", fmt.Errorf("insert note: %w", err))
	}

	return n, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch models.NotePatch) error {
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	set, err := patchClause(patch, pgMark, updatedAt.UTC())
	if err != nil {
		return storeErr("update", err)
	}

	args := append(set.args, id, ownerID)
	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = %s AND user_id = %s`,
		set, pgMark(len(args)-1), pgMark(len(args)))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storeErr("update", fmt.Errorf("update note: %w", err))
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return storeErr("update", fmt.Errorf("rows affected: %w", err))
	}
	if ra == 0 {
		return storeErr("update", fmt.Errorf("note %s: %w", id, common.ErrNotFound))
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return storeErr("delete", fmt.Errorf("delete note: %w", err))
	}
	return nil
}

func scanPostgresNote(rows *sql.Rows) (models.Note, error) {
	var (
		n       models.Note
		content []byte
		tags    []byte
	)
	if err := rows.Scan(&n.ID, &n.OwnerID, &content, &n.TextContent, &tags, &n.Project, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return models.Note{}, fmt.Errorf("scan note: %w", err)
	}

	var err error
	if n.Tags, err = decodeTags(tags); err != nil {
		return models.Note{}, err
	}
	n.Content = content
	n.Project = models.NormalizeProject(n.Project)
	return n, nil
}
