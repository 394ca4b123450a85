package notes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/RndUsr76/Notish/internal/client/models"
	"github.com/RndUsr76/Notish/internal/common"
	"github.com/RndUsr76/Notish/internal/dbx"
	"github.com/google/uuid"
)

// timeLayout is fixed width so that ORDER BY on the TEXT column is
// chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteColumns = `id, user_id, content, text_content, tags, project, created_at, updated_at`

// SQLiteRepository implements Repository on a local SQLite file. It is the
// fallback used when no remote database is configured.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository returns a SQLiteRepository bound to db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func sqliteMark(int) string { return "?" }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func (r *SQLiteRepository) List(ctx context.Context, ownerID string) ([]models.Note, error) {
	query := `SELECT ` + sqliteColumns + ` FROM notes WHERE user_id = ? ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, storeErr("list", fmt.Errorf("select notes: %w", err))
	}
	defer rows.Close()

	result := make([]models.Note, 0)
	for rows.Next() {
		n, err := scanSQLiteNote(rows)
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

// Create inserts the note and reads it back in the same transaction, so the
// returned value is exactly what a later List will produce.
func (r *SQLiteRepository) Create(ctx context.Context, ownerID string, fields models.NoteFields) (models.Note, error) {
	tags, err := encodeTags(fields.Tags)
	if err != nil {
		return models.Note{}, storeErr("create", err)
	}

	id := uuid.NewString()
	now := formatTime(r.now())

	var created models.Note
	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO notes (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, ownerID, encodeContent(fields.Content), fields.TextContent, tags,
			models.NormalizeProject(fields.Project), now, now)
		if err != nil {
			return fmt.Errorf("insert note: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM notes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("read back note: %w", err)
		}
		defer rows.Close()

		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return err
			}
			return fmt.Errorf("read back note %s: %w", id, common.ErrNotFound)
		}
		created, err = scanSQLiteNote(rows)
		return err
	})
	if err != nil {
		return models.Note{}, storeErr("create", err)
	}
	return created, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, ownerID, id string, patch models.NotePatch) error {
	updatedAt := patch.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	set, err := patchClause(patch, sqliteMark, formatTime(updatedAt))
	if err != nil {
		return storeErr("update", err)
	}

	args := append(set.args, id, ownerID)
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET `+set.String()+` WHERE id = ? AND user_id = ?`, args...)
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

func (r *SQLiteRepository) Delete(ctx context.Context, ownerID, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return storeErr("delete", fmt.Errorf("delete note: %w", err))
	}
	return nil
}

func scanSQLiteNote(rows *sql.Rows) (models.Note, error) {
	var (
		n                    models.Note
		content, tags        string
		createdAt, updatedAt string
	)
	if err := rows.Scan(&n.ID, &n.OwnerID, &content, &n.TextContent, &tags, &n.Project, &createdAt, &updatedAt); err != nil {
		return models.Note{}, fmt.Errorf("scan note: %w", err)
	}

	var err error
	if n.Tags, err = decodeTags([]byte(tags)); err != nil {
		return models.Note{}, err
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Note{}, err
	}
	n.Content = []byte(content)
	n.Project = models.NormalizeProject(n.Project)
	return n, nil
}
