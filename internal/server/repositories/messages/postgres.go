package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/dbx"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectFull = `
	SELECT m.id, m.user_id, u.login_name, m.text,
	       m.recording_data, m.recording_key, m.recording_filename,
	       m.image_data, m.image_key, m.image_filename,
	       m.created_at
	FROM messages m
	JOIN users u ON u.id = m.user_id
	WHERE m.id = $1
`

const selectSummary = `
	SELECT m.id, m.user_id, u.login_name, m.text,
	       (m.recording_data IS NOT NULL OR m.recording_key IS NOT NULL), m.recording_filename,
	       (m.image_data IS NOT NULL OR m.image_key IS NOT NULL), m.image_filename,
	       m.created_at
	FROM messages m
	JOIN users u ON u.id = m.user_id
`

// Create inserts msg and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (user_id, text,
			recording_data, recording_key, recording_filename,
			image_data, image_key, image_filename)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	recData, recKey, recName := mediaArgs(msg.Recording)
	imgData, imgKey, imgName := mediaArgs(msg.Image)

	err := r.db.QueryRowContext(ctx, query, msg.OwnerID, msg.Text,
		recData, recKey, recName, imgData, imgKey, imgName).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	return scanFull(r.db.QueryRowContext(ctx, selectFull, id))
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id int64) (*models.Message, error) {
	return scanFull(r.db.QueryRowContext(ctx, selectFull+" FOR UPDATE OF m", id))
}

// Update overwrites text and both attachment slots of an existing row.
// The owner column is never written.
func (r *PostgresRepository) Update(ctx context.Context, msg *models.Message) error {
	query := `
		UPDATE messages SET
			text = $2,
			recording_data = $3, recording_key = $4, recording_filename = $5,
			image_data = $6, image_key = $7, image_filename = $8
		WHERE id = $1
	`
	recData, recKey, recName := mediaArgs(msg.Recording)
	imgData, imgKey, imgName := mediaArgs(msg.Image)

	res, err := r.db.ExecContext(ctx, query, msg.ID, msg.Text,
		recData, recKey, recName, imgData, imgKey, imgName)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Message, error) {
	return r.list(ctx, selectSummary+" ORDER BY m.id")
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Message, error) {
	return r.list(ctx, selectSummary+" WHERE m.user_id = $1 ORDER BY m.id", ownerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	result := []*models.Message{}
	for rows.Next() {
		var (
			msg              models.Message
			text             sql.NullString
			hasRec, hasImg   bool
			recName, imgName sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.OwnerID, &msg.OwnerName, &text,
			&hasRec, &recName, &hasImg, &imgName, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Text = nullString(text)
		if hasRec {
			msg.Recording = &models.Media{Filename: recName.String}
		}
		if hasImg {
			msg.Image = &models.Media{Filename: imgName.String}
		}
		result = append(result, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanFull(row *sql.Row) (*models.Message, error) {
	var (
		msg                              models.Message
		text                             sql.NullString
		recData, imgData                 []byte
		recKey, recName, imgKey, imgName sql.NullString
	)
	err := row.Scan(&msg.ID, &msg.OwnerID, &msg.OwnerName, &text,
		&recData, &recKey, &recName,
		&imgData, &imgKey, &imgName,
		&msg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	msg.Text = nullString(text)
	msg.Recording = toMedia(recData, recKey, recName)
	msg.Image = toMedia(imgData, imgKey, imgName)
	return &msg, nil
}

func toMedia(data []byte, key, name sql.NullString) *models.Media {
	if data == nil && !key.Valid {
		return nil
	}
	return &models.Media{
		Filename: name.String,
		Blob:     models.Blob{Data: data, StorageKey: key.String},
	}
}

func mediaArgs(m *models.Media) (data []byte, key, name *string) {
	if m == nil {
		return nil, nil, nil
	}
	if m.Blob.StorageKey != "" {
		k := m.Blob.StorageKey
		key = &k
	}
	n := m.Filename
	return m.Blob.Data, key, &n
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
