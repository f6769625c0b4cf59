package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	loadSql "github.com/siherrmann/mailrag/sql"
)

// EmailsDBHandlerFunctions defines the interface for Emails database operations.
type EmailsDBHandlerFunctions interface {
	InsertEmail(ctx context.Context, email *model.Email) error
	SelectEmailsByReceiver(ctx context.Context, receiver string) ([]*model.Email, error)
	SelectAllEmails(ctx context.Context) ([]*model.Email, error)
	CountEmails(ctx context.Context) (int, error)
	DeleteAllEmails(ctx context.Context) error
}

// EmailsDBHandler handles email-related database operations
type EmailsDBHandler struct {
	db *helper.Database
}

// NewEmailsDBHandler creates a new emails database handler.
// It loads the email-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEmailsDBHandler(db *helper.Database, force bool) (*EmailsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	emailsDbHandler := &EmailsDBHandler{
		db: db,
	}

	err := loadSql.LoadEmailsSql(emailsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load emails sql", err)
	}

	err = emailsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EmailsDBHandler")

	return emailsDbHandler, nil
}

// CreateTable creates the 'emails' table in the database.
// If the table already exists, it does not create it again.
func (h *EmailsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_emails();`)
	if err != nil {
		return helper.NewError("init emails", err)
	}

	h.db.Logger.Info("Checked/created table emails")

	return nil
}

// InsertEmail inserts the email and all of its chunks in one transaction.
// Either everything is stored or nothing is.
func (h *EmailsDBHandler) InsertEmail(ctx context.Context, email *model.Email) error {
	if email.Metadata == nil {
		email.Metadata = model.Metadata{}
	}

	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(
		ctx,
		`SELECT * FROM insert_email($1, $2, $3)`,
		email.Receiver,
		email.Content,
		email.Metadata,
	)

	err = row.Scan(
		&email.ID,
		&email.RID,
		&email.Receiver,
		&email.Content,
		&email.Metadata,
		&email.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	for i, chunk := range email.Chunks {
		chunk.EmailID = email.ID
		err = insertChunk(ctx, tx, chunk)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit", err)
	}

	return nil
}

// SelectEmailsByReceiver retrieves the emails of receiver with their chunks
// in insertion order. The name has to match completely, case is ignored.
func (h *EmailsDBHandler) SelectEmailsByReceiver(ctx context.Context, receiver string) ([]*model.Email, error) {
	return h.selectEmails(ctx, `SELECT * FROM select_emails_by_receiver($1)`, receiver)
}

// SelectAllEmails retrieves every email with its chunks in insertion order.
func (h *EmailsDBHandler) SelectAllEmails(ctx context.Context) ([]*model.Email, error) {
	return h.selectEmails(ctx, `SELECT * FROM select_all_emails()`)
}

// CountEmails returns the number of stored emails.
func (h *EmailsDBHandler) CountEmails(ctx context.Context) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_emails()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// DeleteAllEmails removes all emails and chunks and restarts the ids.
func (h *EmailsDBHandler) DeleteAllEmails(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_all_emails()`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// selectEmails runs an email query and attaches the chunks in a second
// query inside the same read-only transaction.
func (h *EmailsDBHandler) selectEmails(ctx context.Context, query string, args ...any) ([]*model.Email, error) {
	tx, err := h.db.Instance.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, helper.NewError("begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	emails := []*model.Email{}
	byID := make(map[int64]*model.Email)
	ids := []int64{}
	for rows.Next() {
		email := &model.Email{}
		err := rows.Scan(
			&email.ID,
			&email.RID,
			&email.Receiver,
			&email.Content,
			&email.Metadata,
			&email.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		emails = append(emails, email)
		byID[email.ID] = email
		ids = append(ids, email.ID)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return emails, nil
	}

	chunks, err := selectChunksByEmails(ctx, tx, ids)
	if err != nil {
		return nil, helper.NewError("select chunks", err)
	}
	for _, chunk := range chunks {
		if email, ok := byID[chunk.EmailID]; ok {
			email.Chunks = append(email.Chunks, chunk)
		}
	}

	return emails, nil
}
