package repository

import (
	"database/sql"
	"errors"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type JournalRepository interface {
	ListByUser(uid int64) ([]models.Journal, error)
	Get(id int64) (*models.Journal, error)
	Create(journal *models.Journal) error
	Update(id int64, title, content string) error
	Delete(id int64) error
}

type journalRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewJournalRepository(db *sqlx.DB, logger *zap.Logger) JournalRepository {
	return &journalRepository{db: db, logger: logger}
}

func (r *journalRepository) ListByUser(uid int64) ([]models.Journal, error) {
	journals := []models.Journal{}
	query := `SELECT id, title, content, created_at, uid FROM journals WHERE uid = $1 ORDER BY created_at DESC`
	if err := r.db.Select(&journals, query, uid); err != nil {
		return nil, err
	}
	return journals, nil
}

func (r *journalRepository) Get(id int64) (*models.Journal, error) {
	var journal models.Journal
	query := `SELECT id, title, content, created_at, uid FROM journals WHERE id = $1`
	if err := r.db.Get(&journal, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &journal, nil
}

func (r *journalRepository) Create(journal *models.Journal) error {
	query := `INSERT INTO journals (title, content, uid) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowx(query, journal.Title, journal.Content, journal.UID).StructScan(journal)
}

func (r *journalRepository) Update(id int64, title, content string) error {
	result, err := r.db.Exec(`UPDATE journals SET title = $1, content = $2 WHERE id = $3`, title, content, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *journalRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
