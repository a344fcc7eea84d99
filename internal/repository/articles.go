package repository

import (
	"database/sql"
	"errors"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type ArticleRepository interface {
	List(cat string) ([]models.Article, error)
	Get(id int64) (*models.ArticleDetail, error)
	// GetOwner returns the owning user id without loading the row.
	GetOwner(id int64) (int64, error)
	Create(article *models.Article) error
	Update(article *models.Article) error
	Delete(id int64) error
}

type articleRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewArticleRepository(db *sqlx.DB, logger *zap.Logger) ArticleRepository {
	return &articleRepository{db: db, logger: logger}
}

func (r *articleRepository) List(cat string) ([]models.Article, error) {
	articles := []models.Article{}
	if cat != "" {
		query := `SELECT id, title, description, img, cat, date, uid FROM articles WHERE cat = $1 ORDER BY date DESC`
		if err := r.db.Select(&articles, query, cat); err != nil {
			return nil, err
		}
		return articles, nil
	}

	query := `SELECT id, title, description, img, cat, date, uid FROM articles ORDER BY date DESC`
	if err := r.db.Select(&articles, query); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepository) Get(id int64) (*models.ArticleDetail, error) {
	var article models.ArticleDetail
	query := `SELECT a.id, a.title, a.description, a.img, a.cat, a.date, a.uid,
	                 u.username, u.img AS user_img
	          FROM articles a
	          JOIN users u ON u.id = a.uid
	          WHERE a.id = $1`
	if err := r.db.Get(&article, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) GetOwner(id int64) (int64, error) {
	var owner int64
	if err := r.db.Get(&owner, `SELECT uid FROM articles WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

func (r *articleRepository) Create(article *models.Article) error {
	query := `INSERT INTO articles (title, description, img, cat, date, uid)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowx(query, article.Title, article.Desc, article.Img,
		article.Cat, article.Date, article.UID).Scan(&article.ID)
}

func (r *articleRepository) Update(article *models.Article) error {
	query := `UPDATE articles SET title = $1, description = $2, img = $3, cat = $4 WHERE id = $5`
	result, err := r.db.Exec(query, article.Title, article.Desc, article.Img, article.Cat, article.ID)
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

func (r *articleRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
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
