package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CommunityRepository interface {
	CreatePost(post *models.CommunityPost) error
	// GetPost loads a post with upvote/comment counts and the viewer's
	// own upvote state.
	GetPost(id, viewerID int64) (*models.CommunityPost, error)
	ListPosts(viewerID int64, category, sort string, limit, offset int) ([]models.CommunityPost, error)
	PostOwner(id int64) (int64, error)
	UpdatePost(id int64, category, title, content string) error
	DeletePost(id int64) error
	UpvotePost(userID, postID int64) error
	RemovePostUpvote(userID, postID int64) error
	ReportPost(userID, postID int64, reason string) error

	CreateComment(comment *models.CommunityComment) error
	ListComments(postID, viewerID int64, limit, offset int) ([]models.CommunityComment, error)
	CommentOwner(id int64) (int64, error)
	UpdateComment(id int64, content string) error
	DeleteComment(id int64) error
	UpvoteComment(userID, commentID int64) error
	RemoveCommentUpvote(userID, commentID int64) error
	ReportComment(userID, commentID int64, reason string) error
}

type communityRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCommunityRepository(db *sqlx.DB, logger *zap.Logger) CommunityRepository {
	return &communityRepository{db: db, logger: logger}
}

const postSelect = `
	SELECT p.id, p.user_id, p.category, p.title, p.content, p.created_at, u.username,
		(SELECT COUNT(*) FROM community_post_upvotes WHERE post_id = p.id) AS upvote_count,
		(SELECT COUNT(*) FROM community_comments WHERE post_id = p.id) AS comment_count,
		EXISTS (SELECT 1 FROM community_post_upvotes WHERE post_id = p.id AND user_id = $1) AS is_upvoted
	FROM community_posts p
	JOIN users u ON u.id = p.user_id`

func (r *communityRepository) CreatePost(post *models.CommunityPost) error {
	query := `INSERT INTO community_posts (user_id, category, title, content)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, post.UserID, post.Category, post.Title, post.Content).StructScan(post)
}

func (r *communityRepository) GetPost(id, viewerID int64) (*models.CommunityPost, error) {
	var post models.CommunityPost
	query := postSelect + ` WHERE p.id = $2`
	if err := r.db.Get(&post, query, viewerID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *communityRepository) ListPosts(viewerID int64, category, sort string, limit, offset int) ([]models.CommunityPost, error) {
	posts := []models.CommunityPost{}
	query := postSelect
	args := []interface{}{viewerID}

	if category != "" && category != "all" {
		args = append(args, category)
		query += fmt.Sprintf(" WHERE p.category = $%d", len(args))
	}

	if sort == "trending" {
		query += " ORDER BY upvote_count DESC"
	} else {
		query += " ORDER BY p.id DESC"
	}

	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	if err := r.db.Select(&posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *communityRepository) PostOwner(id int64) (int64, error) {
	var owner int64
	if err := r.db.Get(&owner, `SELECT user_id FROM community_posts WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

func (r *communityRepository) UpdatePost(id int64, category, title, content string) error {
	result, err := r.db.Exec(`UPDATE community_posts SET category = $1, title = $2, content = $3 WHERE id = $4`,
		category, title, content, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) DeletePost(id int64) error {
	result, err := r.db.Exec(`DELETE FROM community_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) UpvotePost(userID, postID int64) error {
	// Idempotent: a second upvote from the same user is a no-op.
	_, err := r.db.Exec(`INSERT INTO community_post_upvotes (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, postID)
	return err
}

func (r *communityRepository) RemovePostUpvote(userID, postID int64) error {
	result, err := r.db.Exec(`DELETE FROM community_post_upvotes WHERE user_id = $1 AND post_id = $2`, userID, postID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) ReportPost(userID, postID int64, reason string) error {
	query := `INSERT INTO community_post_reports (user_id, post_id, reason) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, post_id) DO UPDATE SET reason = EXCLUDED.reason`
	_, err := r.db.Exec(query, userID, postID, reason)
	return err
}

func (r *communityRepository) CreateComment(comment *models.CommunityComment) error {
	query := `INSERT INTO community_comments (post_id, user_id, content, parent_comment_id)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	return r.db.QueryRowx(query, comment.PostID, comment.UserID, comment.Content, comment.ParentCommentID).StructScan(comment)
}

func (r *communityRepository) ListComments(postID, viewerID int64, limit, offset int) ([]models.CommunityComment, error) {
	comments := []models.CommunityComment{}
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.parent_comment_id, c.created_at, u.username,
			(SELECT COUNT(*) FROM community_comment_upvotes WHERE comment_id = c.id) AS upvotes,
			EXISTS (SELECT 1 FROM community_comment_upvotes WHERE comment_id = c.id AND user_id = $1) AS is_upvoted
		FROM community_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $2
		ORDER BY c.created_at ASC
		LIMIT $3 OFFSET $4`
	if err := r.db.Select(&comments, query, viewerID, postID, limit, offset); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *communityRepository) CommentOwner(id int64) (int64, error) {
	var owner int64
	if err := r.db.Get(&owner, `SELECT user_id FROM community_comments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return owner, nil
}

func (r *communityRepository) UpdateComment(id int64, content string) error {
	result, err := r.db.Exec(`UPDATE community_comments SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) DeleteComment(id int64) error {
	result, err := r.db.Exec(`DELETE FROM community_comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) UpvoteComment(userID, commentID int64) error {
	_, err := r.db.Exec(`INSERT INTO community_comment_upvotes (user_id, comment_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, commentID)
	return err
}

func (r *communityRepository) RemoveCommentUpvote(userID, commentID int64) error {
	result, err := r.db.Exec(`DELETE FROM community_comment_upvotes WHERE user_id = $1 AND comment_id = $2`,
		userID, commentID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *communityRepository) ReportComment(userID, commentID int64, reason string) error {
	query := `INSERT INTO community_comment_reports (user_id, comment_id, reason) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id, comment_id) DO UPDATE SET reason = EXCLUDED.reason`
	_, err := r.db.Exec(query, userID, commentID, reason)
	return err
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
