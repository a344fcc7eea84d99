package models

import "time"

type CommunityPost struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Category  string    `db:"category" json:"category"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Populated by joined reads, not stored on the posts table.
	Username     string `db:"username" json:"username"`
	UpvoteCount  int    `db:"upvote_count" json:"upvoteCount"`
	CommentCount int    `db:"comment_count" json:"commentCount"`
	IsUpvoted    bool   `db:"is_upvoted" json:"isUpvoted"`
}

type CommunityComment struct {
	ID              int64     `db:"id" json:"id"`
	PostID          int64     `db:"post_id" json:"postId"`
	UserID          int64     `db:"user_id" json:"userId"`
	Content         string    `db:"content" json:"content"`
	ParentCommentID *int64    `db:"parent_comment_id" json:"parentCommentId"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`

	Username  string `db:"username" json:"username"`
	Upvotes   int    `db:"upvotes" json:"upvotes"`
	IsUpvoted bool   `db:"is_upvoted" json:"isUpvoted"`

	// Replies is assembled in memory when comments are returned as a tree.
	Replies []*CommunityComment `json:"replies"`
}
