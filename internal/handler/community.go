package handler

import (
	"errors"
	"net/http"
	"strconv"

	"backend/internal/authz"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CommunityHandler interface {
	CreatePost(c *gin.Context)
	GetPost(c *gin.Context)
	ListPosts(c *gin.Context)
	UpdatePost(c *gin.Context)
	DeletePost(c *gin.Context)
	UpvotePost(c *gin.Context)
	RemovePostUpvote(c *gin.Context)
	ReportPost(c *gin.Context)

	CreateComment(c *gin.Context)
	ListComments(c *gin.Context)
	UpdateComment(c *gin.Context)
	DeleteComment(c *gin.Context)
	UpvoteComment(c *gin.Context)
	RemoveCommentUpvote(c *gin.Context)
	ReportComment(c *gin.Context)
}

type communityHandler struct {
	community repository.CommunityRepository
	log       *logrus.Logger
}

func NewCommunityHandler(community repository.CommunityRepository, log *logrus.Logger) CommunityHandler {
	return &communityHandler{community: community, log: log}
}

type CommunityPostRequest struct {
	Category string `json:"category" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type CommunityCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ParentCommentID *int64 `json:"parentCommentId"`
}

type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *communityHandler) CreatePost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	var req CommunityPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := &models.CommunityPost{
		UserID:   identity.UserID,
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
	}
	if err := h.community.CreatePost(post); err != nil {
		h.log.Errorf("Failed to create community post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	// Re-read through the joined view so the response carries counts and
	// the author's username, like every other post payload.
	full, err := h.community.GetPost(post.ID, identity.UserID)
	if err != nil {
		h.log.Errorf("Failed to load created post %d: %v", post.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Post created but failed to fetch full data"})
		return
	}

	c.JSON(http.StatusCreated, full)
}

func (h *communityHandler) GetPost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := h.community.GetPost(id, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		h.log.Errorf("Failed to get community post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't load post"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *communityHandler) ListPosts(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	limit := intQuery(c, "limit", 10)
	offset := intQuery(c, "offset", 0)

	posts, err := h.community.ListPosts(identity.UserID, c.Query("category"), c.Query("sort"), limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list community posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Couldn't load posts"})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *communityHandler) UpdatePost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CommunityPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authorizePost(c, id, identity) {
		return
	}

	if err := h.community.UpdatePost(id, req.Category, req.Title, req.Content); err != nil {
		h.log.Errorf("Failed to update community post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post updated"})
}

func (h *communityHandler) DeletePost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if !h.authorizePost(c, id, identity) {
		return
	}

	if err := h.community.DeletePost(id); err != nil {
		h.log.Errorf("Failed to delete community post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *communityHandler) UpvotePost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.community.UpvotePost(identity.UserID, id); err != nil {
		h.log.Errorf("Failed to upvote post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upvote failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post upvoted"})
}

func (h *communityHandler) RemovePostUpvote(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.community.RemovePostUpvote(identity.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Upvote not found"})
			return
		}
		h.log.Errorf("Failed to remove post upvote %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove upvote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upvote removed"})
}

func (h *communityHandler) ReportPost(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.community.ReportPost(identity.UserID, id, req.Reason); err != nil {
		h.log.Errorf("Failed to report post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post reported"})
}

func (h *communityHandler) CreateComment(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req CommunityCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.CommunityComment{
		PostID:          postID,
		UserID:          identity.UserID,
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	}
	if err := h.community.CreateComment(comment); err != nil {
		h.log.Errorf("Failed to create comment on post %d: %v", postID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comment failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"commentId": comment.ID})
}

func (h *communityHandler) ListComments(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 1000)
	offset := intQuery(c, "offset", 0)

	comments, err := h.community.ListComments(postID, identity.UserID, limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list comments for post %d: %v", postID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": nestComments(comments)})
}

func (h *communityHandler) UpdateComment(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authorizeComment(c, id, identity) {
		return
	}

	if err := h.community.UpdateComment(id, req.Content); err != nil {
		h.log.Errorf("Failed to update comment %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}

func (h *communityHandler) DeleteComment(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	if !h.authorizeComment(c, id, identity) {
		return
	}

	if err := h.community.DeleteComment(id); err != nil {
		h.log.Errorf("Failed to delete comment %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *communityHandler) UpvoteComment(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.community.UpvoteComment(identity.UserID, id); err != nil {
		h.log.Errorf("Failed to upvote comment %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upvote failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment upvoted"})
}

func (h *communityHandler) RemoveCommentUpvote(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.community.RemoveCommentUpvote(identity.UserID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment upvote not found"})
			return
		}
		h.log.Errorf("Failed to remove comment upvote %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove comment upvote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment upvote removed"})
}

func (h *communityHandler) ReportComment(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, ok := idParam(c, "commentId")
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.community.ReportComment(identity.UserID, id, req.Reason); err != nil {
		h.log.Errorf("Failed to report comment %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Report failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment reported"})
}

func (h *communityHandler) authorizePost(c *gin.Context, id int64, identity authz.Identity) bool {
	owner, err := h.community.PostOwner(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return false
		}
		h.log.Errorf("Failed to resolve post owner %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return false
	}
	if !authz.AuthorizeOwner(owner, identity) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}
	return true
}

func (h *communityHandler) authorizeComment(c *gin.Context, id int64, identity authz.Identity) bool {
	owner, err := h.community.CommentOwner(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return false
		}
		h.log.Errorf("Failed to resolve comment owner %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return false
	}
	if !authz.AuthorizeOwner(owner, identity) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}
	return true
}

// nestComments turns the flat, chronologically ordered comment list into
// a tree of top-level comments with their replies attached.
func nestComments(comments []models.CommunityComment) []*models.CommunityComment {
	byID := make(map[int64]*models.CommunityComment, len(comments))
	for i := range comments {
		comments[i].Replies = []*models.CommunityComment{}
		byID[comments[i].ID] = &comments[i]
	}

	roots := []*models.CommunityComment{}
	for i := range comments {
		comment := &comments[i]
		if comment.ParentCommentID != nil {
			if parent, ok := byID[*comment.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, comment)
				continue
			}
		}
		roots = append(roots, comment)
	}
	return roots
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
