package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"backend/internal/authz"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ArticleHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type articleHandler struct {
	articles repository.ArticleRepository
	log      *logrus.Logger
}

func NewArticleHandler(articles repository.ArticleRepository, log *logrus.Logger) ArticleHandler {
	return &articleHandler{articles: articles, log: log}
}

type ArticleRequest struct {
	Title string  `json:"title" binding:"required"`
	Desc  string  `json:"desc" binding:"required"`
	Img   *string `json:"img"`
	Cat   string  `json:"cat"`
}

func (h *articleHandler) List(c *gin.Context) {
	articles, err := h.articles.List(c.Query("cat"))
	if err != nil {
		h.log.Errorf("Failed to list articles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve articles"})
		return
	}
	c.JSON(http.StatusOK, articles)
}

func (h *articleHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	article, err := h.articles.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found."})
			return
		}
		h.log.Errorf("Failed to get article %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve article"})
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *articleHandler) Create(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article := &models.Article{
		Title: req.Title,
		Desc:  req.Desc,
		Img:   req.Img,
		Cat:   req.Cat,
		Date:  time.Now(),
		UID:   identity.UserID,
	}

	if err := h.articles.Create(article); err != nil {
		h.log.Errorf("Failed to create article: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Post has been created.", "id": article.ID})
}

func (h *articleHandler) Update(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authorize(c, id, identity) {
		return
	}

	article := &models.Article{ID: id, Title: req.Title, Desc: req.Desc, Img: req.Img, Cat: req.Cat}
	if err := h.articles.Update(article); err != nil {
		h.log.Errorf("Failed to update article %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post has been updated."})
}

func (h *articleHandler) Delete(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article id"})
		return
	}

	if !h.authorize(c, id, identity) {
		return
	}

	if err := h.articles.Delete(id); err != nil {
		h.log.Errorf("Failed to delete article %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article has been deleted!"})
}

// authorize resolves the article's owner and applies the shared
// ownership predicate: 404 for a missing row, 403 for a foreign one.
func (h *articleHandler) authorize(c *gin.Context, id int64, identity authz.Identity) bool {
	owner, err := h.articles.GetOwner(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found."})
			return false
		}
		h.log.Errorf("Failed to resolve article owner %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return false
	}

	if !authz.AuthorizeOwner(owner, identity) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return false
	}
	return true
}
