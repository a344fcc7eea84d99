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

type JournalHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type journalHandler struct {
	journals repository.JournalRepository
	log      *logrus.Logger
}

func NewJournalHandler(journals repository.JournalRepository, log *logrus.Logger) JournalHandler {
	return &journalHandler{journals: journals, log: log}
}

type JournalRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *journalHandler) List(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	journals, err := h.journals.ListByUser(identity.UserID)
	if err != nil {
		h.log.Errorf("Failed to list journals: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve journal entries"})
		return
	}
	c.JSON(http.StatusOK, journals)
}

func (h *journalHandler) Get(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	journal, ok := h.load(c, identity)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, journal)
}

func (h *journalHandler) Create(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content cannot be empty."})
		return
	}

	journal := &models.Journal{Title: req.Title, Content: req.Content, UID: identity.UserID}
	if err := h.journals.Create(journal); err != nil {
		h.log.Errorf("Failed to create journal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create journal entry"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Journal entry created successfully.", "id": journal.ID})
}

func (h *journalHandler) Update(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	var req JournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content cannot be empty."})
		return
	}

	journal, ok := h.load(c, identity)
	if !ok {
		return
	}

	if err := h.journals.Update(journal.ID, req.Title, req.Content); err != nil {
		h.log.Errorf("Failed to update journal %d: %v", journal.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update journal entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Journal entry updated successfully."})
}

func (h *journalHandler) Delete(c *gin.Context) {
	identity := middleware.IdentityFrom(c)

	journal, ok := h.load(c, identity)
	if !ok {
		return
	}

	if err := h.journals.Delete(journal.ID); err != nil {
		h.log.Errorf("Failed to delete journal %d: %v", journal.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete journal entry"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted successfully."})
}

// load fetches the journal from the id parameter and gates it: journals
// are private, so even reads require ownership (or admin).
func (h *journalHandler) load(c *gin.Context, identity authz.Identity) (*models.Journal, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid journal id"})
		return nil, false
	}

	journal, err := h.journals.Get(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found."})
			return nil, false
		}
		h.log.Errorf("Failed to get journal %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
		return nil, false
	}

	if !authz.AuthorizeOwner(journal.UID, identity) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return nil, false
	}
	return journal, true
}
