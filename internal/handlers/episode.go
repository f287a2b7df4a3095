// ===============================
// internal/handlers/episode.go - Episode Catalog Endpoints
// ===============================

package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"podcastbe/internal/services"

	"github.com/gin-gonic/gin"
)

type EpisodeHandler struct {
	service *services.EpisodeService
	uploads *services.UploadService
}

func NewEpisodeHandler(service *services.EpisodeService, uploads *services.UploadService) *EpisodeHandler {
	return &EpisodeHandler{service: service, uploads: uploads}
}

// ===============================
// PUBLIC EPISODE ENDPOINTS
// ===============================

// CreateEpisode accepts a multipart upload (title, description, audio) and
// returns the persisted episode.
func (h *EpisodeHandler) CreateEpisode(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is required"})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is empty"})
		return
	}

	// Reject an empty title before the asset is stored so no orphan file is
	// written for a request that can never insert a row.
	if err := services.ValidateTitle(title); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audioURL, err := h.uploads.UploadAudio(c.Request.Context(), file, header.Filename)
	if err != nil {
		log.Printf("Error: failed to store uploaded audio %s: %v", header.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload episode"})
		return
	}

	episode, err := h.service.Create(c.Request.Context(), title, description, audioURL)
	if err != nil {
		if services.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Error: failed to create episode: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload episode"})
		return
	}

	c.JSON(http.StatusOK, episode)
}

// GetEpisodes lists the whole catalog, newest first.
func (h *EpisodeHandler) GetEpisodes(c *gin.Context) {
	episodes, err := h.service.List(c.Request.Context())
	if err != nil {
		log.Printf("Error: failed to list episodes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch episodes"})
		return
	}

	c.JSON(http.StatusOK, episodes)
}

// GetEpisode returns a single episode by id.
func (h *EpisodeHandler) GetEpisode(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
		return
	}

	episode, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrEpisodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
			return
		}
		log.Printf("Error: failed to fetch episode %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch episode"})
		return
	}

	c.JSON(http.StatusOK, episode)
}

// ===============================
// PLAY COUNTING
// ===============================

// IncrementPlayCount adds one play. Unknown or malformed ids still succeed:
// play tracking must never surface an error to the player.
func (h *EpisodeHandler) IncrementPlayCount(c *gin.Context) {
	if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
		h.service.IncrementPlayCount(c.Request.Context(), id)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ===============================
// CATALOG ANALYTICS
// ===============================

func (h *EpisodeHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		log.Printf("Error: failed to compute catalog stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
