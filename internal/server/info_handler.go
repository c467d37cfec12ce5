package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Health reports liveness
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
	})
}

// GetFormats lists the format sets currently offered by each form
func (s *Server) GetFormats(c *gin.Context) {
	formats := s.currentFormats()
	c.JSON(http.StatusOK, FormatsResponse{
		Success: true,
		Data: FormatsData{
			Import:    formatInfos(formats.Import),
			Export:    formatInfos(formats.Export),
			Streaming: formatInfos(formats.Streaming),
			Action:    formatInfos(formats.Action),
		},
	})
}

// GetLogs returns recent log entries
// Query parameters:
//   - limit: maximum number of entries to return (default: 100, max: 500)
//   - since: RFC3339 timestamp to filter entries after this time
func (s *Server) GetLogs(c *gin.Context) {
	if s.recent == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Recent log not available",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	entries := s.recent.Latest(0)
	if sinceStr := c.Query("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid since timestamp, use RFC3339 format",
			})
			return
		}
		entries = s.recent.Since(since)
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	c.JSON(http.StatusOK, LogsResponse{
		Success: true,
		Total:   len(entries),
		Logs:    entries,
	})
}
