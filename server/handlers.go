package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/motivateai/rag/pkg/history"
	"github.com/motivateai/rag/pkg/rag"
)

func (s *Server) home(c *gin.Context) {
	entries, err := s.history.Recent(10)
	if err != nil {
		s.log.Error("failed to load history", "error", err)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"History":          entries,
		"DefaultK":         s.config.DefaultK,
		"DefaultThreshold": s.config.DefaultThreshold,
	})
}

func (s *Server) query(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query cannot be empty"})
		return
	}

	k, err := strconv.Atoi(c.DefaultPostForm("k", strconv.Itoa(s.config.DefaultK)))
	if err != nil || k < 1 || k > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "k must be between 1 and 10"})
		return
	}

	threshold, err := strconv.ParseFloat(
		c.DefaultPostForm("threshold", strconv.FormatFloat(s.config.DefaultThreshold, 'f', -1, 64)), 64)
	if err != nil || threshold < 0.1 || threshold > 1.0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be between 0.1 and 1.0"})
		return
	}

	filter := strings.TrimSpace(c.PostForm("filter"))

	result, err := s.engine.Query(c.Request.Context(), rag.Request{
		Query:     query,
		K:         k,
		Threshold: threshold,
		Filter:    filter,
	})
	if err != nil {
		s.log.Error("query failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Query failed: " + err.Error()})
		return
	}

	if _, err := s.history.Add(history.Entry{
		Query:     query,
		K:         k,
		Threshold: threshold,
		Filter:    filter,
		Answer:    result.Answer,
		Sources:   result.Sources,
	}); err != nil {
		s.log.Error("failed to record history", "error", err)
	}

	recent, err := s.history.Recent(5)
	if err != nil {
		s.log.Error("failed to load history", "error", err)
	}

	c.HTML(http.StatusOK, "result.html", gin.H{
		"Query":     query,
		"K":         k,
		"Threshold": threshold,
		"Filter":    filter,
		"Result":    result,
		"History":   recent,
	})
}

func (s *Server) historyPage(c *gin.Context) {
	entries, err := s.history.Recent(0)
	if err != nil {
		s.log.Error("failed to load history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.HTML(http.StatusOK, "history.html", gin.H{"History": entries})
}

func (s *Server) clearHistory(c *gin.Context) {
	if err := s.history.Clear(); err != nil {
		s.log.Error("failed to clear history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Query history cleared"})
}

type apiQueryRequest struct {
	Query     string  `json:"query" binding:"required"`
	K         int     `json:"k"`
	Threshold float64 `json:"threshold"`
	Filter    string  `json:"filter"`
}

func (s *Server) apiQuery(c *gin.Context) {
	var req apiQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.K == 0 {
		req.K = s.config.DefaultK
	}
	if req.Threshold == 0 {
		req.Threshold = s.config.DefaultThreshold
	}

	result, err := s.engine.Query(c.Request.Context(), rag.Request{
		Query:     req.Query,
		K:         req.K,
		Threshold: req.Threshold,
		Filter:    req.Filter,
	})
	if err != nil {
		s.log.Error("query failed", "query", req.Query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	if _, err := s.history.Add(history.Entry{
		Query:     req.Query,
		K:         req.K,
		Threshold: req.Threshold,
		Filter:    req.Filter,
		Answer:    result.Answer,
		Sources:   result.Sources,
	}); err != nil {
		s.log.Error("failed to record history", "error", err)
	}

	c.JSON(http.StatusOK, result)
}
