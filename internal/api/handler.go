package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/repo-analyzer/internal/collector"
	"github.com/kurihiro0119/repo-analyzer/internal/domain"
	apperrors "github.com/kurihiro0119/repo-analyzer/internal/errors"
	"github.com/kurihiro0119/repo-analyzer/internal/errutil"
	"github.com/kurihiro0119/repo-analyzer/internal/logging"
)

// Handler handles API requests
type Handler struct {
	collector collector.Collector
}

// NewHandler creates a new API handler
func NewHandler(c collector.Collector) *Handler {
	return &Handler{
		collector: c,
	}
}

// Analyze returns repository metadata, languages and top contributors
// GET /analyze?repo=owner/name
func (h *Handler) Analyze(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	analysis, err := h.collector.GetAnalysis(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// GetTree returns the directory tree
// GET /tree?repo=owner/name
func (h *Handler) GetTree(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	tree, err := h.collector.GetTree(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Tree{Tree: tree})
}

// GetActivity returns weekly commit counts
// GET /activity?repo=owner/name
func (h *Handler) GetActivity(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	activity, err := h.collector.GetActivity(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Activity{Activity: activity})
}

// GetCoverage returns the detected test coverage
// GET /coverage?repo=owner/name
func (h *Handler) GetCoverage(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	coverage, err := h.collector.GetCoverage(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, coverage)
}

// GetStats returns extended repository statistics
// GET /stats?repo=owner/name
func (h *Handler) GetStats(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	stats, err := h.collector.GetStats(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetIssues returns issue statistics and recent issues
// GET /issues?repo=owner/name
func (h *Handler) GetIssues(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	report, err := h.collector.GetIssues(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetPullRequests returns pull request statistics and recent pull requests
// GET /pull-requests?repo=owner/name
func (h *Handler) GetPullRequests(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	report, err := h.collector.GetPullRequests(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReleases returns the latest releases
// GET /releases?repo=owner/name
func (h *Handler) GetReleases(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	releases, err := h.collector.GetReleases(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Releases{Releases: releases})
}

// GetDependencies returns dependency manifests keyed by file name
// GET /dependencies?repo=owner/name
func (h *Handler) GetDependencies(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	deps, err := h.collector.GetDependencies(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, deps)
}

// GetTopics returns the repository topics
// GET /topics?repo=owner/name
func (h *Handler) GetTopics(c *gin.Context) {
	repo, ok := repoParam(c)
	if !ok {
		return
	}

	topics, err := h.collector.GetTopics(c.Request.Context(), repo)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Topics{Topics: topics})
}

// HealthCheck returns health status
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// repoParam reads the repo query parameter. It writes a 400 response when absent or malformed.
func repoParam(c *gin.Context) (domain.RepoID, bool) {
	raw := c.Query("repo")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing repo parameter"})
		return domain.RepoID{}, false
	}
	repo, err := domain.ParseRepoID(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid repo parameter, expected owner/name"})
		return domain.RepoID{}, false
	}
	return repo, true
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		status = http.StatusForbidden
	case apperrors.ErrCodeBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	case apperrors.ErrCodeUpstream:
		status = http.StatusBadGateway
	case apperrors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}

	ctx := c.Request.Context()
	if status == http.StatusInternalServerError {
		errutil.HandleError(ctx, "Request failed", err)
	} else {
		logging.From(ctx).Warn("Request failed", "status", status, "error", err)
	}

	c.JSON(status, gin.H{
		"error": apperrors.MessageOf(err),
	})
}
