// Package web exposes the HTTP API: planning generation, mosque directory
// lookups and artifact downloads.
package web

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"mawaqitics/internal/cache"
	"mawaqitics/internal/config"
	"mawaqitics/internal/mawaqit"
	"mawaqitics/internal/planner"
	"mawaqitics/internal/prayer"
)

// Server holds the HTTP layer's collaborators.
type Server struct {
	cfg       *config.Config
	generator *planner.Generator
	directory *mawaqit.Directory
	cache     *cache.Manager

	httpServer *http.Server
}

// New assembles the server and its routes.
func New(cfg *config.Config, gen *planner.Generator, dir *mawaqit.Directory, cacheMgr *cache.Manager) *Server {
	s := &Server{cfg: cfg, generator: gen, directory: dir, cache: cacheMgr}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", s.handleHealth)
	router.POST("/api/planning", s.handlePlanning)
	router.GET("/api/countries", s.handleCountries)
	router.GET("/api/mosques", s.handleMosques)
	router.GET("/api/cache/stats", s.handleCacheStats)
	router.GET("/download/ics/:filename", s.handleDownload)

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// requestLogger logs one line per request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("listen", s.cfg.Listen).Msg("http server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
}

// planningRequest is the POST /api/planning body.
type planningRequest struct {
	MosqueID       string                    `json:"masjid_id" form:"masjid_id"`
	Scope          string                    `json:"scope" form:"scope"`
	PaddingBefore  *int                      `json:"padding_before" form:"padding_before"`
	PaddingAfter   *int                      `json:"padding_after" form:"padding_after"`
	IncludeSunset  bool                      `json:"include_sunset" form:"include_sunset"`
	PrayerPaddings map[string]prayer.Padding `json:"prayer_paddings"`
	ShowHijriDate  bool                      `json:"show_hijri_date" form:"show_hijri_date"`
	VoluntaryFasts bool                      `json:"include_voluntary_fasts" form:"include_voluntary_fasts"`
	IncludeAdhkar  bool                      `json:"include_adhkar" form:"include_adhkar"`
}

func (s *Server) handlePlanning(c *gin.Context) {
	var body planningRequest
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scope, err := planner.ParseScope(body.Scope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	padding := prayer.Padding{Before: *s.cfg.PaddingBefore, After: *s.cfg.PaddingAfter}
	if body.PaddingBefore != nil {
		padding.Before = *body.PaddingBefore
	}
	if body.PaddingAfter != nil {
		padding.After = *body.PaddingAfter
	}

	req := planner.Request{
		MosqueID:      body.MosqueID,
		Scope:         scope,
		Padding:       padding,
		PerPrayer:     body.PrayerPaddings,
		IncludeSunset: body.IncludeSunset,
	}
	req.Features.ShowHijriDate = body.ShowHijriDate
	req.Features.IncludeVoluntaryFasts = body.VoluntaryFasts
	req.Features.IncludeAdhkar = body.IncludeAdhkar

	result, err := s.generator.Generate(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		var notFound *mawaqit.NotFoundError
		var upstream *mawaqit.UpstreamDataError
		var padErr *prayer.PaddingError
		var scopeErr *planner.ScopeError
		switch {
		case errors.As(err, &notFound):
			status = http.StatusNotFound
		case errors.As(err, &upstream):
			status = http.StatusBadGateway
		case errors.As(err, &padErr), errors.As(err, &scopeErr):
			status = http.StatusBadRequest
		}
		log.Error().Err(err).Str("mosque", body.MosqueID).Msg("planning generation failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"masjid_id":    result.MosqueID,
		"scope":        result.Scope,
		"timezone":     result.Timezone,
		"prayer_times": downloadURL(result.PrayerTimes),
		"slots":        downloadURL(result.Slots),
		"empty_slots":  downloadURL(result.EmptySlots),
		"segments":     result.Segments,
	})
}

func downloadURL(path string) string {
	return "/download/ics/" + filepath.Base(path)
}

func (s *Server) handleCountries(c *gin.Context) {
	countries, err := s.directory.Countries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (s *Server) handleMosques(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country query parameter is required"})
		return
	}

	mosques, err := s.directory.Mosques(country)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mosques)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}

func (s *Server) handleDownload(c *gin.Context) {
	filename := c.Param("filename")
	// Reject traversal; artifacts live flat in the output directory.
	if filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") || !strings.HasSuffix(filename, ".ics") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	path := filepath.Join(s.cfg.OutputDir, filename)
	c.Header("Content-Type", "text/calendar; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.File(path)
}
