package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/cache"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/store"
)

// Reader is the slice of the store the API serves from.
type Reader interface {
	GetFeed(ctx context.Context, limit, minScore int) (*store.FeedPage, error)
	GetRecent(ctx context.Context, limit, hoursAgo int) ([]store.Item, error)
	GetTrending(ctx context.Context, limit int) ([]store.Item, error)
	GetBySource(ctx context.Context, sourceType string, limit int) ([]store.Item, error)
	GetItemByID(ctx context.Context, itemID int64) (*store.Item, error)
	GetStats(ctx context.Context) (*store.Stats, error)
}

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	reader Reader
	cache  *cache.Cache
	logger zerolog.Logger
	opts   Options
}

type itemResponse struct {
	ItemID          int64     `json:"item_id"`
	SourceID        int64     `json:"source_id"`
	ExternalID      string    `json:"external_id"`
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	URL             string    `json:"url"`
	Author          *string   `json:"author,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	CollectedAt     time.Time `json:"collected_at"`
	Score           *int      `json:"score,omitempty"`
	CommentsCount   *int      `json:"comments_count,omitempty"`
	CommentsURL     *string   `json:"comments_url,omitempty"`
	ImportanceScore int       `json:"importance_score"`
	Tags            []string  `json:"tags"`
	SourceName      string    `json:"source_name"`
	SourceType      string    `json:"source_type"`
	Velocity        float64   `json:"velocity,omitempty"`
}

type sourceStatsResponse struct {
	SourceID    int64  `json:"source_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	ItemCount   int64  `json:"item_count"`
	RecentCount int64  `json:"recent_count"`
}

type statsResponse struct {
	TotalItems  int64                 `json:"total_items"`
	ItemsLast24 int64                 `json:"items_last_24h"`
	Sources     []sourceStatsResponse `json:"sources"`
}

func NewServer(reader Reader, apiCache *cache.Cache, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8080
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		reader: reader,
		cache:  apiCache,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.reader == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("pulse api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("pulse api server stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/feed", s.handleFeed)
	api.GET("/recent", s.handleRecent)
	api.GET("/trending", s.handleTrending)
	api.GET("/sources/:type/items", s.handleSourceItems)
	api.GET("/items/:id", s.handleItemByID)
	api.GET("/stats", s.handleStats)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "pulse",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleFeed(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), store.DefaultFeedLimit, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	minScore, err := parsePositiveInt(c.QueryParam("min_score"), 0, 0, 100)
	if err != nil {
		return failValidation(c, map[string]string{"min_score": err.Error()})
	}

	key := cache.Key("feed", limit, minScore)
	if cached, ok := s.cache.Get(key); ok {
		return success(c, cached)
	}

	page, err := s.reader.GetFeed(c.Request().Context(), limit, minScore)
	if err != nil {
		s.logger.Error().Err(err).Msg("query feed failed")
		return internalError(c, "Failed to load feed")
	}

	data := map[string]any{
		"items":    toItemResponses(page.Items),
		"has_more": page.HasMore,
	}
	s.cache.Set(key, data)
	return success(c, data)
}

func (s *Server) handleRecent(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), store.DefaultRecentLimit, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	hoursAgo, err := parsePositiveInt(c.QueryParam("hours"), store.DefaultRecentHours, 1, 168)
	if err != nil {
		return failValidation(c, map[string]string{"hours": err.Error()})
	}

	key := cache.Key("recent", limit, hoursAgo)
	if cached, ok := s.cache.Get(key); ok {
		return success(c, cached)
	}

	items, err := s.reader.GetRecent(c.Request().Context(), limit, hoursAgo)
	if err != nil {
		s.logger.Error().Err(err).Msg("query recent failed")
		return internalError(c, "Failed to load recent items")
	}

	data := map[string]any{"items": toItemResponses(items)}
	s.cache.Set(key, data)
	return success(c, data)
}

func (s *Server) handleTrending(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), store.DefaultTrendingLimit, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	key := cache.Key("trending", limit)
	if cached, ok := s.cache.Get(key); ok {
		return success(c, cached)
	}

	items, err := s.reader.GetTrending(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query trending failed")
		return internalError(c, "Failed to load trending items")
	}

	data := map[string]any{"items": toItemResponses(items)}
	s.cache.Set(key, data)
	return success(c, data)
}

func (s *Server) handleSourceItems(c echo.Context) error {
	sourceType := strings.TrimSpace(strings.ToLower(c.Param("type")))
	if sourceType == "" {
		return failValidation(c, map[string]string{"type": "is required"})
	}
	limit, err := parsePositiveInt(c.QueryParam("limit"), store.DefaultSourceLimit, 1, 100)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	key := cache.Key("source", sourceType, limit)
	if cached, ok := s.cache.Get(key); ok {
		return success(c, cached)
	}

	items, err := s.reader.GetBySource(c.Request().Context(), sourceType, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("source_type", sourceType).Msg("query source items failed")
		return internalError(c, "Failed to load source items")
	}

	data := map[string]any{
		"source_type": sourceType,
		"items":       toItemResponses(items),
	}
	s.cache.Set(key, data)
	return success(c, data)
}

func (s *Server) handleItemByID(c echo.Context) error {
	itemID, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || itemID <= 0 {
		return failValidation(c, map[string]string{"id": "must be a positive integer"})
	}

	item, err := s.reader.GetItemByID(c.Request().Context(), itemID)
	if err != nil {
		s.logger.Error().Err(err).Int64("item_id", itemID).Msg("query item failed")
		return internalError(c, "Failed to load item")
	}
	if item == nil {
		return failNotFound(c, "Item not found")
	}
	return success(c, toItemResponse(*item))
}

func (s *Server) handleStats(c echo.Context) error {
	const key = "stats"
	if cached, ok := s.cache.Get(key); ok {
		return success(c, cached)
	}

	stats, err := s.reader.GetStats(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}

	data := statsResponse{
		TotalItems:  stats.TotalItems,
		ItemsLast24: stats.ItemsLast24,
		Sources:     make([]sourceStatsResponse, 0, len(stats.Sources)),
	}
	for _, src := range stats.Sources {
		data.Sources = append(data.Sources, sourceStatsResponse{
			SourceID:    src.SourceID,
			Name:        src.Name,
			Type:        src.Type,
			ItemCount:   src.ItemCount,
			RecentCount: src.RecentCount,
		})
	}
	s.cache.Set(key, data)
	return success(c, data)
}

func toItemResponse(item store.Item) itemResponse {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return itemResponse{
		ItemID:          item.ItemID,
		SourceID:        item.SourceID,
		ExternalID:      item.ExternalID,
		Kind:            item.Kind,
		Title:           item.Title,
		URL:             item.URL,
		Author:          item.Author,
		PublishedAt:     item.PublishedAt,
		CollectedAt:     item.CollectedAt,
		Score:           item.Score,
		CommentsCount:   item.CommentsCount,
		CommentsURL:     item.CommentsURL,
		ImportanceScore: item.ImportanceScore,
		Tags:            tags,
		SourceName:      item.SourceName,
		SourceType:      item.SourceType,
		Velocity:        item.Velocity,
	}
}

func toItemResponses(items []store.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

func parsePositiveInt(raw string, fallback, minVal, maxVal int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minVal || value > maxVal {
		return 0, fmt.Errorf("must be between %d and %d", minVal, maxVal)
	}
	return value, nil
}
