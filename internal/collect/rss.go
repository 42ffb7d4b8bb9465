package collect

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/classify"
	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/normalize"
	"pulse.news/pulse/internal/scoring"
	"pulse.news/pulse/internal/store"
)

const (
	rssItemsPerFeed = 10
	rssFeedPacing   = 200 * time.Millisecond
	rssPollMinutes  = 30
)

// RSS polls the curated feed registry. Feed articles are immutable: a
// re-sighted entry is skipped, never updated.
type RSS struct {
	store  Store
	parser *gofeed.Parser
	feeds  []FeedSpec
	log    zerolog.Logger
}

func NewRSS(st Store, client *http.Client, feeds []FeedSpec, log zerolog.Logger) *RSS {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	parser.UserAgent = "pulse/1.0"
	if feeds == nil {
		feeds = FeedRegistry
	}
	return &RSS{
		store:  st,
		parser: parser,
		feeds:  feeds,
		log:    log.With().Str("collector", db.SourceRSS).Logger(),
	}
}

func (c *RSS) Name() string { return db.SourceRSS }

func (c *RSS) Collect(ctx context.Context) (*Result, error) {
	result := &Result{Source: db.SourceRSS}

	for i, feed := range c.feeds {
		if i > 0 {
			if err := pace(ctx, rssFeedPacing); err != nil {
				return result, err
			}
		}

		feedResult, err := c.collectFeed(ctx, feed)
		if err != nil {
			// One broken feed never sinks the run.
			c.log.Error().Err(err).Str("feed", feed.Name).Msg("feed collection failed")
			continue
		}
		result.add(feedResult)
	}

	c.log.Info().
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int("duplicates", result.Duplicates).
		Msg("rss collection complete")
	return result, nil
}

func (c *RSS) collectFeed(ctx context.Context, feed FeedSpec) (*Result, error) {
	src, err := c.store.GetOrCreateSource(ctx, store.NewSource{
		Name:                feed.Name,
		Type:                db.SourceRSS,
		FeedURL:             strPtr(feed.URL),
		Category:            strPtr(feed.Category),
		PollIntervalMinutes: rssPollMinutes,
		BaseWeight:          feed.BaseWeight,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: db.SourceRSS}
	entries := parsed.Items
	if len(entries) > rssItemsPerFeed {
		entries = entries[:rssItemsPerFeed]
	}

	for _, entry := range entries {
		result.Fetched++
		if entry.Title == "" || entry.Link == "" {
			result.Skipped++
			continue
		}
		if err := c.storeEntry(ctx, src, entry, result); err != nil {
			c.log.Error().Err(err).Str("feed", feed.Name).Str("url", entry.Link).Msg("store entry failed")
		}
	}

	if err := c.store.TouchSourcePolled(ctx, src.SourceID); err != nil {
		c.log.Warn().Err(err).Str("feed", feed.Name).Msg("touch source failed")
	}
	return result, nil
}

func (c *RSS) storeEntry(ctx context.Context, src *store.Source, entry *gofeed.Item, result *Result) error {
	externalID := normalize.FeedExternalID(entry.Link)

	existing, err := c.store.FindItemByExternalID(ctx, src.SourceID, externalID)
	if err != nil {
		return err
	}
	if existing != nil {
		result.Skipped++
		return nil
	}

	contentHash := normalize.ContentHash(entry.Title, entry.Link)
	canonical, err := canonicalFor(ctx, c.store, contentHash)
	if err != nil {
		return err
	}

	publishedAt := globaltime.Now()
	if entry.PublishedParsed != nil {
		publishedAt = entry.PublishedParsed.UTC()
	}

	var author *string
	if len(entry.Authors) > 0 && entry.Authors[0].Name != "" {
		author = strPtr(entry.Authors[0].Name)
	}

	entities := classify.Entities(entry.Title)
	importance := scoring.Feed(src.BaseWeight, publishedAt, globaltime.Now(), len(entities))

	_, err = c.store.InsertItem(ctx, store.NewItem{
		SourceID:        src.SourceID,
		ExternalID:      externalID,
		Kind:            db.KindArticle,
		Title:           entry.Title,
		URL:             entry.Link,
		Author:          author,
		PublishedAt:     publishedAt,
		ImportanceScore: importance,
		ContentHash:     contentHash,
		CanonicalItemID: canonical,
		Tags:            classify.DetectTags(entry.Title),
	})
	if err != nil {
		return err
	}
	result.Inserted++
	if canonical != nil {
		result.Duplicates++
	}
	return nil
}
