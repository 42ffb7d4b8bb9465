package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"pulse.news/pulse/internal/classify"
	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/normalize"
	"pulse.news/pulse/internal/scoring"
	"pulse.news/pulse/internal/store"
)

const (
	hnTopStoryCount = 100
	hnNewStoryCount = 50
	hnMaxStories    = 150
	hnBatchSize     = 20
	hnBatchPacing   = 100 * time.Millisecond

	hnBaseWeight  = 7
	hnPollMinutes = 10
	hnItemURLBase = "https://news.ycombinator.com/item?id="
	hnDefaultAPI  = "https://hacker-news.firebaseio.com/v0"
	hnSourceName  = "Hacker News"
)

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

// HackerNews polls the Firebase item API for AI-related stories on the top
// and new front pages.
type HackerNews struct {
	store   Store
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewHackerNews(st Store, client *http.Client, baseURL string, log zerolog.Logger) *HackerNews {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = hnDefaultAPI
	}
	return &HackerNews{
		store:   st,
		client:  client,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(hnBatchPacing), 1),
		log:     log.With().Str("collector", db.SourceHackerNews).Logger(),
	}
}

func (c *HackerNews) Name() string { return db.SourceHackerNews }

func (c *HackerNews) Collect(ctx context.Context) (*Result, error) {
	src, err := c.store.GetOrCreateSource(ctx, store.NewSource{
		Name:                hnSourceName,
		Type:                db.SourceHackerNews,
		PollIntervalMinutes: hnPollMinutes,
		BaseWeight:          hnBaseWeight,
	})
	if err != nil {
		return nil, err
	}

	ids, err := c.candidateIDs(ctx)
	if err != nil {
		return nil, err
	}

	stories, err := c.fetchStories(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: db.SourceHackerNews, Fetched: len(stories)}
	for _, story := range stories {
		if story.Type != "story" || story.Title == "" {
			result.Skipped++
			continue
		}
		if !classify.IsRelevant(story.Title, story.Text) {
			result.Skipped++
			continue
		}
		if err := c.storeStory(ctx, src, story, result); err != nil {
			c.log.Error().Err(err).Int("story_id", story.ID).Msg("store story failed")
		}
	}

	if err := c.store.TouchSourcePolled(ctx, src.SourceID); err != nil {
		c.log.Warn().Err(err).Msg("touch source failed")
	}

	c.log.Info().
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("duplicates", result.Duplicates).
		Msg("hacker news collection complete")
	return result, nil
}

// candidateIDs merges the top and new story lists, keeping first-seen order
// so front-page stories take priority within the fetch cap.
func (c *HackerNews) candidateIDs(ctx context.Context) ([]int, error) {
	var top, fresh []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &top); err != nil {
		return nil, fmt.Errorf("fetch top stories: %w", err)
	}
	if err := c.getJSON(ctx, c.baseURL+"/newstories.json", &fresh); err != nil {
		return nil, fmt.Errorf("fetch new stories: %w", err)
	}

	if len(top) > hnTopStoryCount {
		top = top[:hnTopStoryCount]
	}
	if len(fresh) > hnNewStoryCount {
		fresh = fresh[:hnNewStoryCount]
	}

	seen := make(map[int]struct{}, len(top)+len(fresh))
	merged := make([]int, 0, len(top)+len(fresh))
	for _, id := range append(top, fresh...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	if len(merged) > hnMaxStories {
		merged = merged[:hnMaxStories]
	}
	return merged, nil
}

// fetchStories pulls item details in paced concurrent batches. A story that
// fails to fetch is dropped, not fatal.
func (c *HackerNews) fetchStories(ctx context.Context, ids []int) ([]hnStory, error) {
	var stories []hnStory
	for start := 0; start < len(ids); start += hnBatchSize {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := min(start+hnBatchSize, len(ids))
		batch := ids[start:end]
		results := make([]*hnStory, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, id := range batch {
			i, id := i, id
			g.Go(func() error {
				var story hnStory
				url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
				if err := c.getJSON(gctx, url, &story); err != nil {
					c.log.Debug().Err(err).Int("story_id", id).Msg("fetch story failed")
					return nil
				}
				results[i] = &story
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, story := range results {
			if story != nil && story.ID != 0 {
				stories = append(stories, *story)
			}
		}
	}
	return stories, nil
}

func (c *HackerNews) storeStory(ctx context.Context, src *store.Source, story hnStory, result *Result) error {
	externalID := strconv.Itoa(story.ID)
	url := story.URL
	if url == "" {
		url = hnItemURLBase + externalID
	}

	entities := classify.Entities(story.Title)
	engagement := scoring.Engagement{Points: story.Score, Comments: story.Descendants}

	existing, err := c.store.FindItemByExternalID(ctx, src.SourceID, externalID)
	if err != nil {
		return err
	}
	if existing != nil {
		importance := scoring.Discussion(src.BaseWeight, engagement, existing.PublishedAt, globaltime.Now(), len(entities))
		if err := c.store.UpdateItemEngagement(ctx, existing.ItemID, intPtr(story.Score), intPtr(story.Descendants), importance); err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	contentHash := normalize.ContentHash(story.Title, url)
	canonical, err := canonicalFor(ctx, c.store, contentHash)
	if err != nil {
		return err
	}

	publishedAt := time.Unix(story.Time, 0).UTC()
	importance := scoring.Discussion(src.BaseWeight, engagement, publishedAt, globaltime.Now(), len(entities))

	_, err = c.store.InsertItem(ctx, store.NewItem{
		SourceID:        src.SourceID,
		ExternalID:      externalID,
		Kind:            db.KindDiscussion,
		Title:           story.Title,
		URL:             url,
		Author:          strPtr(story.By),
		PublishedAt:     publishedAt,
		Score:           intPtr(story.Score),
		CommentsCount:   intPtr(story.Descendants),
		CommentsURL:     strPtr(hnItemURLBase + externalID),
		ImportanceScore: importance,
		ContentHash:     contentHash,
		CanonicalItemID: canonical,
		Tags:            classify.DetectTags(story.Title),
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

func (c *HackerNews) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
