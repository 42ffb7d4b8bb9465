package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"github.com/rs/zerolog"

	"pulse.news/pulse/internal/db"
	"pulse.news/pulse/internal/globaltime"
	"pulse.news/pulse/internal/normalize"
	"pulse.news/pulse/internal/scoring"
	"pulse.news/pulse/internal/store"
)

const (
	ghBaseWeight    = 8
	ghPollMinutes   = 60
	ghRepoPacing    = 100 * time.Millisecond
	ghTopicPacing   = 500 * time.Millisecond
	ghSearchTopics  = 2
	ghReposPerTopic = 3
	ghMinStars      = 50
	ghSourceName    = "GitHub"
)

// TrackedRepos are the repositories watched for new releases.
var TrackedRepos = []string{
	"openai/openai-python",
	"anthropics/anthropic-sdk-python",
	"huggingface/transformers",
	"langchain-ai/langchain",
	"run-llama/llama_index",
	"vllm-project/vllm",
	"ollama/ollama",
	"ggerganov/llama.cpp",
	"microsoft/autogen",
	"crewAIInc/crewAI",
	"lm-sys/FastChat",
	"guidance-ai/guidance",
}

// AITopics are searched for newly trending repositories. Only the first
// ghSearchTopics are queried per run to stay inside search rate limits.
var AITopics = []string{"llm", "machine-learning", "langchain", "transformers"}

// GitHub watches tracked repos for releases and topic searches for newly
// trending repositories.
type GitHub struct {
	store  Store
	client *github.Client
	log    zerolog.Logger
}

func NewGitHub(st Store, client *github.Client, log zerolog.Logger) *GitHub {
	if client == nil {
		client = github.NewClient(nil)
	}
	return &GitHub{
		store:  st,
		client: client,
		log:    log.With().Str("collector", db.SourceGitHub).Logger(),
	}
}

// NewGitHubWithToken builds a collector on the default API endpoint,
// authenticated when token is non-empty.
func NewGitHubWithToken(st Store, httpClient *http.Client, token string, log zerolog.Logger) *GitHub {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return NewGitHub(st, client, log)
}

func (c *GitHub) Name() string { return db.SourceGitHub }

func (c *GitHub) Collect(ctx context.Context) (*Result, error) {
	src, err := c.store.GetOrCreateSource(ctx, store.NewSource{
		Name:                ghSourceName,
		Type:                db.SourceGitHub,
		PollIntervalMinutes: ghPollMinutes,
		BaseWeight:          ghBaseWeight,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Source: db.SourceGitHub}

	for i, repo := range TrackedRepos {
		if i > 0 {
			if err := pace(ctx, ghRepoPacing); err != nil {
				return result, err
			}
		}
		if err := c.collectRelease(ctx, src, repo, result); err != nil {
			c.log.Error().Err(err).Str("repo", repo).Msg("release collection failed")
		}
	}

	for i, topic := range AITopics[:min(ghSearchTopics, len(AITopics))] {
		if i > 0 {
			if err := pace(ctx, ghTopicPacing); err != nil {
				return result, err
			}
		}
		if err := c.collectTrending(ctx, src, topic, result); err != nil {
			c.log.Error().Err(err).Str("topic", topic).Msg("trending search failed")
		}
	}

	if err := c.store.TouchSourcePolled(ctx, src.SourceID); err != nil {
		c.log.Warn().Err(err).Msg("touch source failed")
	}

	c.log.Info().
		Int("fetched", result.Fetched).
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Msg("github collection complete")
	return result, nil
}

func (c *GitHub) collectRelease(ctx context.Context, src *store.Source, repo string, result *Result) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return fmt.Errorf("malformed repo %q", repo)
	}

	release, resp, err := c.client.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		// Repos without a published release are not an error.
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	result.Fetched++

	tag := release.GetTagName()
	externalID := fmt.Sprintf("release:%s:%s", repo, tag)

	existing, err := c.store.FindItemByExternalID(ctx, src.SourceID, externalID)
	if err != nil {
		return err
	}
	if existing != nil {
		result.Skipped++
		return nil
	}

	title := release.GetName()
	if title == "" {
		title = tag
	}

	publishedAt := globaltime.Now()
	if ts := release.GetPublishedAt(); !ts.IsZero() {
		publishedAt = ts.Time.UTC()
	}

	_, err = c.store.InsertItem(ctx, store.NewItem{
		SourceID:        src.SourceID,
		ExternalID:      externalID,
		Kind:            db.KindRepo,
		Title:           repo + " " + title,
		URL:             release.GetHTMLURL(),
		Author:          strPtr(owner),
		PublishedAt:     publishedAt,
		ImportanceScore: scoring.ReleaseScore,
		ContentHash:     normalize.HashString(repo + ":" + tag),
		Tags:            []string{"Release", owner},
	})
	if err != nil {
		return err
	}
	result.Inserted++
	return nil
}

func (c *GitHub) collectTrending(ctx context.Context, src *store.Source, topic string, result *Result) error {
	weekAgo := globaltime.Now().AddDate(0, 0, -7).Format("2006-01-02")
	query := fmt.Sprintf("topic:%s created:>%s stars:>%d", topic, weekAgo, ghMinStars)

	found, _, err := c.client.Search.Repositories(ctx, query, &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 5},
	})
	if err != nil {
		return err
	}

	repos := found.Repositories
	if len(repos) > ghReposPerTopic {
		repos = repos[:ghReposPerTopic]
	}

	for _, repo := range repos {
		result.Fetched++
		if err := c.storeTrendingRepo(ctx, src, repo, result); err != nil {
			c.log.Error().Err(err).Str("repo", repo.GetFullName()).Msg("store trending repo failed")
		}
	}
	return nil
}

func (c *GitHub) storeTrendingRepo(ctx context.Context, src *store.Source, repo *github.Repository, result *Result) error {
	fullName := repo.GetFullName()
	externalID := "trending:" + fullName
	stars := repo.GetStargazersCount()

	existing, err := c.store.FindItemByExternalID(ctx, src.SourceID, externalID)
	if err != nil {
		return err
	}
	if existing != nil {
		stored := 0
		if existing.Score != nil {
			stored = *existing.Score
		}
		if !scoring.ShouldRescoreTrending(stored, stars) {
			result.Skipped++
			return nil
		}
		err := c.store.UpdateItemEngagement(ctx, existing.ItemID,
			intPtr(stars), existing.CommentsCount, scoring.TrendingRepo(stars))
		if err != nil {
			return err
		}
		result.Updated++
		return nil
	}

	description := repo.GetDescription()
	if description == "" {
		description = "New trending repository"
	}

	publishedAt := globaltime.Now()
	if ts := repo.GetCreatedAt(); !ts.IsZero() {
		publishedAt = ts.Time.UTC()
	}

	owner, _, _ := strings.Cut(fullName, "/")
	tags := make([]string, 0, 3)
	for _, t := range repo.Topics {
		if len(tags) == 3 {
			break
		}
		tags = append(tags, capitalize(t))
	}

	_, err = c.store.InsertItem(ctx, store.NewItem{
		SourceID:        src.SourceID,
		ExternalID:      externalID,
		Kind:            db.KindRepo,
		Title:           fullName + ": " + description,
		URL:             repo.GetHTMLURL(),
		Author:          strPtr(owner),
		PublishedAt:     publishedAt,
		Score:           intPtr(stars),
		CommentsCount:   intPtr(repo.GetForksCount()),
		CommentsURL:     strPtr(repo.GetHTMLURL() + "/network/members"),
		ImportanceScore: scoring.TrendingRepo(stars),
		ContentHash:     normalize.HashString(fullName),
		Tags:            tags,
	})
	if err != nil {
		return err
	}
	result.Inserted++
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pace(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
