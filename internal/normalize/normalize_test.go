package normalize

import (
	"strings"
	"testing"
)

func TestURLStripsTrackingParams(t *testing.T) {
	t.Parallel()

	got := URL("https://example.com/post?utm_source=x&utm_medium=y&id=42")
	if strings.Contains(got, "utm_") {
		t.Fatalf("tracking params survived normalization: %q", got)
	}
	if !strings.Contains(got, "id=42") {
		t.Fatalf("non-tracking param was dropped: %q", got)
	}
}

func TestURLLowercasesAndStripsTrailingSlash(t *testing.T) {
	t.Parallel()

	if got := URL("https://Example.COM/Path/"); got != "https://example.com/path" {
		t.Fatalf("unexpected normalized URL: %q", got)
	}
}

func TestURLNeverFailsOnGarbage(t *testing.T) {
	t.Parallel()

	if got := URL("http://[BROKEN"); got != "http://[broken" {
		t.Fatalf("expected lower-cased raw fallback, got %q", got)
	}
}

func TestContentHashDeterministic(t *testing.T) {
	t.Parallel()

	first := ContentHash("Some AI Headline", "https://example.com/a")
	second := ContentHash("Some AI Headline", "https://example.com/a")
	if first != second {
		t.Fatalf("hash not stable: %q vs %q", first, second)
	}
}

func TestContentHashIgnoresTrackingParams(t *testing.T) {
	t.Parallel()

	withTracking := ContentHash("X", "http://a.com?utm_source=x")
	without := ContentHash("X", "http://a.com")
	if withTracking != without {
		t.Fatalf("tracking params changed the hash: %q vs %q", withTracking, without)
	}
}

func TestContentHashIgnoresTitlePunctuation(t *testing.T) {
	t.Parallel()

	plain := ContentHash("openai ships gpt5", "https://a.com/x")
	punctuated := ContentHash("OpenAI ships GPT-5!", "https://a.com/x")
	if plain != punctuated {
		t.Fatalf("punctuation changed the hash: %q vs %q", plain, punctuated)
	}
}

func TestContentHashDiffersForDifferentInput(t *testing.T) {
	t.Parallel()

	a := ContentHash("story one", "https://a.com/1")
	b := ContentHash("story two", "https://a.com/2")
	if a == b {
		t.Fatalf("materially different inputs collided: %q", a)
	}
}

func TestFeedExternalIDStable(t *testing.T) {
	t.Parallel()

	a := FeedExternalID("https://blog.example.com/post-1")
	b := FeedExternalID("https://blog.example.com/post-1")
	if a != b {
		t.Fatalf("feed external ID not stable: %q vs %q", a, b)
	}
	if a == FeedExternalID("https://blog.example.com/post-2") {
		t.Fatalf("distinct URLs mapped to the same external ID")
	}
}
