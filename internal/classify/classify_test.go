package classify

import (
	"reflect"
	"testing"
)

func TestIsRelevantWholeWordOnly(t *testing.T) {
	t.Parallel()

	if IsRelevant("brain training for runners", "") {
		t.Fatalf("'ai' inside 'brain'/'training' must not match")
	}
	if !IsRelevant("AI training", "") {
		t.Fatalf("standalone 'AI' must match")
	}
}

func TestIsRelevantCaseInsensitive(t *testing.T) {
	t.Parallel()

	if !IsRelevant("OPENAI announces a thing", "") {
		t.Fatalf("keyword matching must ignore case")
	}
}

func TestIsRelevantSearchesBody(t *testing.T) {
	t.Parallel()

	if !IsRelevant("a very plain headline", "we fine-tuned a large language model") {
		t.Fatalf("keywords in the body must count")
	}
	if IsRelevant("a very plain headline", "nothing to see here") {
		t.Fatalf("irrelevant title+body must not match")
	}
}

func TestDetectTagsRegistryOrder(t *testing.T) {
	t.Parallel()

	got := DetectTags("New GPT-5 model released by OpenAI")
	want := []string{"LLM", "OpenAI"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tags: got %v want %v", got, want)
	}
}

func TestDetectTagsFallback(t *testing.T) {
	t.Parallel()

	got := DetectTags("completely unrelated weather report")
	if !reflect.DeepEqual(got, []string{"AI"}) {
		t.Fatalf("expected fallback [AI], got %v", got)
	}

	if len(DetectTags("")) == 0 {
		t.Fatalf("DetectTags must never return an empty list")
	}
}

func TestDetectTagsNoDuplicates(t *testing.T) {
	t.Parallel()

	got := DetectTags("gpt and chatgpt and more gpt")
	seen := map[string]bool{}
	for _, tag := range got {
		if seen[tag] {
			t.Fatalf("duplicate tag %q in %v", tag, got)
		}
		seen[tag] = true
	}
}

func TestEntitiesSubstringMatch(t *testing.T) {
	t.Parallel()

	got := Entities("OpenAI's Sora vs Google DeepMind")
	want := []string{"openai", "google", "deepmind"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected entities: got %v want %v", got, want)
	}

	if Entities("no labs mentioned") != nil {
		t.Fatalf("expected no entities")
	}
}
