// Package classify decides whether collected items are AI-related and derives
// topic tags and entity mentions from their titles. All keyword patterns are
// compiled once at package initialization, never per call.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	keywordPatterns []*regexp.Regexp

	tagPatterns []compiledTagCategory
)

type compiledTagCategory struct {
	tag      string
	patterns []*regexp.Regexp
}

func init() {
	keywordPatterns = make([]*regexp.Regexp, 0, len(AIKeywords))
	for _, kw := range AIKeywords {
		keywordPatterns = append(keywordPatterns, wholeWordPattern(kw))
	}

	tagPatterns = make([]compiledTagCategory, 0, len(tagCategories))
	for _, category := range tagCategories {
		compiled := compiledTagCategory{tag: category.Tag}
		for _, kw := range category.Keywords {
			compiled.patterns = append(compiled.patterns, wholeWordPattern(kw))
		}
		tagPatterns = append(tagPatterns, compiled)
	}
}

// wholeWordPattern anchors the keyword on word boundaries so "ai" cannot
// match inside "rain".
func wholeWordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b`, regexp.QuoteMeta(keyword)))
}

// IsRelevant reports whether any registry keyword whole-word-matches the
// combined title and body.
func IsRelevant(title, body string) bool {
	content := title + " " + body
	for _, pattern := range keywordPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

// DetectTags maps a title onto the tag categories it activates, in registry
// declaration order. A title matching no category falls back to ["AI"] so
// items are never untagged.
func DetectTags(title string) []string {
	titleLower := strings.ToLower(title)

	var tags []string
	for _, category := range tagPatterns {
		for _, pattern := range category.patterns {
			if pattern.MatchString(titleLower) {
				tags = append(tags, category.tag)
				break
			}
		}
	}

	if len(tags) == 0 {
		return []string{"AI"}
	}
	return tags
}

// Entities returns the major entities mentioned in the title. Substring
// matching is intentional here: "openai's" still counts as a mention.
func Entities(title string) []string {
	titleLower := strings.ToLower(title)

	var entities []string
	for _, entity := range MajorEntities {
		if strings.Contains(titleLower, entity) {
			entities = append(entities, entity)
		}
	}
	return entities
}
