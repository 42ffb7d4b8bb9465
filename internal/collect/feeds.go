package collect

// FeedSpec is one curated feed in the polling registry.
type FeedSpec struct {
	Name       string
	URL        string
	Category   string
	BaseWeight int
}

// Feed categories.
const (
	CategoryAISpecific    = "ai_specific"
	CategoryTechPublisher = "tech_publication"
	CategoryNewsletter    = "newsletter"
)

// FeedRegistry is the curated feed set, ordered by how we poll them. Vendor
// blogs outrank aggregators, newsletters sit in between.
var FeedRegistry = []FeedSpec{
	{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Category: CategoryAISpecific, BaseWeight: 9},
	{Name: "Anthropic News", URL: "https://www.anthropic.com/rss.xml", Category: CategoryAISpecific, BaseWeight: 9},
	{Name: "Google AI Blog", URL: "https://blog.google/technology/ai/rss/", Category: CategoryAISpecific, BaseWeight: 8},
	{Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml", Category: CategoryAISpecific, BaseWeight: 7},
	{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Category: CategoryTechPublisher, BaseWeight: 6},
	{Name: "The Verge AI", URL: "https://www.theverge.com/rss/ai-artificial-intelligence/index.xml", Category: CategoryTechPublisher, BaseWeight: 6},
	{Name: "MIT Tech Review", URL: "https://www.technologyreview.com/feed/", Category: CategoryTechPublisher, BaseWeight: 8},
	{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab", Category: CategoryTechPublisher, BaseWeight: 6},
	{Name: "The Batch", URL: "https://www.deeplearning.ai/the-batch/feed/", Category: CategoryNewsletter, BaseWeight: 7},
	{Name: "Simon Willison", URL: "https://simonwillison.net/atom/everything/", Category: CategoryNewsletter, BaseWeight: 7},
}
