package classify

// AIKeywords gates collection: an item is kept only when at least one of
// these matches as a whole word in its title or body. Extend with care,
// short keywords widen the funnel a lot.
var AIKeywords = []string{
	// General AI terms
	"ai",
	"artificial intelligence",
	"machine learning",
	"ml",
	"deep learning",
	"neural",

	// LLMs
	"llm",
	"large language model",
	"language model",
	"gpt",
	"gpt-4",
	"gpt-5",
	"chatgpt",
	"claude",
	"anthropic",
	"gemini",
	"mistral",
	"mixtral",
	"llama",
	"phi",
	"qwen",
	"deepseek",

	// Companies and research labs
	"openai",
	"deepmind",
	"hugging face",
	"huggingface",

	// Techniques
	"transformer",
	"attention mechanism",
	"fine-tuning",
	"finetuning",
	"rlhf",
	"reinforcement learning",
	"prompt engineering",
	"prompting",
	"rag",
	"retrieval augmented",
	"embedding",
	"embeddings",
	"vector",
	"diffusion model",

	// Image and video models
	"stable diffusion",
	"midjourney",
	"dall-e",
	"dalle",
	"sora",
	"runway",
	"pika",
	"text-to-image",
	"text-to-video",
	"image generation",

	// AI coding
	"copilot",
	"cursor",
	"code generation",
	"ai coding",
	"codeium",
	"tabnine",
	"replit",

	// Agents
	"ai agent",
	"autonomous agent",
	"agentic",
	"autogen",
	"crewai",
	"langchain",
	"llamaindex",

	// Infrastructure
	"pytorch",
	"tensorflow",
	"jax",
	"vllm",
	"ollama",
	"mlx",

	// Safety and alignment
	"ai safety",
	"alignment",
	"interpretability",
	"agi",
	"artificial general intelligence",

	// NLP
	"nlp",
	"computer vision",
	"generative",
}

// MajorEntities are matched as plain substrings for the entity-density
// scoring signal; they never influence deduplication.
var MajorEntities = []string{
	"openai",
	"anthropic",
	"google",
	"deepmind",
	"meta",
	"microsoft",
	"nvidia",
	"amazon",
	"apple",
	"mistral",
	"huggingface",
	"stability",
	"cohere",
	"xai",
}

// tagCategory pairs a display tag with the keywords that activate it.
// Declaration order here is the order tags come out of DetectTags.
type tagCategory struct {
	Tag      string
	Keywords []string
}

var tagCategories = []tagCategory{
	{Tag: "LLM", Keywords: []string{"llm", "gpt", "claude", "gemini", "mistral", "llama", "chatgpt"}},
	{Tag: "Machine Learning", Keywords: []string{"machine learning", "ml", "deep learning", "neural"}},
	{Tag: "OpenAI", Keywords: []string{"openai", "gpt", "chatgpt", "sora"}},
	{Tag: "Anthropic", Keywords: []string{"anthropic", "claude"}},
	{Tag: "Google", Keywords: []string{"google", "gemini", "deepmind"}},
	{Tag: "Computer Vision", Keywords: []string{"computer vision", "diffusion", "stable diffusion", "midjourney", "image"}},
	{Tag: "NLP", Keywords: []string{"nlp", "language model", "transformer"}},
	{Tag: "Research", Keywords: []string{"paper", "research", "study"}},
}
