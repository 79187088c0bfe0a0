package openai

// APIType identifies one of the vendor's API surfaces.
type APIType string

const (
	APITypeCompletions     APIType = "completions"
	APITypeChatCompletions APIType = "chat_completions"
	APITypeResponses       APIType = "responses"
	APITypeEmbeddings      APIType = "embeddings"
	APITypeModerations     APIType = "moderations"
)

// ModelInfo describes the capabilities of a known model.
type ModelInfo struct {
	Key                 string
	APITypes            []APIType
	SupportsVision      bool
	EmbeddingDimensions int
	Expensive           bool
}

// Supports reports whether the model exposes the given API surface.
func (m ModelInfo) Supports(api APIType) bool {
	for _, t := range m.APITypes {
		if t == api {
			return true
		}
	}
	return false
}

// catalog lists the models this library knows about. Unknown model names are
// passed through unchecked so OpenAI-compatible gateways keep working.
var catalog = map[string]ModelInfo{
	"gpt-4o": {
		Key:            "gpt-4o",
		APITypes:       []APIType{APITypeChatCompletions, APITypeResponses},
		SupportsVision: true,
		Expensive:      true,
	},
	"gpt-4o-mini": {
		Key:            "gpt-4o-mini",
		APITypes:       []APIType{APITypeChatCompletions, APITypeResponses},
		SupportsVision: true,
	},
	"gpt-4": {
		Key:       "gpt-4",
		APITypes:  []APIType{APITypeChatCompletions},
		Expensive: true,
	},
	"gpt-3.5-turbo": {
		Key:      "gpt-3.5-turbo",
		APITypes: []APIType{APITypeChatCompletions},
	},
	"gpt-3.5-turbo-16k": {
		Key:       "gpt-3.5-turbo-16k",
		APITypes:  []APIType{APITypeChatCompletions},
		Expensive: true,
	},
	"text-embedding-ada-002": {
		Key:                 "text-embedding-ada-002",
		APITypes:            []APIType{APITypeEmbeddings},
		EmbeddingDimensions: 1536,
	},
	"text-embedding-3-small": {
		Key:                 "text-embedding-3-small",
		APITypes:            []APIType{APITypeEmbeddings},
		EmbeddingDimensions: 1536,
	},
	"text-embedding-3-large": {
		Key:                 "text-embedding-3-large",
		APITypes:            []APIType{APITypeEmbeddings},
		EmbeddingDimensions: 3072,
	},
}

// Lookup returns the catalog entry for name, if known.
func Lookup(name string) (ModelInfo, bool) {
	info, ok := catalog[name]
	return info, ok
}
