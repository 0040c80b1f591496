package extraction

import "fmt"

// Supported model identifiers. The set is closed: callers validate user
// input against it before a submission ever reaches the client.
const (
	ModelCommandR = "cohere/command-r-08-2024"
	ModelMixtral  = "mistralai/mixtral-8x7b-instruct"

	// DefaultModel is the identifier a fresh session starts with.
	DefaultModel = ModelCommandR
)

// Provider identifiers derived from the model choice.
const (
	ProviderCohere    = "Cohere"
	ProviderFireworks = "Fireworks"
)

// Models lists every supported model identifier.
var Models = []string{ModelCommandR, ModelMixtral}

// ValidModel reports whether model is a supported identifier.
func ValidModel(model string) bool {
	for _, m := range Models {
		if m == model {
			return true
		}
	}
	return false
}

// ProviderFor returns the provider identifier implied by a model choice.
// The mapping is total over the supported set; an unrecognized identifier
// is a contract violation by the caller and panics.
func ProviderFor(model string) string {
	switch model {
	case ModelMixtral:
		return ProviderFireworks
	case ModelCommandR:
		return ProviderCohere
	}
	panic(fmt.Sprintf("extraction: unrecognized model identifier %q", model))
}
