package redis

import (
	"fmt"
	"strings"
)

// keyNamespace keeps vidtube keys apart from other tenants of a shared Redis
const keyNamespace = "vidtube"

// KeyBuilder builds keys as vidtube:{env}:{key}
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder maps an environment name to its key prefix. Unknown names
// share the production prefix.
func NewKeyBuilder(environment string) *KeyBuilder {
	env := "prod"
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "development", "dev", "local":
		env = "dev"
	case "staging":
		env = "staging"
	case "test":
		env = "test"
	}
	return &KeyBuilder{prefix: keyNamespace + ":" + env}
}

// BuildKey prepends the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return kb.prefix + ":" + key
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyVideoListPage is the cache key of one listing page within a generation
func (kb *KeyBuilder) KeyVideoListPage(generation int64, page int) string {
	return kb.BuildKey(fmt.Sprintf(KeyVideoListPage, generation, page))
}

// KeyVideoListGeneration counts listing invalidations. It sits outside the
// page pattern so a sweep never resets it.
func (kb *KeyBuilder) KeyVideoListGeneration() string {
	return kb.BuildKey(KeyVideoListGeneration)
}

// KeyVideoListPattern matches every cached listing page
func (kb *KeyBuilder) KeyVideoListPattern() string {
	return kb.BuildKey(KeyVideoListAll)
}

// KeyRateLimit is the fixed window counter of a client within scope
func (kb *KeyBuilder) KeyRateLimit(scope, ipHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimit, scope, ipHash))
}
