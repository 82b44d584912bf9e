package compiler

import (
	"strings"
	"sync"
)

// PluginResolver maps a delivery method to the key of the plugin that
// performs it. Capability resolution lives outside the compiler; callers
// supply an implementation.
type PluginResolver interface {
	ResolveDeliveryMethodToPlugin(method string) string
}

// SourceResolver is implemented by resolvers that also know which plugin
// reads a data source type. Without it the source type is used as the key.
type SourceResolver interface {
	ResolveSourceTypeToPlugin(sourceType string) string
}

var defaultDeliveryPlugins = map[string]string{
	"email":   "gmail",
	"slack":   "slack",
	"teams":   "microsoft-teams",
	"sms":     "twilio",
	"webhook": "http",
	"sheets":  "google-sheets",
	"file":    "google-drive",
}

var defaultSourcePlugins = map[string]string{
	"spreadsheet": "google-sheets",
	"table":       "airtable",
	"database":    "postgres",
	"crm":         "hubspot",
	"email":       "gmail",
	"calendar":    "google-calendar",
	"file":        "google-drive",
	"storage":     "google-drive",
	"api":         "http",
	"webhook":     "http",
}

// StaticPluginResolver is a registry of method and source type bindings.
// It is safe for concurrent use.
type StaticPluginResolver struct {
	mu       sync.RWMutex
	delivery map[string]string
	sources  map[string]string
}

// NewStaticPluginResolver creates a registry seeded with the default bindings.
func NewStaticPluginResolver() *StaticPluginResolver {
	r := &StaticPluginResolver{
		delivery: make(map[string]string, len(defaultDeliveryPlugins)),
		sources:  make(map[string]string, len(defaultSourcePlugins)),
	}
	for k, v := range defaultDeliveryPlugins {
		r.delivery[k] = v
	}
	for k, v := range defaultSourcePlugins {
		r.sources[k] = v
	}
	return r
}

// RegisterDelivery binds a delivery method to a plugin key.
func (r *StaticPluginResolver) RegisterDelivery(method, plugin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivery[normalizeKey(method)] = plugin
}

// RegisterSource binds a data source type to a plugin key.
func (r *StaticPluginResolver) RegisterSource(sourceType, plugin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[normalizeKey(sourceType)] = plugin
}

// ResolveDeliveryMethodToPlugin returns the bound plugin, or the method
// itself when nothing is registered.
func (r *StaticPluginResolver) ResolveDeliveryMethodToPlugin(method string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.delivery[normalizeKey(method)]; ok {
		return p
	}
	return method
}

// ResolveSourceTypeToPlugin returns the bound plugin, or the type itself.
func (r *StaticPluginResolver) ResolveSourceTypeToPlugin(sourceType string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.sources[normalizeKey(sourceType)]; ok {
		return p
	}
	return sourceType
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
