/*
resource.go - Resource type registration and lookup

PURPOSE:
  Lets the leave domain register its category types so storage can turn
  the strings it persisted back into concrete ResourceType values without
  the generic package importing the domain.

HOW IT WORKS:
  1. timeoff.Category implements ResourceType
  2. timeoff registers every category in init()
  3. Stores call GetOrCreateResource when scanning audit rows

SEE ALSO:
  - types.go: ResourceType interface definition
  - timeoff/types.go: Category implementation
*/
package generic

import "sync"

// =============================================================================
// RESOURCE REGISTRY
// =============================================================================

var (
	resourceRegistry = make(map[string]ResourceType)
	registryMu       sync.RWMutex
)

// RegisterResource adds a resource type to the global registry.
func RegisterResource(r ResourceType) {
	registryMu.Lock()
	defer registryMu.Unlock()
	resourceRegistry[r.ResourceID()] = r
}

// LookupResource finds a registered resource type by ID.
// Returns nil if not found.
func LookupResource(id string) ResourceType {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return resourceRegistry[id]
}

// =============================================================================
// STRING RESOURCE - Fallback for unregistered IDs
// =============================================================================

// StringResource is used when a persisted ID has no registered type.
type StringResource struct {
	ID     string
	Domain string
}

func (r StringResource) ResourceID() string     { return r.ID }
func (r StringResource) ResourceDomain() string { return r.Domain }

// GetOrCreateResource looks up a resource type, or creates a StringResource fallback.
func GetOrCreateResource(id string) ResourceType {
	if r := LookupResource(id); r != nil {
		return r
	}
	return StringResource{ID: id, Domain: "unknown"}
}
