package singleton

// Tag is a type-safe key for manager metadata
type Tag[T any] struct {
	key string
}

var nameTag = NewTag[string]("singleton.name")

// NameTag returns the tag holding a manager's name
func NameTag() Tag[string] {
	return nameTag
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a manager
func (t Tag[T]) Get(m AnyManager) (T, bool) {
	val, ok := m.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// MustGet retrieves the tag value or panics if not found
func (t Tag[T]) MustGet(m AnyManager) T {
	val, ok := t.Get(m)
	if !ok {
		panic("tag " + t.key + " not found")
	}
	return val
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(m AnyManager, defaultVal T) T {
	if val, ok := t.Get(m); ok {
		return val
	}
	return defaultVal
}
