package ownruntime

// Releaser is optionally implemented by resource payloads that need cleanup
// beyond dropping the buffer. The runtime invokes Release exactly once, when
// the payload's resource is freed.
type Releaser interface {
	Release()
}
