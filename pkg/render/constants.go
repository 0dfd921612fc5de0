package render

// Log messages.
const (
	logMsgCompiled         = "template compiled"
	logMsgCacheHit         = "compiled template cache hit"
	logMsgCacheCleared     = "compiled template cache cleared"
	logMsgCacheForgotten   = "compiled templates forgotten"
	logMsgResolveFailed    = "template adapter resolution failed"
	logMsgEngineLoadFailed = "template engine failed to load"
	logMsgCompilePanic     = "template adapter panicked during compile"
	logMsgRenderFailed     = "template render failed"
)

// Log fields.
const (
	logFieldIdentity  = "identity"
	logFieldExtension = "extension"
	logFieldAdapter   = "adapter"
	logFieldLibrary   = "library"
	logFieldEntries   = "entries"
	logFieldKind      = "kind"
)
