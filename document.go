package palimpsest

// UpdateHandler observes one fragment emitted by a document model. The origin
// tag identifies who caused the change; a session tags its own replay with the
// session origin so the handler can discriminate self-inflicted updates.
type UpdateHandler func(update []byte, origin string)

// Document is the contract with the external merge engine. Implementations
// must guarantee that applying the same fragment twice is a no-op and that
// fragments applied in any order converge to the same state; full-state
// encodings must themselves be applicable as fragments.
//
// palimpsest treats all fragment and state bytes as opaque.
type Document interface {
	// ApplyUpdate merges one fragment into the document. The origin tag is
	// passed through to any subscribed update handlers.
	ApplyUpdate(update []byte, origin string) error

	// EncodeState returns a full-state encoding from which the complete
	// current state can be reconstructed with no other fragments.
	EncodeState() ([]byte, error)

	// Subscribe registers fn to observe every subsequent change. The returned
	// cancel func detaches it; cancel must be safe to call more than once.
	Subscribe(fn UpdateHandler) (cancel func())
}

// DestroyObserver is optionally implemented by document models that announce
// their own teardown. A session subscribes when available and destroys itself
// on notification.
type DestroyObserver interface {
	SubscribeDestroy(fn func()) (cancel func())
}
