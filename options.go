package swapbuf

// Option configures a Buffer created with New.
type Option func(*options)

type options struct {
	backoff Backoff
}

// WithBackoff sets how the writer waits for readers to release the previously
// published copy. The default is Yield.
func WithBackoff(backoff Backoff) Option {
	return func(o *options) { o.backoff = backoff }
}
