package shell

import "github.com/nosqldb/nosqldb-go"

// Option tweaks shell parameters.
type Option func(*options)

// WithClientOptions supplies the nosqldb.Option list used to build the
// shell's driver Client.
func WithClientOptions(opts ...nosqldb.Option) Option {
	return func(o *options) {
		o.clientOptions = opts
	}
}

// WithFormat selects the row-rendering format ("tabular" or "json").
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithHistoryFile sets the path liner persists command history to between
// sessions. An empty path disables history persistence.
func WithHistoryFile(path string) Option {
	return func(o *options) {
		o.historyFile = path
	}
}

type options struct {
	clientOptions []nosqldb.Option
	format        string
	historyFile   string
}

// defaultOptions returns a shell options object with sane defaults.
func defaultOptions() *options {
	return &options{
		format: formatTabular,
	}
}

const (
	formatTabular = "tabular"
	formatJSON    = "json"
)
