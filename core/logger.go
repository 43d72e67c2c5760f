package core

// Logger is any service that can record application events and errors.
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
	Enable(enabled bool)
}
