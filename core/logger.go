package core

// Logger is any leveled logger. args may carry an error, structured data or
// a user.User; implementations that report to an error tracker may use the
// User to attribute the event.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
