package constants

type ContextKey string

const (
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "request-id"
	ParamsKey    ContextKey = "params"
)
