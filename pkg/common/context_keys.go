package common

type contextKey string

const (
	TokenContextKey contextKey = "token"
)
