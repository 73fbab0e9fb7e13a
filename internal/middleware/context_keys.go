package middleware

// contextKey is the private key type for values this package stores in
// request contexts. Using a custom type prevents collisions.
type contextKey string

const loggerCtxKey = contextKey("logger")
