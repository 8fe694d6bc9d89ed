package contextkeys

type contextKey string

const (
	UserIDKey   contextKey = "UserID"
	TenantIDKey contextKey = "TenantID"
)
