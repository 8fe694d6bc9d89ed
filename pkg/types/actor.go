package types

// Actor - кто выполняет операцию и в рамках какого тенанта.
// Передаётся в сервисы явно, а не достаётся из контекста.
type Actor struct {
	UserID   uint64
	TenantID uint64
}
