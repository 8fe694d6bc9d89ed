package events

const (
	AssetChangedEventName     = "asset.changed"
	DepreciationRefreshedName = "asset.depreciation.refreshed"
)

// AssetChangedEvent публикуется после коммита любой мутации актива.
type AssetChangedEvent struct {
	TenantID  uint64
	AssetID   uint64
	ActorID   uint64
	EventType string
}

func (e AssetChangedEvent) Name() string {
	return AssetChangedEventName
}

// DepreciationRefreshedEvent - итог пакетного пересчёта амортизации.
type DepreciationRefreshedEvent struct {
	TenantIDs []uint64
	Updated   int
}

func (e DepreciationRefreshedEvent) Name() string {
	return DepreciationRefreshedName
}
