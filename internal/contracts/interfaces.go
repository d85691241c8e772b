package contracts

import "context"

// Loader produces the raw tables for one pipeline run
// ⭐ SSOT: 원천 데이터 로딩 인터페이스 (csv, postgres, http)
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
	Name() string
}
