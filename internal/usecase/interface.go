package usecase

import (
	"context"

	"github.com/Akshit7103/Card-Reco-Tool-V2/internal/domain"
)

// TableRepository defines the interface for fetching parsed category tables.
// The usecase layer depends on this interface, not on a concrete
// implementation; file ingestion lives behind it.
//
//go:generate mockgen -destination=mocks/mock_repository.go -source=interface.go TableRepository
type TableRepository interface {
	GetTables(ctx context.Context, paths map[domain.Category]string) ([]domain.Table, error)
}
