package mocks

//go:generate go run go.uber.org/mock/mockgen -destination=mock_catalog.go -package=mocks github.com/reelroom/reelroom/internal/pool Catalog
