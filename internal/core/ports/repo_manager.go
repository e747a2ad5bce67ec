package ports

import "github.com/arkade-os/nftd/internal/core/domain"

type RepoManager interface {
	Events() domain.EventRepository
	Assets() domain.AssetRepository
	Items() domain.ItemRepository
	Auctions() domain.AuctionRepository
	Swaps() domain.SwapRepository
	Chains() domain.ChainRepository
	Roles() domain.RoleRepository
	Close()
}
