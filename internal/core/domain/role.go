package domain

import (
	"context"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleMinter    Role = "MINTER"
	RoleArtist    Role = "ARTIST"
	RoleBridge    Role = "BRIDGE"
	RoleValidator Role = "VALIDATOR"
)

var roles = []Role{RoleAdmin, RoleMinter, RoleArtist, RoleBridge, RoleValidator}

func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Operation string

const (
	OpMint                      Operation = "mint"
	OpTransferWithRoyaltyPayout Operation = "transferWithRoyaltyPayout"
	OpCreateNFT                 Operation = "createNFT"
	OpLockForBridge             Operation = "lockForBridge"
	OpUnlockFromBridge          Operation = "unlockFromBridge"
	OpMintBridgedCopy           Operation = "mintBridgedCopy"
	OpGrantRole                 Operation = "grantRole"
	OpRevokeRole                Operation = "revokeRole"
	OpSetAllowedChain           Operation = "setAllowedChain"
	OpMintCurrency              Operation = "mintCurrency"
	OpAttestSwap                Operation = "attestSwap"
)

// Policy maps every gated operation to the role its caller must hold.
var Policy = map[Operation]Role{
	OpMint:                      RoleMinter,
	OpTransferWithRoyaltyPayout: RoleMinter,
	OpCreateNFT:                 RoleArtist,
	OpLockForBridge:             RoleBridge,
	OpUnlockFromBridge:          RoleBridge,
	OpMintBridgedCopy:           RoleBridge,
	OpGrantRole:                 RoleAdmin,
	OpRevokeRole:                RoleAdmin,
	OpSetAllowedChain:           RoleAdmin,
	OpMintCurrency:              RoleAdmin,
	OpAttestSwap:                RoleValidator,
}

type RoleGrant struct {
	Account   string
	Role      Role
	GrantedAt int64
}

type RoleRepository interface {
	GrantRole(ctx context.Context, grant RoleGrant) error
	RevokeRole(ctx context.Context, account string, role Role) error
	HasRole(ctx context.Context, account string, role Role) (bool, error)
	GetRoles(ctx context.Context, account string) ([]Role, error)
	Close()
}
