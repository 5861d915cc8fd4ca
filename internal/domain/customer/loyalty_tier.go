package customer

import (
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// LoyaltyTier is a spend-derived customer classification
type LoyaltyTier string

const (
	TierStandard LoyaltyTier = "standard"
	TierSilver   LoyaltyTier = "silver"
	TierGold     LoyaltyTier = "gold"
	TierPlatinum LoyaltyTier = "platinum"
	TierVIP      LoyaltyTier = "vip"
)

// Tier spend thresholds in the default currency. Thresholds are inclusive
// and strictly increasing, so TierFor is monotonic in total spend.
var (
	SilverThreshold   = valueobject.NewMoneyVNDFromInt(5000000)
	GoldThreshold     = valueobject.NewMoneyVNDFromInt(20000000)
	PlatinumThreshold = valueobject.NewMoneyVNDFromInt(50000000)
	VIPThreshold      = valueobject.NewMoneyVNDFromInt(100000000)
)

// TierFor derives the loyalty tier for a lifetime spend amount
func TierFor(totalPurchased valueobject.Money) LoyaltyTier {
	switch {
	case totalPurchased.GreaterThanOrEqual(VIPThreshold):
		return TierVIP
	case totalPurchased.GreaterThanOrEqual(PlatinumThreshold):
		return TierPlatinum
	case totalPurchased.GreaterThanOrEqual(GoldThreshold):
		return TierGold
	case totalPurchased.GreaterThanOrEqual(SilverThreshold):
		return TierSilver
	default:
		return TierStandard
	}
}

// IsValid reports whether the tier is one of the known values
func (t LoyaltyTier) IsValid() bool {
	switch t {
	case TierStandard, TierSilver, TierGold, TierPlatinum, TierVIP:
		return true
	}
	return false
}
