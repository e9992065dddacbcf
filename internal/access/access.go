// Package access decides which content a subscription tier may read.
package access

import "github.com/dukerupert/portfolio/internal/model"

// inclusion maps a requested tier to every tier whose content it may read.
var inclusion = map[model.Tier][]model.Tier{
	model.TierBasic:        {model.TierBasic},
	model.TierProfessional: {model.TierBasic, model.TierProfessional},
	model.TierEnterprise:   {model.TierBasic, model.TierProfessional, model.TierEnterprise},
}

// Resolve returns the tiers readable at the requested tier token.
// An unrecognized token resolves to basic only, never to an error.
func Resolve(token string) []model.Tier {
	if tiers, ok := inclusion[model.Tier(token)]; ok {
		return tiers
	}
	return inclusion[model.TierBasic]
}

// Allows reports whether a reader at token may read content requiring min.
func Allows(token string, min model.Tier) bool {
	for _, t := range Resolve(token) {
		if t == min {
			return true
		}
	}
	return false
}

// Filter returns the items readable at token, preserving their order.
func Filter(items []model.ContentItem, token string) []model.ContentItem {
	out := make([]model.ContentItem, 0, len(items))
	for _, item := range items {
		if Allows(token, item.MinTier) {
			out = append(out, item)
		}
	}
	return out
}
