package cache

import (
	"fmt"
	"strings"
)

// Slug normalizes a character handle for use in a cache key:
// lowercase, spaces replaced with underscores.
//
// Postcondition: Slug("Street Sam") == "street_sam".
func Slug(handle string) string {
	return strings.ToLower(strings.ReplaceAll(handle, " ", "_"))
}

// LastRollKey returns the key holding a character's most recent eligible roll.
func LastRollKey(handle string) string {
	return fmt.Sprintf("last-roll.%s", Slug(handle))
}

// CombatStateKey returns the key holding a campaign's combat phase flag.
func CombatStateKey(campaignID string) string {
	return fmt.Sprintf("combat.%s", campaignID)
}

// CombatantsKey returns the key holding a campaign's initiative roster.
func CombatantsKey(campaignID string) string {
	return fmt.Sprintf("combatants.%s", campaignID)
}
