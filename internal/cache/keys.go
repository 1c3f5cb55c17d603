package cache

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// tokenDigest returns a short stable digest of the credential so cache keys
// differ across accounts without raw secrets ending up in filenames.
func tokenDigest(token string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(token))[:8]
}

// ActivitiesKey identifies one listing request shape: the lookback window
// plus the credential it was issued under.
func ActivitiesKey(daysBack int, token string) string {
	return fmt.Sprintf("activities_%d_%s", daysBack, tokenDigest(token))
}

// StreamsKey identifies one activity's stream request under a credential.
func StreamsKey(activityID int64, token string) string {
	return fmt.Sprintf("streams_%d_%s", activityID, tokenDigest(token))
}

// AthleteKey identifies the profile request under a credential.
func AthleteKey(token string) string {
	return fmt.Sprintf("athlete_%s", tokenDigest(token))
}

// fingerprint maps an arbitrary key to a filesystem-safe identifier.
func fingerprint(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
