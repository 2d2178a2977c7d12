package goals

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// NewGoalID builds a goal id of the form GOAL_<YYYYMMDD>_<5 hex chars>.
// Two goals created by the same owner in the same nanosecond collide; the
// store's unique constraint rejects the second.
func NewGoalID(now time.Time, ownerID string) string {
	if ownerID == "" {
		ownerID = "anon"
	}
	sum := md5.Sum([]byte(now.Format(time.RFC3339Nano) + ownerID))
	suffix := strings.ToUpper(hex.EncodeToString(sum[:]))[:5]
	return "GOAL_" + now.Format("20060102") + "_" + suffix
}
