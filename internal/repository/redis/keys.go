package redisrepo

import (
	"fmt"
	"net/url"
)

const ns = "cartodesk:v1"

func KeyCampaignSpend() string {
	return ns + ":campaigns:spend"
}

// KeyIdemGame scopes a client supplied idempotency key to the user sending it.
func KeyIdemGame(userID, idemKey string) string {
	return fmt.Sprintf("%s:idem:games:%s:%s", ns, url.QueryEscape(userID), idemKey)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelGamesChanged() string {
	return ns + ":games:changed"
}
