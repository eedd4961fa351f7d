package phrases

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

// pick chooses one of n candidates for a round. The same salt, session,
// round and category always land on the same candidate, so a restored game
// sees the phrase it would have seen before the restart.
func pick(salt string, req game.PhraseRequest, n int) int {
	if n <= 1 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	fmt.Fprintf(mac, "%s|%d|%s", req.SessionID, req.Round, req.Category)
	return int(binary.BigEndian.Uint64(mac.Sum(nil)) % uint64(n))
}
