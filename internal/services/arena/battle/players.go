package battle

import (
	"fmt"
	"strings"
	"time"
)

const seatCount = 9

// PickAvailablePlayers returns count player ids. Preferred ids come first
// and are kept even when already seated in existing; then come the free
// seats player1..player9, then generated auto-<millis>-<n> ids where n is
// the number of ids picked so far.
func PickAvailablePlayers(preferred, existing []string, count int) []string {
	return pickAvailablePlayers(preferred, existing, count, time.Now())
}

func pickAvailablePlayers(preferred, existing []string, count int, now time.Time) []string {
	if count <= 0 {
		return nil
	}
	seated := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		seated[id] = struct{}{}
	}
	picked := make([]string, 0, count)
	chosen := make(map[string]struct{}, count)
	add := func(id string) {
		chosen[id] = struct{}{}
		picked = append(picked, id)
	}

	for _, id := range preferred {
		if len(picked) == count {
			return picked
		}
		id = strings.TrimSpace(id)
		if _, dup := chosen[id]; id == "" || dup {
			continue
		}
		add(id)
	}

	free := func(id string) bool {
		_, taken := seated[id]
		_, dup := chosen[id]
		return !taken && !dup
	}
	for seat := 1; seat <= seatCount && len(picked) < count; seat++ {
		if id := fmt.Sprintf("player%d", seat); free(id) {
			add(id)
		}
	}
	millis := now.UnixMilli()
	for len(picked) < count {
		id := fmt.Sprintf("auto-%d-%d", millis, len(picked))
		for n := 1; !free(id); n++ {
			id = fmt.Sprintf("auto-%d-%d-%d", millis, len(picked), n)
		}
		add(id)
	}
	return picked
}
