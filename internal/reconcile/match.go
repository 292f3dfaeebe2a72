package reconcile

import (
	"wedding-rsvp/internal/models"
)

// maxWordsRequired caps how many shared words a partial match needs.
const maxWordsRequired = 2

// NamesMatch reports whether a guest-list name and an RSVP name denote the
// same person. Normalized names that are equal match; otherwise the names
// must share at least two words, or every word of the shorter name when it
// has only one. A name that normalizes to nothing never matches.
func NamesMatch(guestName, rsvpName string) bool {
	guest := NormalizeName(guestName)
	rsvp := NormalizeName(rsvpName)

	if guest == "" || rsvp == "" {
		return false
	}
	if guest == rsvp {
		return true
	}

	guestWords := words(guest)
	rsvpWords := words(rsvp)

	shared := 0
	for _, word := range guestWords {
		if containsWord(rsvpWords, word) {
			shared++
		}
	}

	required := min(maxWordsRequired, min(len(guestWords), len(rsvpWords)))
	return shared >= required
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if w == word {
			return true
		}
	}
	return false
}

// MatchRSVP returns the first RSVP whose name matches the guest's
func MatchRSVP(guest models.Guest, rsvps []models.RSVP) (models.RSVP, bool) {
	for _, r := range rsvps {
		if NamesMatch(guest.Name, r.GuestName) {
			return r, true
		}
	}
	return models.RSVP{}, false
}

// FindGuestsNeedingFollowup returns, in input order, the guests whose
// invitation was sent but who match no RSVP.
func FindGuestsNeedingFollowup(guests []models.Guest, rsvps []models.RSVP) []models.Guest {
	pending := make([]models.Guest, 0)
	for _, g := range guests {
		if !g.InvitationSent {
			continue
		}
		if _, ok := MatchRSVP(g, rsvps); !ok {
			pending = append(pending, g)
		}
	}
	return pending
}
