package domain

import "sort"

// SeedCreatorID marks peppers that ship with a fresh tenant rather than
// being submitted by a member.
const SeedCreatorID = "-1"

// Upvote records one member's vote. A pepper holds at most one Upvote per
// member id.
type Upvote struct {
	MemberID string `json:"memberID"`
}

// Pepper is one ranked statement. ID and Text are immutable after creation;
// the upvote set is the only thing that changes over a pepper's life.
type Pepper struct {
	ID        string   `json:"id"`
	Text      string   `json:"pepperText"`
	CreatorID string   `json:"creatorID"`
	Upvotes   []Upvote `json:"upvotes"`
}

// HasUpvote reports whether the member already voted for this pepper.
func (p Pepper) HasUpvote(memberID string) bool {
	for _, u := range p.Upvotes {
		if u.MemberID == memberID {
			return true
		}
	}
	return false
}

// WithUpvote returns a copy with the member's vote present. Adding an
// existing vote is a no-op, which keeps the operation idempotent.
func (p Pepper) WithUpvote(memberID string) Pepper {
	if p.HasUpvote(memberID) {
		return p
	}
	upvotes := make([]Upvote, 0, len(p.Upvotes)+1)
	upvotes = append(upvotes, p.Upvotes...)
	upvotes = append(upvotes, Upvote{MemberID: memberID})
	p.Upvotes = upvotes
	return p
}

// WithoutUpvote returns a copy with the member's vote absent.
func (p Pepper) WithoutUpvote(memberID string) Pepper {
	if !p.HasUpvote(memberID) {
		return p
	}
	upvotes := make([]Upvote, 0, len(p.Upvotes))
	for _, u := range p.Upvotes {
		if u.MemberID != memberID {
			upvotes = append(upvotes, u)
		}
	}
	p.Upvotes = upvotes
	return p
}

// Sort orders peppers by upvote count descending, then id ascending. The
// persisted blob is always pre-sorted: this runs before every write, never
// on reads.
func Sort(peppers []Pepper) {
	sort.SliceStable(peppers, func(i, j int) bool {
		if len(peppers[i].Upvotes) != len(peppers[j].Upvotes) {
			return len(peppers[i].Upvotes) > len(peppers[j].Upvotes)
		}
		return peppers[i].ID < peppers[j].ID
	})
}
