// Package seed holds the default pepper set a fresh tenant starts with.
package seed

import (
	"github.com/spicyhq/peppers/internal/pepper/domain"
)

// Seed ids are zero-timestamp ULIDs. Real pepper ids encode their creation
// time, so on an upvote tie every submitted pepper sorts after the seeds.
var defaults = []domain.Pepper{
	{
		ID:        "00000000000000000000000001",
		Text:      "'Agents' are just sparkling apps",
		CreatorID: domain.SeedCreatorID,
	},
	{
		ID:        "00000000000000000000000002",
		Text:      "Microservices was a mistake",
		CreatorID: domain.SeedCreatorID,
	},
	{
		ID:        "00000000000000000000000003",
		Text:      "CAPTCHA stops more users than bots",
		CreatorID: domain.SeedCreatorID,
	},
	{
		ID:        "00000000000000000000000004",
		Text:      "Python is performant enough",
		CreatorID: domain.SeedCreatorID,
	},
	{
		ID:        "00000000000000000000000005",
		Text:      "The most useful vim command is ':q'",
		CreatorID: domain.SeedCreatorID,
	},
}

// DefaultPeppers returns a fresh copy of the default set.
func DefaultPeppers() []domain.Pepper {
	out := make([]domain.Pepper, len(defaults))
	for i, p := range defaults {
		copied := p
		copied.Upvotes = append([]domain.Upvote{}, p.Upvotes...)
		out[i] = copied
	}
	return out
}
