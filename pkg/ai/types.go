package ai

import "context"

// IcebreakerInput describes an accepted skill exchange for which a
// conversation opener should be generated.
type IcebreakerInput struct {
	RequesterName string
	AddresseeName string
	OfferedSkill  string
	WantedSkill   string
}

// IcebreakerGenerator produces a short conversation opener for a newly
// accepted match. Implementations must treat failures as non-fatal; callers
// fall back to no icebreaker.
type IcebreakerGenerator interface {
	Suggest(ctx context.Context, input IcebreakerInput) (string, error)
}
