package scoring

import "solana-drc/internal/domain"

// DeveloperInputs aggregates the flag counts over a developer's coins.
type DeveloperInputs struct {
	CoinsCreated   int
	Successful     int
	TokenAbandoned int
	TeamAbandoned  int
}

// RecalculateDeveloper recomputes the developer score from the aggregate
// coin flags. The score is a pure function of the inputs; the counters on
// s are refreshed to match.
func RecalculateDeveloper(cfg Config, s *domain.DeveloperScore, in DeveloperInputs) {
	s.SuccessfulLaunch = in.Successful
	s.AbandonedProjects = in.TokenAbandoned
	s.RugPullOrSellOff = in.TeamAbandoned

	flagged := in.TokenAbandoned + in.TeamAbandoned
	if flagged > in.CoinsCreated {
		flagged = in.CoinsCreated
	}
	s.NoRugsCount = in.CoinsCreated - flagged

	score := cfg.DeveloperBase +
		cfg.DevSuccessBonus*in.Successful -
		cfg.DevTokenAbandonPenalty*in.TokenAbandoned -
		cfg.DevTeamAbandonPenalty*in.TeamAbandoned

	s.Score = clampScore(score, 0)
}
