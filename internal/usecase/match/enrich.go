package match

import (
	"context"

	"github.com/sirupsen/logrus"
)

// enrichMatch generates icebreakers for a fresh match in the background.
// Failures only cost the icebreakers.
func (uc *MatchUseCase) enrichMatch(matchID, userA, userB string) {
	if uc.icebreakers == nil {
		return
	}
	uc.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		defer cancel()

		log := uc.log.WithField("match_id", matchID)

		a, err := uc.userRepo.GetByID(ctx, userA)
		if err != nil {
			log.WithError(err).Warn("icebreakers: failed to load user")
			return
		}
		b, err := uc.userRepo.GetByID(ctx, userB)
		if err != nil {
			log.WithError(err).Warn("icebreakers: failed to load user")
			return
		}

		lines, err := uc.icebreakers.GenerateIcebreakers(ctx, a, b)
		if err != nil {
			log.WithError(err).Warn("icebreakers: generation failed")
			return
		}
		if len(lines) == 0 {
			return
		}

		if err := uc.matchRepo.UpdateIcebreakers(ctx, matchID, lines); err != nil {
			log.WithError(err).Warn("icebreakers: failed to save")
			return
		}
		log.WithFields(logrus.Fields{"count": len(lines)}).Debug("icebreakers saved")
	})
}
