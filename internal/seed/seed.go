package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	appModels "github.com/peerconnect/api/internal/app/models"
	appRepos "github.com/peerconnect/api/internal/app/repositories"
	"github.com/peerconnect/api/internal/pkg/apperrors"
	"github.com/peerconnect/api/internal/pkg/auth"
)

const demoPassword = "peerconnect123"

var demoUsers = []appModels.User{
	{Name: "Alice", Email: "alice@nitc.ac.in", College: "NIT Calicut", Interests: []string{"running", "chess"}},
	{Name: "Bob", Email: "bob@nitc.ac.in", College: "NIT Calicut", Interests: []string{"football"}},
	{Name: "Charlie", Email: "charlie@nitc.ac.in", College: "NIT Calicut", Interests: []string{"music"}},
}

// CreateDefaultData creates verified demo users and one activity for local development.
// Existing rows are left untouched so it is safe to run on every start.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating demo data...")
	var finalErr error

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	var creator *appModels.User
	for i := range demoUsers {
		u := demoUsers[i]
		existing, err := repos.UserRepository.GetByEmail(ctx, u.Email)
		if err == nil {
			if creator == nil {
				creator = existing
			}
			continue
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error looking up demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		u.Password = hash
		u.EmailVerified = true
		if err := repos.UserRepository.Create(ctx, &u); err != nil {
			lgr.Error().Err(err).Str("email", u.Email).Msg("Error creating demo user")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("email", u.Email).Msg("Demo user created")
		if creator == nil {
			creator = &u
		}
	}

	if creator == nil {
		return finalErr
	}

	existing, err := repos.ActivityRepository.ListByCollege(ctx, creator.College)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing activities")
		return errors.Join(finalErr, err)
	}
	if len(existing) > 0 {
		return finalErr
	}

	activity := &appModels.Activity{
		Title:        "Morning run",
		Category:     appModels.ActivityCategorySports,
		Date:         time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour),
		Time:         "06:30",
		Location:     "Main ground",
		Description:  "Easy 5k around campus",
		Capacity:     2,
		College:      creator.College,
		CreatorID:    creator.ID,
		Participants: []int64{creator.ID},
		Waitlist:     []int64{},
	}
	if err := repos.ActivityRepository.Create(ctx, activity); err != nil {
		lgr.Error().Err(err).Msg("Error creating demo activity")
		finalErr = errors.Join(finalErr, err)
	} else {
		lgr.Info().Int64("activityID", activity.ID).Msg("Demo activity created")
	}

	return finalErr
}
