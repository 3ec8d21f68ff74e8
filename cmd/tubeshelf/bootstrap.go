package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tubeshelf/internal/app/playlists"
	"tubeshelf/internal/app/users"
	"tubeshelf/internal/store"
)

const (
	demoEmail    = "demo@tubeshelf.local"
	demoPassword = "demo-password-123"
)

type seedVideo struct {
	URL   string
	Title string
}

var demoVideos = []seedVideo{
	{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Title: "Never Gonna Give You Up"},
	{URL: "https://youtu.be/9bZkp7q19f0", Title: "Gangnam Style"},
	{URL: "https://www.youtube.com/embed/kJQP7kiw5Fk", Title: "Despacito"},
	{URL: "https://www.youtube.com/watch?v=JGwWNGJdvx8&t=42", Title: "Shape of You"},
}

// bootstrapDemoData creates a demo account with a few videos and one playlist.
// It is safe to run against an already seeded database.
func bootstrapDemoData(ctx context.Context, svc *services) error {
	userID, err := ensureDemoUser(ctx, svc)
	if err != nil {
		return err
	}

	existing, err := svc.playlists.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list demo playlists: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	playlist, err := svc.playlists.Create(ctx, playlists.PlaylistInput{Title: "Demo mix", UserID: userID})
	if err != nil {
		return fmt.Errorf("create demo playlist: %w", err)
	}

	for _, v := range demoVideos {
		if _, _, err := svc.playlists.AttachVideo(ctx, playlists.AttachInput{
			PlaylistID: playlist.DBID,
			UserID:     userID,
			URL:        v.URL,
			Title:      v.Title,
		}); err != nil {
			return fmt.Errorf("attach demo video %q: %w", v.Title, err)
		}
	}

	if n, err := svc.syncer.Sync(ctx); err != nil {
		log.Warn().Err(err).Msg("demo search sync failed")
	} else {
		log.Info().Int("indexed", n).Msg("demo data seeded")
	}
	return nil
}

// ensureDemoUser registers the demo account if needed and returns its id.
func ensureDemoUser(ctx context.Context, svc *services) (uuid.UUID, error) {
	_, err := svc.users.Register(ctx, users.RegisterInput{
		Email:           demoEmail,
		FirstName:       "Demo",
		LastName:        "User",
		Password:        demoPassword,
		ConfirmPassword: demoPassword,
	})
	if err != nil && !errors.Is(err, store.ErrUserExists) {
		return uuid.Nil, fmt.Errorf("bootstrap demo user: %w", err)
	}

	token, err := svc.users.SignIn(ctx, users.SignInInput{Email: demoEmail, Password: demoPassword})
	if err != nil {
		return uuid.Nil, fmt.Errorf("sign in demo user: %w", err)
	}
	claims, err := svc.tokens.Verify(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("verify demo token: %w", err)
	}
	return uuid.Parse(claims.UserID)
}
