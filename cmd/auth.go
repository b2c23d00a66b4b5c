package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/top5/internal/server"
	"github.com/desertthunder/top5/internal/services"
	"github.com/desertthunder/top5/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// authTimeout bounds the wait for the browser callback.
const authTimeout = 2 * time.Minute

// Auth performs the OAuth2 authorization code flow for Spotify and saves the tokens to --config.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config, configPath, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: %w: Spotify client_id and client_secret must be set in %s or via %s/%s",
			shared.ErrConfig, shared.ErrMissingCredentials, configPath, shared.EnvClientID, shared.EnvClientSecret)
	}

	oauthSrv, ok := r.spotify.(services.OAuthService)
	if !ok {
		if oauthSrv, err = services.NewSpotifyService(config.Credentials.Spotify.Map()); err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
	}

	token, err := r.doOAuth(ctx, config, oauthSrv)
	if err != nil {
		return err
	}

	if err := config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: top5 build --file artists.txt --playlist \"My Mix\"\n")

	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	callback, err := server.NewCallbackServer(config.CallbackAddr(), oauthSrv.GetOAuthConfig(), state, r.logger)
	if err != nil {
		return nil, fmt.Errorf("server error: %w", err)
	}
	r.logger.Infof("starting OAuth server at %v", callback.Addr())
	callback.Start()

	authURL := oauthSrv.GetAuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%v timeout)...\n", authTimeout)

	waitCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	token, err := callback.Wait(waitCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, authTimeout)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// ConfigInit writes the example configuration to --config.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConfig, err)
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Created %s\n", path)
	r.writePlain("Add your Spotify client_id and client_secret, then run: top5 auth\n")
	return nil
}
