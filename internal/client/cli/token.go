package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/RndUsr76/Notish/internal/client/auth"
	"github.com/RndUsr76/Notish/internal/client/config"
)

// TokenValidity is how long tokens printed by PrintToken stay valid.
const TokenValidity = 30 * 24 * time.Hour

// PrintToken writes an access token for cfg.IssueTokenFor, signed with
// cfg.JWTSecret, to w. Pasting it at the login prompt of a client that uses
// the same secret logs in as that owner.
func PrintToken(w io.Writer, cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("issue token: no JWT secret configured")
	}
	tok, err := auth.GenerateToken(cfg.IssueTokenFor, []byte(cfg.JWTSecret), TokenValidity)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(w, tok)
	return err
}
