package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AdminAPI calls the chat server's HTTP moderation endpoints. Bans applied
// here are enforced server-side; the bot keeps its own list only for
// display.
type AdminAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewAdminAPI() *AdminAPI {
	return &AdminAPI{
		baseURL: viper.GetString("chat.admin_url"),
		apiKey:  viper.GetString("chat.api_key"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Ban bans a user identifier, optionally with an IP address.
func (a *AdminAPI) Ban(ctx context.Context, identifier, ip string) error {
	return a.call(ctx, http.MethodPost, identifier, ip)
}

// Unban lifts a ban.
func (a *AdminAPI) Unban(ctx context.Context, identifier, ip string) error {
	return a.call(ctx, http.MethodDelete, identifier, ip)
}

func (a *AdminAPI) call(ctx context.Context, method, identifier, ip string) error {
	body, err := json.Marshal(map[string]string{"identifier": identifier, "ip": ip})
	if err != nil {
		return fmt.Errorf("encoding ban request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+"/api/ban", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", a.apiKey)

	res, err := a.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("identifier", identifier).Msg("ban API request failed")
		return fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status code from ban API: %d", res.StatusCode)
		log.Error().Err(err).Str("identifier", identifier).Send()
		return err
	}

	return nil
}
