package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fishbot/internal/core/domain/command"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Module wraps the external lookup commands: GIF search, movie lookup and
// weather. Keys come from config; a command whose key is missing replies
// with a setup hint instead of erroring.
type Module struct {
	client *http.Client
}

func Register(r *command.Registry) {
	m := &Module{client: &http.Client{Timeout: 10 * time.Second}}

	r.Register(command.Spec{
		Name:        "gif",
		Aliases:     []string{"giphy"},
		Description: "Search Giphy for a GIF",
		Usage:       "!gif <search terms>",
		Module:      "api",
		Cooldown:    5 * time.Second,
		Handler:     m.giphy,
	})
	r.Register(command.Spec{
		Name:        "tenor",
		Description: "Search Tenor for a GIF",
		Usage:       "!tenor <search terms>",
		Module:      "api",
		Cooldown:    5 * time.Second,
		Handler:     m.tenor,
	})
	r.Register(command.Spec{
		Name:        "imdb",
		Aliases:     []string{"movie", "film"},
		Description: "Look up a movie or series on OMDb",
		Usage:       "!imdb [-tv|-m] <title>",
		Module:      "api",
		Cooldown:    5 * time.Second,
		Handler:     m.omdb,
	})
	r.Register(command.Spec{
		Name:        "weather",
		Aliases:     []string{"wx"},
		Description: "Current weather for a city",
		Usage:       "!weather <city>",
		Module:      "api",
		Cooldown:    10 * time.Second,
		Handler:     m.weather,
	})
}

// getJSON fetches a URL and decodes the JSON response into v.
func (m *Module) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

func (m *Module) giphy(ctx context.Context, inv *command.Invocation, args string) error {
	query := strings.TrimSpace(args)
	if query == "" {
		return inv.Reply(ctx, "Usage: !gif <search terms>")
	}

	key := viper.GetString("api.giphy_key")
	if key == "" {
		return inv.Reply(ctx, "Giphy isn't configured!")
	}

	var result struct {
		Data []struct {
			URL    string `json:"url"`
			Images struct {
				Original struct {
					URL string `json:"url"`
				} `json:"original"`
			} `json:"images"`
		} `json:"data"`
	}

	u := fmt.Sprintf("https://api.giphy.com/v1/gifs/search?api_key=%s&q=%s&limit=1&rating=pg-13",
		url.QueryEscape(key), url.QueryEscape(query))
	if err := m.getJSON(ctx, u, &result); err != nil {
		log.Error().Err(err).Str("query", query).Msg("giphy search failed")
		return inv.Reply(ctx, "GIF search failed, try again later!")
	}

	if len(result.Data) == 0 {
		return inv.Reply(ctx, fmt.Sprintf("No GIFs found for '%s'", query))
	}

	return inv.Reply(ctx, result.Data[0].Images.Original.URL)
}

func (m *Module) tenor(ctx context.Context, inv *command.Invocation, args string) error {
	query := strings.TrimSpace(args)
	if query == "" {
		return inv.Reply(ctx, "Usage: !tenor <search terms>")
	}

	key := viper.GetString("api.tenor_key")
	if key == "" {
		return inv.Reply(ctx, "Tenor isn't configured!")
	}

	var result struct {
		Results []struct {
			MediaFormats struct {
				Gif struct {
					URL string `json:"url"`
				} `json:"gif"`
			} `json:"media_formats"`
		} `json:"results"`
	}

	u := fmt.Sprintf("https://tenor.googleapis.com/v2/search?key=%s&q=%s&limit=1",
		url.QueryEscape(key), url.QueryEscape(query))
	if err := m.getJSON(ctx, u, &result); err != nil {
		log.Error().Err(err).Str("query", query).Msg("tenor search failed")
		return inv.Reply(ctx, "GIF search failed, try again later!")
	}

	if len(result.Results) == 0 {
		return inv.Reply(ctx, fmt.Sprintf("No GIFs found for '%s'", query))
	}

	return inv.Reply(ctx, result.Results[0].MediaFormats.Gif.URL)
}

func (m *Module) omdb(ctx context.Context, inv *command.Invocation, args string) error {
	title := strings.TrimSpace(args)
	mediaType := ""
	if flag, rest, ok := strings.Cut(title, " "); ok {
		switch flag {
		case "-tv":
			mediaType, title = "series", strings.TrimSpace(rest)
		case "-m":
			mediaType, title = "movie", strings.TrimSpace(rest)
		}
	}
	if title == "" {
		return inv.Reply(ctx, "Usage: !imdb [-tv|-m] <title>")
	}

	key := viper.GetString("api.omdb_key")
	if key == "" {
		return inv.Reply(ctx, "OMDb isn't configured!")
	}

	var result struct {
		Response string `json:"Response"`
		Title    string `json:"Title"`
		Year     string `json:"Year"`
		Rated    string `json:"Rated"`
		Genre    string `json:"Genre"`
		Plot     string `json:"Plot"`
		Ratings  []struct {
			Source string `json:"Source"`
			Value  string `json:"Value"`
		} `json:"Ratings"`
	}

	u := fmt.Sprintf("https://www.omdbapi.com/?apikey=%s&t=%s&plot=short",
		url.QueryEscape(key), url.QueryEscape(title))
	if mediaType != "" {
		u += "&type=" + mediaType
	}
	if err := m.getJSON(ctx, u, &result); err != nil {
		log.Error().Err(err).Str("title", title).Msg("omdb lookup failed")
		return inv.Reply(ctx, "Movie lookup failed, try again later!")
	}

	if result.Response != "True" {
		return inv.Reply(ctx, fmt.Sprintf("Nothing found for '%s'", title))
	}

	rating := "unrated"
	for _, r := range result.Ratings {
		if r.Source == "Internet Movie Database" {
			rating = r.Value
		}
	}

	return inv.Reply(ctx, fmt.Sprintf("%s (%s) [%s] IMDb: %s | %s | %s",
		result.Title, result.Year, result.Genre, rating, result.Rated, result.Plot))
}
