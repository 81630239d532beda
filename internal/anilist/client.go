package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/TahaZMohiuddin/arcanum/pkg/models"
)

const defaultBase = "https://graphql.anilist.co"

// mediaQuery pages popular anime. idMal rides along so imported MAL exports
// can be matched against seeded rows later.
const mediaQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo {
      hasNextPage
    }
    media(type: ANIME, sort: POPULARITY_DESC) {
      id
      idMal
      title {
        romaji
        english
      }
      description(asHtml: false)
      coverImage {
        large
      }
      genres
      episodes
      averageScore
      season
      seasonYear
    }
  }
}`

// Client talks to the AniList GraphQL API. Requests are rate limited to stay
// well inside AniList's public quota.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Limiter *rate.Limiter
}

func NewClient() *Client {
	return &Client{
		BaseURL: defaultBase,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data struct {
		Page struct {
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
			Media []media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type media struct {
	ID    int64  `json:"id"`
	IDMal *int64 `json:"idMal"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	Description string `json:"description"`
	CoverImage  struct {
		Large string `json:"large"`
	} `json:"coverImage"`
	Genres       []string `json:"genres"`
	Episodes     *int     `json:"episodes"`
	AverageScore *int     `json:"averageScore"`
	Season       string   `json:"season"`
	SeasonYear   *int     `json:"seasonYear"`
}

// FetchPage returns one page of catalog entries plus whether more pages
// remain.
func (c *Client) FetchPage(ctx context.Context, page, perPage int) ([]models.Anime, bool, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, false, fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(gqlRequest{
		Query:     mediaQuery,
		Variables: map[string]any{"page": page, "perPage": perPage},
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("anilist request: %w", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("anilist status %d: %s", resp.StatusCode, string(raw))
	}

	var out gqlResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		return nil, false, fmt.Errorf("anilist error: %s", out.Errors[0].Message)
	}

	entries := make([]models.Anime, 0, len(out.Data.Page.Media))
	for _, m := range out.Data.Page.Media {
		if m.ID == 0 || m.Title.Romaji == "" {
			continue
		}
		entries = append(entries, toAnime(m))
	}
	return entries, out.Data.Page.PageInfo.HasNextPage, nil
}

func toAnime(m media) models.Anime {
	a := models.Anime{
		ID:           uuid.NewString(),
		AnilistID:    m.ID,
		MALID:        m.IDMal,
		Title:        m.Title.Romaji,
		TitleEnglish: m.Title.English,
		Synopsis:     m.Description,
		CoverURL:     m.CoverImage.Large,
		Genres:       m.Genres,
		EpisodeCount: m.Episodes,
		AverageScore: m.AverageScore,
		Season:       m.Season,
		SeasonYear:   m.SeasonYear,
		CachedTags:   map[string]string{},
	}
	if a.Genres == nil {
		a.Genres = []string{}
	}
	return a
}
