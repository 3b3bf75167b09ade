package ubi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/cache"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/metrics"
	"github.com/nkiryanov/r6tracker/internal/models"
)

const (
	defaultProfileCacheTTL = 10 * time.Minute
	rankedBoardID          = "pvp_ranked"
	currentSeasonID        = "-1"
)

// Source of Authorization header value, SessionManager in production
type authorizer interface {
	Authorization(ctx context.Context) (string, error)
}

type GatewayConfig struct {
	// Platform sandboxes, DefaultSandboxes of the client base url if empty
	Sandboxes Sandboxes

	// Profile lookups cache. Lookups are not cached if nil
	Cache    cache.Cache
	CacheTTL time.Duration

	// Optional
	Logger  logger.Logger
	Metrics *metrics.Metrics
}

// StatsGateway runs read only stats queries on behalf of the managed session
type StatsGateway struct {
	client    *Client
	auth      authorizer
	sandboxes Sandboxes

	cache    cache.Cache
	cacheTTL time.Duration

	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewStatsGateway(cfg GatewayConfig, client *Client, auth authorizer) (*StatsGateway, error) {
	if client == nil || auth == nil {
		return nil, errors.New("client and authorizer must not be nil")
	}

	cfg.Sandboxes = DefaultSandboxes(client.baseURL).Override(cfg.Sandboxes)
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = defaultProfileCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &StatsGateway{
		client:    client,
		auth:      auth,
		sandboxes: cfg.Sandboxes,
		cache:     cfg.Cache,
		cacheTTL:  cfg.CacheTTL,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}, nil
}

type profilesResponse struct {
	Profiles []models.PlayerProfile `json:"profiles"`
}

// FindProfile searches player profiles by name on platform.
// Nothing found is an empty result, not an error.
func (g *StatsGateway) FindProfile(ctx context.Context, name string, platform string) ([]models.PlayerProfile, error) {
	key := profileCacheKey(name, platform)
	if profiles, ok := g.cachedProfiles(ctx, key); ok {
		return profiles, nil
	}

	q := url.Values{}
	q.Set("platformType", platform)
	q.Set("nameOnPlatform", name)

	var resp profilesResponse
	err := g.get(ctx, OpProfile, g.client.baseURL+"/v2/profiles?"+q.Encode(), &resp)

	var ue *UpstreamError
	switch {
	case errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound:
		g.logger.Debug("Profile not found", "name", name, "platform", platform)
		return []models.PlayerProfile{}, nil
	case err != nil:
		return nil, err
	}

	if resp.Profiles == nil {
		resp.Profiles = []models.PlayerProfile{}
	}
	if len(resp.Profiles) > 0 {
		g.storeProfiles(ctx, key, resp.Profiles)
	}
	return resp.Profiles, nil
}

type rankStatsResponse struct {
	Players map[string]models.PlayerStats `json:"players"`
}

// FindRankStats returns ranked stats of the current season.
// Response without requested profile breaks upstream contract and reported as internal error.
func (g *StatsGateway) FindRankStats(ctx context.Context, profileID string, regionID string, platform string) (models.PlayerStats, error) {
	q := url.Values{}
	q.Set("board_id", rankedBoardID)
	q.Set("profile_ids", profileID)
	q.Set("region_id", regionID)
	q.Set("season_id", currentSeasonID)

	var resp rankStatsResponse
	if err := g.get(ctx, OpRankStats, g.sandboxes.URL(platform)+"/r6karma/players?"+q.Encode(), &resp); err != nil {
		return models.PlayerStats{}, err
	}

	stats, ok := resp.Players[profileID]
	if !ok {
		g.logger.Error("Ranked stats response misses requested profile", "profile_id", profileID, "region", regionID, "players", len(resp.Players))
		return models.PlayerStats{}, fmt.Errorf("%w: ranked stats for profile %q missing in upstream response", apperrors.ErrInternal, profileID)
	}
	return stats, nil
}

type populationsResponse struct {
	Results models.PopulationsStatistics `json:"results"`
}

// FindPopulationsStatistics passes statistics list as is and returns upstream results untouched
func (g *StatsGateway) FindPopulationsStatistics(ctx context.Context, profileID string, platform string, statistics string) (models.PopulationsStatistics, error) {
	q := url.Values{}
	q.Set("populations", profileID)
	q.Set("statistics", statistics)

	var resp populationsResponse
	if err := g.get(ctx, OpPopulations, g.sandboxes.URL(platform)+"/playerstats2/statistics?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.Results == nil {
		resp.Results = models.PopulationsStatistics{}
	}
	return resp.Results, nil
}

type xpProfilesResponse struct {
	PlayerProfiles []models.PlayerXPProfile `json:"player_profiles"`
}

func (g *StatsGateway) FindPlayerXPProfiles(ctx context.Context, profileID string, platform string) ([]models.PlayerXPProfile, error) {
	q := url.Values{}
	q.Set("profile_ids", profileID)

	var resp xpProfilesResponse
	if err := g.get(ctx, OpXPProfiles, g.sandboxes.URL(platform)+"/r6playerprofile/playerprofile/progressions?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	if resp.PlayerProfiles == nil {
		resp.PlayerProfiles = []models.PlayerXPProfile{}
	}
	return resp.PlayerProfiles, nil
}

// Take one snapshot of authorization per call, so the whole call uses the same token
func (g *StatsGateway) get(ctx context.Context, op string, endpoint string, out any) error {
	authorization, err := g.auth.Authorization(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return g.client.getJSON(ctx, op, endpoint, authorization, out)
}

func profileCacheKey(name string, platform string) string {
	return "profile:" + platform + ":" + strings.ToLower(name)
}

func (g *StatsGateway) cachedProfiles(ctx context.Context, key string) ([]models.PlayerProfile, bool) {
	if g.cache == nil {
		return nil, false
	}

	b, ok := g.cache.Get(ctx, key)
	g.metrics.CacheLookup(ok)
	if !ok {
		return nil, false
	}

	var profiles []models.PlayerProfile
	if err := json.Unmarshal(b, &profiles); err != nil {
		g.logger.Warn("Dropping malformed cached profiles", "key", key, "error", err)
		g.cache.Delete(ctx, key)
		return nil, false
	}
	return profiles, true
}

func (g *StatsGateway) storeProfiles(ctx context.Context, key string, profiles []models.PlayerProfile) {
	if g.cache == nil {
		return
	}

	b, err := json.Marshal(profiles)
	if err != nil {
		g.logger.Warn("Failed to encode profiles for cache", "key", key, "error", err)
		return
	}
	g.cache.Set(ctx, key, b, g.cacheTTL)
}
