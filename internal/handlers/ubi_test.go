package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/models"
	"github.com/nkiryanov/r6tracker/internal/service/ubi"
)

const testProfileID = "e3d5ea9e-156a-4f73-b4b3-7c0ba4e0e3a5"

// Gateway answering with preset values, records last call arguments
type fakeGateway struct {
	profiles    []models.PlayerProfile
	stats       models.PlayerStats
	populations models.PopulationsStatistics
	xp          []models.PlayerXPProfile
	err         error

	lastArgs []string
}

func (g *fakeGateway) FindProfile(_ context.Context, name string, platform string) ([]models.PlayerProfile, error) {
	g.lastArgs = []string{name, platform}
	return g.profiles, g.err
}

func (g *fakeGateway) FindRankStats(_ context.Context, profileID string, regionID string, platform string) (models.PlayerStats, error) {
	g.lastArgs = []string{profileID, regionID, platform}
	return g.stats, g.err
}

func (g *fakeGateway) FindPopulationsStatistics(_ context.Context, profileID string, platform string, statistics string) (models.PopulationsStatistics, error) {
	g.lastArgs = []string{profileID, platform, statistics}
	return g.populations, g.err
}

func (g *fakeGateway) FindPlayerXPProfiles(_ context.Context, profileID string, platform string) ([]models.PlayerXPProfile, error) {
	g.lastArgs = []string{profileID, platform}
	return g.xp, g.err
}

type fakeSession struct {
	credential models.Credential
	ok         bool
	state      ubi.State
}

func (s fakeSession) Current() (models.Credential, bool) { return s.credential, s.ok }
func (s fakeSession) State() ubi.State                   { return s.state }

// Auth service is not touched by public ubi routes
type noAuth struct{ authService }

func serveUbi(t *testing.T, g *fakeGateway, s sessionInfo, target string) (int, string) {
	t.Helper()

	srv := httptest.NewServer(NewRouter(noAuth{}, nil, g, s, nil, logger.NewNoOpLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + target)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, string(body)
}

func TestUbi_FindProfile(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		g := &fakeGateway{profiles: []models.PlayerProfile{{ProfileID: testProfileID, NameOnPlatform: "Beaulo", PlatformType: "uplay"}}}

		code, body := serveUbi(t, g, fakeSession{}, "/api/ubi/profile?name=Beaulo")

		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		assert.JSONEq(t, fmt.Sprintf(`[{
			"profileId": %q,
			"userId": "",
			"platformType": "uplay",
			"idOnPlatform": "",
			"nameOnPlatform": "Beaulo"
		}]`, testProfileID), body)
		assert.Equal(t, []string{"Beaulo", "uplay"}, g.lastArgs, "pc platform is default")
	})

	t.Run("nothing found is 404", func(t *testing.T) {
		g := &fakeGateway{profiles: []models.PlayerProfile{}}

		code, body := serveUbi(t, g, fakeSession{}, "/api/ubi/profile?name=nobody&platform=psn")

		require.Equal(t, http.StatusNotFound, code)
		assert.JSONEq(t, `{
			"error": "service_error",
			"message": "User \"nobody\" not found on platform \"psn\""
		}`, body)
	})

	t.Run("invalid query", func(t *testing.T) {
		code, body := serveUbi(t, &fakeGateway{}, fakeSession{}, "/api/ubi/profile?platform=nintendo")

		require.Equal(t, http.StatusBadRequest, code)
		assert.JSONEq(t, `{
			"error": "validation_failed",
			"message": "Request validation failed",
			"fields": {
				"name": "This field is required",
				"platform": "Value must be one of: uplay xbl psn"
			}
		}`, body)
	})

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{"upstream failure", fmt.Errorf("find_profile: %w", apperrors.ErrUpstream), http.StatusBadGateway, "Upstream service error"},
		{"no session", apperrors.ErrInvalidCredentials, http.StatusServiceUnavailable, "Upstream session is not established"},
		{"unknown failure", apperrors.ErrInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serveUbi(t, &fakeGateway{err: tt.err}, fakeSession{}, "/api/ubi/profile?name=Beaulo")

			require.Equal(t, tt.expectedCode, code)
			assert.JSONEq(t, fmt.Sprintf(`{"error": "service_error", "message": %q}`, tt.expectedMsg), body)
		})
	}
}

func TestUbi_RankStats(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		g := &fakeGateway{stats: models.PlayerStats{ProfileID: testProfileID, MMR: 3000, Rank: 20, Region: "emea"}}

		code, body := serveUbi(t, g, fakeSession{}, "/api/ubi/stats?profile_id="+testProfileID+"&region=emea&platform=xbl")

		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		assert.Contains(t, body, `"mmr":3000`)
		assert.Contains(t, body, `"rank":20`)
		assert.Equal(t, []string{testProfileID, "emea", "xbl"}, g.lastArgs)
	})

	t.Run("missing profile in upstream answer", func(t *testing.T) {
		g := &fakeGateway{err: fmt.Errorf("%w: ranked stats missing", apperrors.ErrInternal)}

		code, _ := serveUbi(t, g, fakeSession{}, "/api/ubi/stats?profile_id="+testProfileID+"&region=emea")

		require.Equal(t, http.StatusInternalServerError, code)
	})

	t.Run("invalid region", func(t *testing.T) {
		code, body := serveUbi(t, &fakeGateway{}, fakeSession{}, "/api/ubi/stats?profile_id="+testProfileID+"&region=mars")

		require.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, `"region"`)
	})
}

func TestUbi_PopulationsStatistics(t *testing.T) {
	t.Run("results untouched", func(t *testing.T) {
		g := &fakeGateway{populations: models.PopulationsStatistics{testProfileID: {"generalpvp_kills:infinite": 10}}}

		code, body := serveUbi(t, g, fakeSession{}, "/api/ubi/populations?profile_id="+testProfileID+"&statistics=generalpvp_kills,generalpvp_death")

		require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
		assert.JSONEq(t, fmt.Sprintf(`{%q: {"generalpvp_kills:infinite": 10}}`, testProfileID), body)
		assert.Equal(t, []string{testProfileID, "uplay", "generalpvp_kills,generalpvp_death"}, g.lastArgs)
	})

	t.Run("invalid statistics", func(t *testing.T) {
		code, _ := serveUbi(t, &fakeGateway{}, fakeSession{}, "/api/ubi/populations?profile_id="+testProfileID+"&statistics=kills,,deaths")

		require.Equal(t, http.StatusBadRequest, code)
	})
}

func TestUbi_Progression(t *testing.T) {
	g := &fakeGateway{xp: []models.PlayerXPProfile{{XP: 1200, ProfileID: testProfileID, LootboxProbability: 230, Level: 187}}}

	code, body := serveUbi(t, g, fakeSession{}, "/api/ubi/progression?profile_id="+testProfileID+"&platform=psn")

	require.Equalf(t, http.StatusOK, code, "not expected code. Body: %s", body)
	assert.JSONEq(t, fmt.Sprintf(`[{"xp": 1200, "profile_id": %q, "lootbox_probability": 230, "level": 187}]`, testProfileID), body)
}

func TestUbi_Session(t *testing.T) {
	t.Run("established", func(t *testing.T) {
		expires := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
		s := fakeSession{
			credential: models.Credential{Email: "bot@example.com", Token: "ubi_v1 t=secret", ExpiresAt: expires, UpdatedAt: expires.Add(-time.Hour)},
			ok:         true,
			state:      ubi.StateValid,
		}

		code, body := serveUbi(t, &fakeGateway{}, s, "/api/ubi/session")

		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{
			"state": "valid",
			"email": "bot@example.com",
			"expires_at": "2099-01-01T00:00:00Z",
			"updated_at": "2098-12-31T23:00:00Z"
		}`, body)
		assert.NotContains(t, body, "secret", "token must never be exposed")
	})

	t.Run("not established", func(t *testing.T) {
		code, body := serveUbi(t, &fakeGateway{}, fakeSession{state: ubi.StateUninitialized}, "/api/ubi/session")

		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"state": "uninitialized"}`, body)
	})
}

func TestPing(t *testing.T) {
	code, body := serveUbi(t, &fakeGateway{}, fakeSession{}, "/")

	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"ping"`, body)

	code, _ = serveUbi(t, &fakeGateway{}, fakeSession{}, "/unknown")
	require.Equal(t, http.StatusNotFound, code)
}
