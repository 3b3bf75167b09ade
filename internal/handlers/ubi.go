package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/r6tracker/internal/apperrors"
	"github.com/nkiryanov/r6tracker/internal/handlers/render"
	"github.com/nkiryanov/r6tracker/internal/logger"
	"github.com/nkiryanov/r6tracker/internal/models"
	"github.com/nkiryanov/r6tracker/internal/service/ubi"
)

type statsGateway interface {
	FindProfile(ctx context.Context, name string, platform string) ([]models.PlayerProfile, error)
	FindRankStats(ctx context.Context, profileID string, regionID string, platform string) (models.PlayerStats, error)
	FindPopulationsStatistics(ctx context.Context, profileID string, platform string, statistics string) (models.PopulationsStatistics, error)
	FindPlayerXPProfiles(ctx context.Context, profileID string, platform string) ([]models.PlayerXPProfile, error)
}

type sessionInfo interface {
	Current() (models.Credential, bool)
	State() ubi.State
}

// Platform query parameter is optional, PC is used by default
func platformOrDefault(platform string) string {
	if platform == "" {
		return ubi.PlatformPC
	}
	return platform
}

func handleFindProfile(gateway statsGateway, l logger.Logger) http.Handler {
	type query struct {
		Name     string `json:"name" validate:"required,max=64"`
		Platform string `json:"platform" validate:"omitempty,oneof=uplay xbl psn"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := query{
			Name:     r.URL.Query().Get("name"),
			Platform: r.URL.Query().Get("platform"),
		}
		if err := render.Validate(w, q); err != nil {
			return
		}
		platform := platformOrDefault(q.Platform)

		profiles, err := gateway.FindProfile(r.Context(), q.Name, platform)
		if err == nil && len(profiles) == 0 {
			err = apperrors.ErrNotFound
		}
		if err != nil {
			serviceError(w, l, err, fmt.Sprintf("User %q not found on platform %q", q.Name, platform))
			return
		}

		render.JSON(w, profiles)
	})
}

func handleRankStats(gateway statsGateway, l logger.Logger) http.Handler {
	type query struct {
		ProfileID string `json:"profile_id" validate:"required,uuid"`
		Region    string `json:"region" validate:"required,oneof=emea ncsa apac"`
		Platform  string `json:"platform" validate:"omitempty,oneof=uplay xbl psn"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := query{
			ProfileID: r.URL.Query().Get("profile_id"),
			Region:    r.URL.Query().Get("region"),
			Platform:  r.URL.Query().Get("platform"),
		}
		if err := render.Validate(w, q); err != nil {
			return
		}

		stats, err := gateway.FindRankStats(r.Context(), q.ProfileID, q.Region, platformOrDefault(q.Platform))
		if err != nil {
			serviceError(w, l, err, "Ranked stats not found")
			return
		}

		render.JSON(w, stats)
	})
}

func handlePopulationsStatistics(gateway statsGateway, l logger.Logger) http.Handler {
	type query struct {
		ProfileID  string `json:"profile_id" validate:"required,uuid"`
		Platform   string `json:"platform" validate:"omitempty,oneof=uplay xbl psn"`
		Statistics string `json:"statistics" validate:"required,statistics"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := query{
			ProfileID:  r.URL.Query().Get("profile_id"),
			Platform:   r.URL.Query().Get("platform"),
			Statistics: r.URL.Query().Get("statistics"),
		}
		if err := render.Validate(w, q); err != nil {
			return
		}

		results, err := gateway.FindPopulationsStatistics(r.Context(), q.ProfileID, platformOrDefault(q.Platform), q.Statistics)
		if err != nil {
			serviceError(w, l, err, "Statistics not found")
			return
		}

		render.JSON(w, results)
	})
}

func handleProgression(gateway statsGateway, l logger.Logger) http.Handler {
	type query struct {
		ProfileID string `json:"profile_id" validate:"required,uuid"`
		Platform  string `json:"platform" validate:"omitempty,oneof=uplay xbl psn"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := query{
			ProfileID: r.URL.Query().Get("profile_id"),
			Platform:  r.URL.Query().Get("platform"),
		}
		if err := render.Validate(w, q); err != nil {
			return
		}

		profiles, err := gateway.FindPlayerXPProfiles(r.Context(), q.ProfileID, platformOrDefault(q.Platform))
		if err != nil {
			serviceError(w, l, err, "Progression not found")
			return
		}

		render.JSON(w, profiles)
	})
}

// Session state without the token itself
func handleSession(session sessionInfo) http.Handler {
	type response struct {
		State     string     `json:"state"`
		Email     string     `json:"email,omitempty"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
		UpdatedAt *time.Time `json:"updated_at,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := response{State: session.State().String()}
		if c, ok := session.Current(); ok {
			resp.Email = c.Email
			resp.ExpiresAt = &c.ExpiresAt
			resp.UpdatedAt = &c.UpdatedAt
		}

		render.JSON(w, resp)
	})
}

func handlePing() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, "ping")
	})
}
