package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/nexora/opportunity-agent/internal/db"
	"github.com/nexora/opportunity-agent/internal/parsing"
	"github.com/nexora/opportunity-agent/internal/pipeline"
	"github.com/nexora/opportunity-agent/internal/scheduler"
	"github.com/nexora/opportunity-agent/internal/server/middleware"
	"github.com/nexora/opportunity-agent/internal/types"
)

// Store is the persistence surface the API handlers need. *db.DB
// satisfies it.
type Store interface {
	UserStore

	GetProfile(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	UpsertProfile(ctx context.Context, p *types.UserProfile) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*types.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req types.UpdatePreferencesRequest) (*types.UserPreferences, error)

	ListOpportunities(ctx context.Context, filters db.OpportunityFilters) ([]types.Opportunity, error)
	ListRecommendations(ctx context.Context, userID uuid.UUID, filters db.RecommendationFilters) ([]types.Recommendation, error)
	MarkViewed(ctx context.Context, userID, recommendationID uuid.UUID) error
	MarkApplied(ctx context.Context, userID, recommendationID uuid.UUID) error

	GetAnalytics(ctx context.Context, userID uuid.UUID) (*db.Analytics, error)
	CreateResumeUpload(ctx context.Context, userID uuid.UUID, filename, content string) (*db.ResumeUpload, error)
	ListResumeUploads(ctx context.Context, userID uuid.UUID) ([]db.ResumeUpload, error)

	LastRun(ctx context.Context, userID uuid.UUID) (*db.PipelineRun, error)
}

// Runner triggers an immediate pipeline run for one user.
// *pipeline.Pipeline satisfies it.
type Runner interface {
	RunForUser(ctx context.Context, userID uuid.UUID) (*pipeline.Result, error)
}

// handleGetProfile returns the authenticated user's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if profile == nil {
		s.errorResponse(w, http.StatusNotFound, "profile not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleUpdateProfile creates or replaces the authenticated user's profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile := profileFromRequest(userID, req)
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleGetPreferences returns the user's notification and matching
// preferences, falling back to defaults for new users.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prefs, err := s.store.GetPreferences(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, prefs)
}

// handleUpdatePreferences partially updates the user's preferences.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	prefs, err := s.store.UpdatePreferences(r.Context(), userID, req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, prefs)
}

type onboardingRequest struct {
	Profile     types.UpdateProfileRequest      `json:"profile" validate:"required"`
	Preferences *types.UpdatePreferencesRequest `json:"preferences"`
}

// handleOnboarding sets up profile and preferences in one call so new
// users are ready for their first pipeline run.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile := profileFromRequest(userID, req.Profile)
	if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	prefs, err := s.store.GetPreferences(r.Context(), userID)
	if err == nil && req.Preferences != nil {
		prefs, err = s.store.UpdatePreferences(r.Context(), userID, *req.Preferences)
	}
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"profile":     profile,
		"preferences": prefs,
	})
}

// handleListOpportunities lists stored opportunities with optional
// type/source/remote filters.
func (s *Server) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	filters := db.OpportunityFilters{
		Type:   types.OpportunityType(r.URL.Query().Get("type")),
		Source: r.URL.Query().Get("source"),
		Limit:  queryInt(r, "limit", 50),
	}
	if filters.Type != "" && !types.ValidOpportunityType(filters.Type) {
		s.errorResponse(w, http.StatusBadRequest, "invalid opportunity type")
		return
	}
	if remote := r.URL.Query().Get("remote"); remote != "" {
		v := remote == "true"
		filters.Remote = &v
	}

	opps, err := s.store.ListOpportunities(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}

// handleListRecommendations returns the user's recommendations segregated
// into best matches and other suggestions by the configured threshold.
func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	filters := db.RecommendationFilters{
		Type:  types.OpportunityType(r.URL.Query().Get("type")),
		Limit: queryInt(r, "limit", 100),
	}
	if filters.Type != "" && !types.ValidOpportunityType(filters.Type) {
		s.errorResponse(w, http.StatusBadRequest, "invalid opportunity type")
		return
	}

	recs, err := s.store.ListRecommendations(r.Context(), userID, filters)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	best := make([]types.Recommendation, 0)
	other := make([]types.Recommendation, 0)
	for _, rec := range recs {
		if rec.Score >= s.bestThreshold {
			best = append(best, rec)
		} else {
			other = append(other, rec)
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"best_matches":      best,
		"other_suggestions": other,
	})
}

// handleMarkViewed flags a recommendation as viewed.
func (s *Server) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	s.markRecommendation(w, r, s.store.MarkViewed)
}

// handleMarkApplied flags a recommendation as applied.
func (s *Server) handleMarkApplied(w http.ResponseWriter, r *http.Request) {
	s.markRecommendation(w, r, s.store.MarkApplied)
}

func (s *Server) markRecommendation(w http.ResponseWriter, r *http.Request, mark func(context.Context, uuid.UUID, uuid.UUID) error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	recID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid recommendation id")
		return
	}

	if err := mark(r.Context(), userID, recID); err != nil {
		status := HTTPStatus(err)
		if db.IsNotFound(err) {
			status = http.StatusNotFound
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalytics returns per-user recommendation statistics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analytics, err := s.store.GetAnalytics(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, analytics)
}

type resumeUploadRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Content  string `json:"content" validate:"required,max=100000"`
}

// handleUploadResume stores a resume and folds its text into the profile
// so the next matching run can use it.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req resumeUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	upload, err := s.store.CreateResumeUpload(r.Context(), userID, req.Filename, req.Content)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if profile, err := s.store.GetProfile(r.Context(), userID); err == nil && profile != nil {
		profile.ResumeText = req.Content
		if err := s.store.UpsertProfile(r.Context(), profile); err != nil {
			log.Printf("[server] failed to fold resume into profile for %s: %v", userID, err)
		}
	}

	s.jsonResponse(w, http.StatusCreated, upload)
}

// handleListResumes lists the user's resume uploads without content.
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	uploads, err := s.store.ListResumeUploads(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"resumes": uploads})
}

// handleSchedulerStatus reports scheduler state plus the user's last run.
func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var status scheduler.Status
	if s.scheduler != nil {
		status = s.scheduler.Status()
	}

	lastRun, err := s.store.LastRun(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"scheduler": status,
		"last_run":  lastRun,
	})
}

// handleRunNow triggers an immediate pipeline run for the authenticated
// user. The run happens in the background; the per-user in-flight guard
// rejects overlap with a scheduled run.
func (s *Server) handleRunNow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if s.runner == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "pipeline not available")
		return
	}

	go func() {
		if _, err := s.runner.RunForUser(context.Background(), userID); err != nil {
			log.Printf("[server] immediate run for user %s failed: %v", userID, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "run started"})
}

// profileFromRequest canonicalizes user-entered skill names so variants
// like "golang" and "Go" overlap with listing skills during matching.
func profileFromRequest(userID uuid.UUID, req types.UpdateProfileRequest) *types.UserProfile {
	return &types.UserProfile{
		UserID:             userID,
		Skills:             parsing.NormalizeSkills(req.Skills),
		Interests:          req.Interests,
		ExperienceLevel:    req.ExperienceLevel,
		PreferredLocations: req.PreferredLocations,
		PreferredJobTypes:  req.PreferredJobTypes,
		RemotePreference:   req.RemotePreference,
		ResumeText:         req.ResumeText,
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	return v
}
