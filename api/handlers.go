package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ace-estimator/internal/history"
	"ace-estimator/internal/questionnaire"
	"ace-estimator/internal/rules"
	contracts "ace-estimator/pkg/api"
)

func (s *Server) handleLiveEstimate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var q questionnaire.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	// Live estimates accept partial questionnaires; missing data is reported
	// in the response, not as an error.
	s.jsonResponse(w, http.StatusOK, s.service.LiveEstimate(&q))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var q questionnaire.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	report, err := s.service.FullReport(r.Context(), &q)
	if err != nil {
		s.writeEstimationError(w, err)
		return
	}

	if s.auditLog != nil {
		if err := s.auditLog.Record(r.Context(), report); err != nil {
			s.log.Warn().Err(err).Str("project_id", report.ProjectID).Msg("audit record failed")
		}
	}

	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleQuickEstimate(w http.ResponseWriter, r *http.Request) {
	features, err := featuresFromQuery(r)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	estimate, err := s.service.QuickEstimate(features)
	if err != nil {
		s.writeEstimationError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, estimate)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	features, err := featuresFromQuery(r)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	s.jsonResponse(w, http.StatusOK, s.advisor.Insights(features))
}

func (s *Server) handleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)

	var features rules.ProjectFeatures
	if err := json.NewDecoder(r.Body).Decode(&features); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	s.jsonResponse(w, http.StatusOK, s.advisor.AssessRisks(features))
}

func (s *Server) handleSimilarProjects(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "historical project store not configured", "")
		return
	}

	q := r.URL.Query()
	flows, err := strconv.Atoi(q.Get("flows"))
	if err != nil || flows < 1 {
		s.jsonError(w, http.StatusBadRequest, "flows must be a positive integer", "flows")
		return
	}

	topK := 5
	if v := q.Get("top_k"); v != "" {
		topK, err = strconv.Atoi(v)
		if err != nil || topK < 1 {
			s.jsonError(w, http.StatusBadRequest, "top_k must be a positive integer", "top_k")
			return
		}
	}

	profile := historyProfileFromQuery(r, flows)
	matches, err := s.store.SimilarProjects(r.Context(), profile, topK)
	if err != nil {
		s.log.Error().Err(err).Msg("similar project retrieval failed")
		s.jsonError(w, http.StatusInternalServerError, "failed to retrieve similar projects", "")
		return
	}

	s.jsonResponse(w, http.StatusOK, matches)
}

func (s *Server) handleCollectionStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "historical project store not configured", "")
		return
	}

	stats, err := s.store.CollectionStats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("collection stats failed")
		s.jsonError(w, http.StatusInternalServerError, "failed to read collection stats", "")
		return
	}

	s.jsonResponse(w, http.StatusOK, contracts.CollectionStats{
		TotalProjects:         stats.TotalProjects,
		AvgVariancePercentage: stats.AvgVariancePercentage,
		ByInfrastructure:      stats.ByInfrastructure,
	})
}

// writeEstimationError maps estimation errors to HTTP statuses: validation
// failures are the client's fault, invariant violations are ours.
func (s *Server) writeEstimationError(w http.ResponseWriter, err error) {
	var verr *rules.ValidationError
	if errors.As(err, &verr) {
		s.jsonError(w, http.StatusBadRequest, verr.Error(), verr.Field)
		return
	}
	var ierr *rules.InvariantViolation
	if errors.As(err, &ierr) {
		s.log.Error().Err(err).Msg("estimation invariant violated")
		s.jsonError(w, http.StatusInternalServerError, "internal estimation error", "")
		return
	}
	s.jsonError(w, http.StatusBadRequest, err.Error(), "")
}

func featuresFromQuery(r *http.Request) (rules.ProjectFeatures, error) {
	q := r.URL.Query()

	intParam := func(name string, def int) (int, error) {
		v := q.Get(name)
		if v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, errors.New(name + " must be an integer")
		}
		return n, nil
	}
	boolParam := func(name string) bool {
		v, _ := strconv.ParseBool(q.Get(name))
		return v
	}

	flows, err := intParam("flows", 0)
	if err != nil {
		return rules.ProjectFeatures{}, err
	}
	envs, err := intParam("environments", 1)
	if err != nil {
		return rules.ProjectFeatures{}, err
	}
	pluginCount, err := intParam("custom_plugin_count", 0)
	if err != nil {
		return rules.ProjectFeatures{}, err
	}
	protocols, err := intParam("protocols", 0)
	if err != nil {
		return rules.ProjectFeatures{}, err
	}
	systems, err := intParam("external_systems", 0)
	if err != nil {
		return rules.ProjectFeatures{}, err
	}

	infra := q.Get("infrastructure")
	if infra == "" {
		infra = string(rules.InfraOnPremise)
	}
	setup := q.Get("setup_status")
	if setup == "" {
		setup = string(rules.SetupConfigured)
	}

	return rules.ProjectFeatures{
		FlowCount:                flows,
		EnvironmentCount:         envs,
		Infrastructure:           rules.Infrastructure(infra),
		HasMessageQueue:          boolParam("mq"),
		SetupStatus:              rules.SetupStatus(setup),
		SourceVersion:            q.Get("source_version"),
		HostPlatform:             q.Get("host_platform"),
		HasCustomPlugins:         boolParam("custom_plugins") || pluginCount > 0,
		CustomPluginCount:        pluginCount,
		IntegrationProtocolCount: protocols,
		ExternalSystemCount:      systems,
	}, nil
}

func historyProfileFromQuery(r *http.Request, flows int) (p history.Profile) {
	q := r.URL.Query()
	p.SourceVersion = q.Get("source_version")
	p.TargetVersion = q.Get("target_version")
	p.FlowCount = flows
	p.Infrastructure = q.Get("infrastructure")
	p.HasMQ, _ = strconv.ParseBool(q.Get("mq"))
	p.HasCustomPlugins, _ = strconv.ParseBool(q.Get("custom_plugins"))
	return p
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message, field string) {
	s.jsonResponse(w, status, contracts.ErrorResponse{Error: message, Field: field})
}
