package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bagdasarian/pr-insight/internal/domain"
)

func (h *Handler) GetPRAnalysis(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDashboardFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	card, err := h.statsService.PRAnalysis(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPRCardToHTTP(card))
}

func (h *Handler) GetIssueAnalysis(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDashboardFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	card, err := h.statsService.IssueAnalysis(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainIssueCardToHTTP(card))
}

func (h *Handler) GetTimeMoneySaved(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDashboardFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	card, err := h.statsService.TimeMoneySaved(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainTimeMoneyToHTTP(card))
}

func (h *Handler) ListIssues(w http.ResponseWriter, r *http.Request) {
	filter, err := parseIssueFilter(r.URL.Query())
	if err != nil {
		h.handleError(w, err)
		return
	}

	page, err := h.statsService.ListIssues(r.Context(), filter)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainIssuePageToHTTP(page))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func parseDashboardFilter(query url.Values) (domain.DashboardFilter, error) {
	from, err := parseTimeParam(query, "from")
	if err != nil {
		return domain.DashboardFilter{}, err
	}
	to, err := parseTimeParam(query, "to")
	if err != nil {
		return domain.DashboardFilter{}, err
	}

	return domain.DashboardFilter{
		Owner:     query.Get("owner"),
		Repo:      query.Get("repo"),
		From:      from,
		To:        to,
		Breakdown: domain.Breakdown(query.Get("breakdown")),
	}, nil
}

func parseIssueFilter(query url.Values) (domain.IssueFilter, error) {
	from, err := parseTimeParam(query, "from")
	if err != nil {
		return domain.IssueFilter{}, err
	}
	to, err := parseTimeParam(query, "to")
	if err != nil {
		return domain.IssueFilter{}, err
	}
	page, err := parseIntParam(query, "page")
	if err != nil {
		return domain.IssueFilter{}, err
	}
	limit, err := parseIntParam(query, "limit")
	if err != nil {
		return domain.IssueFilter{}, err
	}
	pullRequestID, err := parseIntParam(query, "pullRequestId")
	if err != nil {
		return domain.IssueFilter{}, err
	}

	return domain.IssueFilter{
		Owner:         query.Get("owner"),
		Repo:          query.Get("repo"),
		From:          from,
		To:            to,
		PRUser:        query.Get("prUser"),
		PRState:       domain.PRState(query.Get("prState")),
		Severity:      domain.Severity(query.Get("severity")),
		PullRequestID: pullRequestID,
		Page:          page,
		Limit:         limit,
	}, nil
}

// parseTimeParam принимает RFC3339 или короткую дату YYYY-MM-DD.
func parseTimeParam(query url.Values, key string) (time.Time, error) {
	raw := query.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed, nil
	}
	return time.Time{}, domain.NewBadQueryError(fmt.Sprintf("invalid %s: %q", key, raw))
}

func parseIntParam(query url.Values, key string) (int, error) {
	raw := query.Get(key)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, domain.NewBadQueryError(fmt.Sprintf("invalid %s: %q", key, raw))
	}
	return parsed, nil
}
