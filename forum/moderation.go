package forum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

type ModerationService struct {
	base
}

func pagingQuery(page, pageSize int) url.Values {
	if page <= 0 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSizeOr(pageSize)))
	return q
}

// Reports returns one page of the moderation queue. It never fails; see [ThreadService.List].
func (s *ModerationService) Reports(ctx context.Context, p ReportParams) ReportList {
	q := pagingQuery(p.Page, p.PageSize)
	setNonEmpty(q, "status", p.Status)
	setNonEmpty(q, "priority", p.Priority)

	empty := ReportList{Reports: []Report{}, Page: defaultPage(p.PageSize)}

	var raw json.RawMessage
	if err := s.r.Do(ctx, http.MethodGet, "/moderation/reports", q, nil, &raw); err != nil {
		s.swallowed("moderation.reports", err)
		return empty
	}
	if !hasArrayField(raw, "reports") {
		s.malformed("moderation.reports", raw)
		return empty
	}

	var out ReportList
	if err := json.Unmarshal(raw, &out); err != nil {
		s.malformed("moderation.reports", raw)
		return empty
	}
	return out
}

func (s *ModerationService) ProcessReport(ctx context.Context, reportID string, req ModerationActionRequest) (*ModerationActionResponse, error) {
	pid, err := pathID(reportID)
	if err != nil {
		return nil, err
	}
	var out ModerationActionResponse
	if err := s.r.Do(ctx, http.MethodPost, "/moderation/reports/"+pid+"/actions", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns moderation statistics, optionally for one moderator.
func (s *ModerationService) Stats(ctx context.Context, moderatorID string) (*ModerationStats, error) {
	q := url.Values{}
	setNonEmpty(q, "moderator_id", moderatorID)

	var out ModerationStats
	if err := s.r.Do(ctx, http.MethodGet, "/moderation/stats", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ModerationService) Actions(ctx context.Context, p ActionsParams) (*ActionList, error) {
	q := pagingQuery(p.Page, p.PageSize)
	setNonEmpty(q, "action", p.Action)

	var out ActionList
	if err := s.r.Do(ctx, http.MethodGet, "/moderation/actions", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
