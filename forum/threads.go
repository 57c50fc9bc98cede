package forum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type ThreadService struct {
	base
}

// List returns one page of threads. It never fails: on any error or a body without a
// "threads" array it returns an empty first page sized as requested (20 by default).
func (s *ThreadService) List(ctx context.Context, p ThreadListParams) ThreadList {
	q := url.Values{}
	setNonEmpty(q, "category_id", p.CategoryID)
	setPositive(q, "page", p.Page)
	setPositive(q, "page_size", p.PageSize)
	setNonEmpty(q, "sort", p.Sort)

	empty := ThreadList{Threads: []Thread{}, Page: defaultPage(p.PageSize)}

	var raw json.RawMessage
	if err := s.r.Do(ctx, http.MethodGet, "/threads", q, nil, &raw); err != nil {
		s.swallowed("threads.list", err)
		return empty
	}
	if !hasArrayField(raw, "threads") {
		s.malformed("threads.list", raw)
		return empty
	}

	var out ThreadList
	if err := json.Unmarshal(raw, &out); err != nil {
		s.malformed("threads.list", raw)
		return empty
	}
	return out
}

// Get fetches one thread. password unlocks private threads and is sent only when non-empty.
func (s *ThreadService) Get(ctx context.Context, id, password string) (*Thread, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	setNonEmpty(q, "password", password)

	var out Thread
	if err := s.r.Do(ctx, http.MethodGet, "/threads/"+pid, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ThreadService) Create(ctx context.Context, req CreateThreadRequest) (*Thread, error) {
	var out Thread
	if err := s.r.Do(ctx, http.MethodPost, "/threads", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ThreadService) Update(ctx context.Context, id string, req UpdateThreadRequest) (*Thread, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	var out Thread
	if err := s.r.Do(ctx, http.MethodPut, "/threads/"+pid, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ThreadService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	var out DeleteResult
	if err := s.r.Do(ctx, http.MethodDelete, "/threads/"+pid, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ThreadService) CreateReply(ctx context.Context, threadID string, req CreateReplyRequest) (*Reply, error) {
	pid, err := pathID(threadID)
	if err != nil {
		return nil, err
	}
	var out Reply
	if err := s.r.Do(ctx, http.MethodPost, "/threads/"+pid+"/replies", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ThreadService) ListReplies(ctx context.Context, threadID string, p ReplyListParams) (*ReplyList, error) {
	pid, err := pathID(threadID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	setPositive(q, "page", p.Page)
	setPositive(q, "page_size", p.PageSize)
	setNonEmpty(q, "sort", p.Sort)

	var out ReplyList
	if err := s.r.Do(ctx, http.MethodGet, "/threads/"+pid+"/replies", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
