package forum

import (
	"context"
	"encoding/json"
	"net/http"
)

type CategoryService struct {
	base
}

// List returns the public categories. It never fails; any error yields an empty slice.
func (s *CategoryService) List(ctx context.Context) []Category {
	var raw json.RawMessage
	if err := s.r.Do(ctx, http.MethodGet, "/categories", nil, nil, &raw); err != nil {
		s.swallowed("categories.list", err)
		return []Category{}
	}
	if !isArray(raw) {
		s.malformed("categories.list", raw)
		return []Category{}
	}

	var out []Category
	if err := json.Unmarshal(raw, &out); err != nil {
		s.malformed("categories.list", raw)
		return []Category{}
	}
	return out
}

// ListAdmin returns every category including locked and private ones. Admin only.
func (s *CategoryService) ListAdmin(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.r.Do(ctx, http.MethodGet, "/admin/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	var out Category
	if err := s.r.Do(ctx, http.MethodPost, "/categories", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*Category, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	var out Category
	if err := s.r.Do(ctx, http.MethodPut, "/categories/"+pid, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoryService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	pid, err := pathID(id)
	if err != nil {
		return nil, err
	}
	var out DeleteResult
	if err := s.r.Do(ctx, http.MethodDelete, "/categories/"+pid, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
