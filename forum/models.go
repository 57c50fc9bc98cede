package forum

import (
	"encoding/json"
	"time"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug,omitempty"`
	Description string    `json:"description,omitempty"`
	IsLocked    bool      `json:"is_locked"`
	IsPrivate   bool      `json:"is_private"`
	ThreadCount int64     `json:"thread_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPrivate   bool   `json:"is_private,omitempty"`
	Password    string `json:"password,omitempty"`
}

// UpdateCategoryRequest sends only the fields that are set.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsLocked    *bool   `json:"is_locked,omitempty"`
	IsPrivate   *bool   `json:"is_private,omitempty"`
	Password    *string `json:"password,omitempty"`
}

type Thread struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CategoryID     string    `json:"category_id"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	PrivacyLevel   string    `json:"privacy_level,omitempty"`
	IsPinned       bool      `json:"is_pinned"`
	IsLocked       bool      `json:"is_locked"`
	ReplyCount     int64     `json:"reply_count"`
	ViewCount      int64     `json:"view_count"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateThreadRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	CategoryID   string `json:"category_id"`
	PrivacyLevel string `json:"privacy_level,omitempty"`
	Password     string `json:"password,omitempty"`
}

type UpdateThreadRequest struct {
	Title        *string `json:"title,omitempty"`
	Content      *string `json:"content,omitempty"`
	PrivacyLevel *string `json:"privacy_level,omitempty"`
}

type Page struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func defaultPage(requestedSize int) Page {
	return Page{Page: 1, PageSize: pageSizeOr(requestedSize)}
}

type ThreadList struct {
	Threads []Thread `json:"threads"`
	Page
}

type ThreadListParams struct {
	CategoryID string
	Page       int
	PageSize   int
	Sort       string
}

type Reply struct {
	ID             string    `json:"id"`
	ThreadID       string    `json:"thread_id"`
	Content        string    `json:"content"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Status         string    `json:"status,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateReplyRequest struct {
	Content string `json:"content"`
}

type ReplyList struct {
	Replies []Reply `json:"replies"`
	Page
}

type ReplyListParams struct {
	Page     int
	PageSize int
	Sort     string
}

type Report struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	ContentID   string    `json:"content_id"`
	ReporterID  string    `json:"reporter_id"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReportList struct {
	Reports []Report `json:"reports"`
	Page
}

type ReportParams struct {
	Page     int
	PageSize int
	Status   string
	Priority string
}

type ModerationActionRequest struct {
	Action        string `json:"action"`
	Reason        string `json:"reason"`
	InternalNotes string `json:"internal_notes,omitempty"`
	BanDuration   *int   `json:"ban_duration_days,omitempty"`
}

type ModerationActionResponse struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"report_id,omitempty"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type ModerationStats struct {
	TotalReports       int64   `json:"total_reports"`
	PendingReports     int64   `json:"pending_reports"`
	ResolvedReports    int64   `json:"resolved_reports"`
	ActionsToday       int64   `json:"actions_today"`
	BannedUsers        int64   `json:"banned_users"`
	ContentRemoved     int64   `json:"content_removed"`
	AverageResolutionH float64 `json:"average_resolution_hours,omitempty"`
}

type ActionsParams struct {
	Action   string
	Page     int
	PageSize int
}

// ActionList is returned as-is; the backend does not document the action record shape.
type ActionList struct {
	Actions []json.RawMessage `json:"actions"`
	Page
}

type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
