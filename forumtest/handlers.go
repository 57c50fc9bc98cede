package forumtest

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/forum"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errUnknownUser = errors.New("forumtest: unknown user")

type (
	category = forum.Category
	reply    = forum.Reply
	report   = forum.Report
)

type thread struct {
	forum.Thread
	password string
}

type action struct {
	ID          string    `json:"id"`
	ReportID    string    `json:"report_id,omitempty"`
	ModeratorID string    `json:"moderator_id"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api/v1")
	authed := s.authenticate(false)
	optional := s.authenticate(true)
	staff := rolesAllowed("admin", "moderator")
	admin := rolesAllowed("admin")

	// -------- AUTH --------
	api.POST("/auth/login", s.login)
	api.POST("/auth/register", s.register)
	api.GET("/users/me", authed, s.me)

	// -------- CATEGORIES --------
	api.GET("/categories", s.listCategories)
	api.POST("/categories", authed, admin, s.createCategory)
	api.PUT("/categories/:id", authed, admin, s.updateCategory)
	api.DELETE("/categories/:id", authed, admin, s.deleteCategory)
	api.GET("/admin/categories", authed, admin, s.listAllCategories)

	// -------- THREADS --------
	api.GET("/threads", optional, s.listThreads)
	api.GET("/threads/:id", optional, s.getThread)
	api.POST("/threads", authed, s.createThread)
	api.PUT("/threads/:id", authed, s.updateThread)
	api.DELETE("/threads/:id", authed, s.deleteThread)
	api.GET("/threads/:id/replies", optional, s.listReplies)
	api.POST("/threads/:id/replies", authed, s.createReply)

	// -------- MODERATION --------
	api.POST("/reports", authed, s.createReport)
	api.GET("/moderation/reports", authed, staff, s.listReports)
	api.POST("/moderation/reports/:id/actions", authed, staff, s.processReport)
	api.GET("/moderation/actions", authed, staff, s.listActions)
	api.GET("/moderation/stats", authed, staff, s.stats)
}

func (s *Server) issue(c *gin.Context, u *User, status int) {
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		abort(c, http.StatusInternalServerError, "token issue failed", "INTERNAL")
		return
	}
	cp := *u
	c.JSON(status, authResponse{
		AccessToken:  tok,
		RefreshToken: uuid.NewString(),
		User:         &cp,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.config.AccessTTL.Seconds()),
	})
}

func (s *Server) login(c *gin.Context) {
	var req forum.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" {
		abort(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Username]
	s.mu.Unlock()
	if !ok || !verifyPassword(req.Password, u.passwordHash) {
		abort(c, http.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS")
		return
	}
	s.issue(c, u, http.StatusOK)
}

func (s *Server) register(c *gin.Context) {
	var req forum.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || len(req.Password) < 6 {
		abort(c, http.StatusBadRequest, "Username and a password of at least 6 characters are required", "VALIDATION_ERROR")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		abort(c, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Username]; exists {
		s.mu.Unlock()
		abort(c, http.StatusConflict, "Username already taken", "USERNAME_TAKEN")
		return
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Role:         "user",
		Status:       "active",
		CreatedAt:    time.Now().UTC(),
		passwordHash: hash,
	}
	s.users[req.Username] = u
	s.mu.Unlock()

	s.issue(c, u, http.StatusCreated)
}

func (s *Server) me(c *gin.Context) {
	id := c.GetString(ctxUserID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			c.JSON(http.StatusOK, u)
			return
		}
	}
	abort(c, http.StatusNotFound, "User not found", "NOT_FOUND")
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]category, 0, len(s.categories))
	for _, cat := range s.categories {
		if !cat.IsPrivate {
			out = append(out, cat)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listAllCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, append([]category{}, s.categories...))
}

func (s *Server) createCategory(c *gin.Context) {
	var req forum.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		abort(c, http.StatusBadRequest, "Category name is required", "VALIDATION_ERROR")
		return
	}
	now := time.Now().UTC()
	cat := category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        strings.ToLower(strings.ReplaceAll(req.Name, " ", "-")),
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	s.categories = append(s.categories, cat)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var req forum.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		cat := &s.categories[i]
		if cat.ID != c.Param("id") {
			continue
		}
		if req.Name != nil {
			cat.Name = *req.Name
		}
		if req.Description != nil {
			cat.Description = *req.Description
		}
		if req.IsLocked != nil {
			cat.IsLocked = *req.IsLocked
		}
		if req.IsPrivate != nil {
			cat.IsPrivate = *req.IsPrivate
		}
		cat.UpdatedAt = time.Now().UTC()
		c.JSON(http.StatusOK, *cat)
		return
	}
	abort(c, http.StatusNotFound, "Category not found", "NOT_FOUND")
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cat := range s.categories {
		if cat.ID == c.Param("id") {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			c.JSON(http.StatusOK, forum.DeleteResult{Success: true, Message: "Category deleted"})
			return
		}
	}
	abort(c, http.StatusNotFound, "Category not found", "NOT_FOUND")
}

func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func paginate(total, page, size int) (lo, hi int, p forum.Page) {
	lo = (page - 1) * size
	if lo > total {
		lo = total
	}
	hi = lo + size
	if hi > total {
		hi = total
	}
	return lo, hi, forum.Page{
		Total:      int64(total),
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
}

func (s *Server) listThreads(c *gin.Context) {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "page_size", 20)
	categoryID := c.Query("category_id")

	s.mu.Lock()
	matched := make([]forum.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		if categoryID != "" && t.CategoryID != categoryID {
			continue
		}
		matched = append(matched, t.Thread)
	}
	s.mu.Unlock()

	if c.Query("sort") == "oldest" {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	} else {
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	lo, hi, p := paginate(len(matched), page, size)
	c.JSON(http.StatusOK, forum.ThreadList{Threads: matched[lo:hi], Page: p})
}

// findThread returns the index of the thread named by the :id param. Caller holds s.mu.
func (s *Server) findThread(c *gin.Context) int {
	for i, t := range s.threads {
		if t.ID == c.Param("id") {
			return i
		}
	}
	return -1
}

func (s *Server) getThread(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findThread(c)
	if i < 0 {
		abort(c, http.StatusNotFound, "Thread not found", "NOT_FOUND")
		return
	}
	t := &s.threads[i]
	if t.password != "" && t.password != c.Query("password") && t.AuthorID != c.GetString(ctxUserID) {
		abort(c, http.StatusForbidden, "Password required", "THREAD_PASSWORD_REQUIRED")
		return
	}
	t.ViewCount++
	c.JSON(http.StatusOK, t.Thread)
}

func (s *Server) createThread(c *gin.Context) {
	var req forum.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.CategoryID == "" {
		abort(c, http.StatusBadRequest, "Title and category are required", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, cat := range s.categories {
		if cat.ID == req.CategoryID {
			known = true
			break
		}
	}
	if !known {
		abort(c, http.StatusNotFound, "Category not found", "NOT_FOUND")
		return
	}

	now := time.Now().UTC()
	privacy := req.PrivacyLevel
	if privacy == "" {
		privacy = "public"
	}
	t := thread{
		Thread: forum.Thread{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Content:      req.Content,
			CategoryID:   req.CategoryID,
			AuthorID:     c.GetString(ctxUserID),
			PrivacyLevel: privacy,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		password: req.Password,
	}
	s.threads = append(s.threads, t)
	c.JSON(http.StatusCreated, t.Thread)
}

func (s *Server) canEdit(c *gin.Context, authorID string) bool {
	if c.GetString(ctxUserID) == authorID {
		return true
	}
	role := c.GetString(ctxUserRole)
	return role == "admin" || role == "moderator"
}

func (s *Server) updateThread(c *gin.Context) {
	var req forum.UpdateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findThread(c)
	if i < 0 {
		abort(c, http.StatusNotFound, "Thread not found", "NOT_FOUND")
		return
	}
	t := &s.threads[i]
	if !s.canEdit(c, t.AuthorID) {
		abort(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Content != nil {
		t.Content = *req.Content
	}
	if req.PrivacyLevel != nil {
		t.PrivacyLevel = *req.PrivacyLevel
	}
	t.UpdatedAt = time.Now().UTC()
	c.JSON(http.StatusOK, t.Thread)
}

func (s *Server) deleteThread(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findThread(c)
	if i < 0 {
		abort(c, http.StatusNotFound, "Thread not found", "NOT_FOUND")
		return
	}
	if !s.canEdit(c, s.threads[i].AuthorID) {
		abort(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
		return
	}
	s.threads = append(s.threads[:i], s.threads[i+1:]...)
	c.JSON(http.StatusOK, forum.DeleteResult{Success: true, Message: "Thread deleted"})
}

func (s *Server) listReplies(c *gin.Context) {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "page_size", 20)

	s.mu.Lock()
	if s.findThread(c) < 0 {
		s.mu.Unlock()
		abort(c, http.StatusNotFound, "Thread not found", "NOT_FOUND")
		return
	}
	matched := make([]reply, 0)
	for _, r := range s.replies {
		if r.ThreadID == c.Param("id") {
			matched = append(matched, r)
		}
	}
	s.mu.Unlock()

	lo, hi, p := paginate(len(matched), page, size)
	c.JSON(http.StatusOK, forum.ReplyList{Replies: matched[lo:hi], Page: p})
}

func (s *Server) createReply(c *gin.Context) {
	var req forum.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		abort(c, http.StatusBadRequest, "Reply content is required", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findThread(c)
	if i < 0 {
		abort(c, http.StatusNotFound, "Thread not found", "NOT_FOUND")
		return
	}
	if s.threads[i].IsLocked {
		abort(c, http.StatusForbidden, "Thread is locked", "THREAD_LOCKED")
		return
	}
	now := time.Now().UTC()
	r := reply{
		ID:        uuid.NewString(),
		ThreadID:  s.threads[i].ID,
		Content:   req.Content,
		AuthorID:  c.GetString(ctxUserID),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.replies = append(s.replies, r)
	s.threads[i].ReplyCount++
	c.JSON(http.StatusCreated, r)
}

type createReportRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

func (s *Server) createReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContentID == "" || req.Reason == "" {
		abort(c, http.StatusBadRequest, "Content and reason are required", "VALIDATION_ERROR")
		return
	}
	r := report{
		ID:          uuid.NewString(),
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ReporterID:  c.GetString(ctxUserID),
		Reason:      req.Reason,
		Description: req.Description,
		Status:      "pending",
		Priority:    "medium",
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()
	c.JSON(http.StatusCreated, r)
}

// listReports reads pageSize, not page_size, matching the moderation endpoints.
func (s *Server) listReports(c *gin.Context) {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "pageSize", 20)
	status := c.Query("status")
	priority := c.Query("priority")

	s.mu.Lock()
	matched := make([]report, 0, len(s.reports))
	for _, r := range s.reports {
		if status != "" && r.Status != status {
			continue
		}
		if priority != "" && r.Priority != priority {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.Unlock()

	lo, hi, p := paginate(len(matched), page, size)
	c.JSON(http.StatusOK, forum.ReportList{Reports: matched[lo:hi], Page: p})
}

func (s *Server) processReport(c *gin.Context) {
	var req forum.ModerationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" {
		abort(c, http.StatusBadRequest, "Action is required", "VALIDATION_ERROR")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reports {
		if s.reports[i].ID != c.Param("id") {
			continue
		}
		s.reports[i].Status = "resolved"
		a := action{
			ID:          uuid.NewString(),
			ReportID:    s.reports[i].ID,
			ModeratorID: c.GetString(ctxUserID),
			Action:      req.Action,
			Reason:      req.Reason,
			CreatedAt:   time.Now().UTC(),
		}
		s.actions = append(s.actions, a)
		c.JSON(http.StatusOK, forum.ModerationActionResponse{
			ID:        a.ID,
			ReportID:  a.ReportID,
			Action:    a.Action,
			Reason:    a.Reason,
			CreatedAt: a.CreatedAt,
		})
		return
	}
	abort(c, http.StatusNotFound, "Report not found", "NOT_FOUND")
}

func (s *Server) listActions(c *gin.Context) {
	page := intQuery(c, "page", 1)
	size := intQuery(c, "pageSize", 20)
	kind := c.Query("action")

	s.mu.Lock()
	matched := make([]action, 0, len(s.actions))
	for _, a := range s.actions {
		if kind == "" || a.Action == kind {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	lo, hi, p := paginate(len(matched), page, size)
	c.JSON(http.StatusOK, gin.H{
		"actions":     matched[lo:hi],
		"total":       p.Total,
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total_pages": p.TotalPages,
	})
}

func (s *Server) stats(c *gin.Context) {
	moderatorID := c.Query("moderator_id")
	today := time.Now().UTC().Truncate(24 * time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()
	var st forum.ModerationStats
	for _, r := range s.reports {
		st.TotalReports++
		if r.Status == "pending" {
			st.PendingReports++
		} else {
			st.ResolvedReports++
		}
	}
	for _, a := range s.actions {
		if moderatorID != "" && a.ModeratorID != moderatorID {
			continue
		}
		if !a.CreatedAt.Before(today) {
			st.ActionsToday++
		}
		switch a.Action {
		case "ban_user":
			st.BannedUsers++
		case "remove_content":
			st.ContentRemoved++
		}
	}
	c.JSON(http.StatusOK, st)
}
