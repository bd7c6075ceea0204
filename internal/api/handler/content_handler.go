package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/content"
)

// ContentHandler handles HTTP requests for blogs, the newsletter, and
// producer applications
type ContentHandler struct {
	contentService service.ContentService
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(logger *slog.Logger, contentService service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// CreateBlog submits a blog post for moderation
func (h *ContentHandler) CreateBlog(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	blog, err := h.contentService.CreateBlog(c.Request.Context(), accountID, req.Title, req.Body, req.CoverURL)
	if err != nil {
		if errors.Is(err, content.ErrEmptyTitle) || errors.Is(err, content.ErrEmptyBody) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create blog", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, blog)
}

// GetBlog retrieves a blog post
func (h *ContentHandler) GetBlog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid blog ID")
		return
	}

	blog, err := h.contentService.GetBlog(c.Request.Context(), id)
	if err != nil {
		var notFound content.ErrBlogNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Blog not found")
			return
		}
		h.logger.Error("Failed to get blog", "blog_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, blog)
}

// ListBlogs returns blog posts. Public callers see approved posts; admins can
// filter by any moderation state.
func (h *ContentHandler) ListBlogs(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	status := content.ModerationApproved
	if role, ok := middleware.GetAccountRole(c); ok && role == account.RoleAdmin {
		requested := content.ModerationStatus(c.DefaultQuery("status", string(content.ModerationApproved)))
		switch requested {
		case content.ModerationPending, content.ModerationApproved, content.ModerationRejected:
			status = requested
		default:
			RespondBadRequest(c, "Invalid status filter")
			return
		}
	}

	blogs, err := h.contentService.ListBlogs(c.Request.Context(), status, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list blogs", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, blogs)
}

// ModerateBlog records an admin decision on a blog post
func (h *ContentHandler) ModerateBlog(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid blog ID")
		return
	}

	var req ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.contentService.ModerateBlog(c.Request.Context(), id, req.Decision == "approve", req.Remark); err != nil {
		var notFound content.ErrBlogNotFound
		switch {
		case errors.As(err, &notFound):
			RespondNotFound(c, "Blog not found")
		case errors.Is(err, service.ErrDecisionNotPending):
			RespondConflict(c, "Blog has already been moderated")
		default:
			h.logger.Error("Failed to moderate blog", "blog_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}

// Subscribe adds a newsletter subscription
func (h *ContentHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.contentService.Subscribe(c.Request.Context(), req.Email); err != nil {
		var already content.ErrAlreadySubscribed
		if errors.As(err, &already) {
			RespondConflict(c, "Email already subscribed")
			return
		}
		h.logger.Error("Failed to subscribe", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, gin.H{"message": "Subscribed"})
}

// Unsubscribe removes a newsletter subscription
func (h *ContentHandler) Unsubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.contentService.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		var notFound content.ErrSubscriberNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Email is not subscribed")
			return
		}
		h.logger.Error("Failed to unsubscribe", "error", err)
		RespondInternalError(c)
		return
	}

	RespondNoContent(c)
}

// Apply submits a producer application for the authenticated account
func (h *ContentHandler) Apply(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req ApplyProducerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	application, err := h.contentService.ApplyAsProducer(c.Request.Context(), accountID, req.FarmName, req.Description, req.Location)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyApplied) {
			RespondConflict(c, "An application is already pending for this account")
			return
		}
		h.logger.Error("Failed to submit producer application", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, application)
}

// ListApplications returns applications in the given state for admin review
func (h *ContentHandler) ListApplications(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	status := content.ModerationStatus(c.DefaultQuery("status", string(content.ModerationPending)))
	switch status {
	case content.ModerationPending, content.ModerationApproved, content.ModerationRejected:
	default:
		RespondBadRequest(c, "Invalid status filter")
		return
	}

	applications, err := h.contentService.ListApplications(c.Request.Context(), status, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list producer applications", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, applications)
}

// DecideApplication resolves a pending producer application
func (h *ContentHandler) DecideApplication(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid application ID")
		return
	}

	var req ModerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	application, err := h.contentService.DecideApplication(c.Request.Context(), id, req.Decision == "approve", req.Remark)
	if err != nil {
		var notFound content.ErrApplicationNotFound
		switch {
		case errors.As(err, &notFound):
			RespondNotFound(c, "Application not found")
		case errors.Is(err, service.ErrDecisionNotPending):
			RespondConflict(c, "Application has already been decided")
		default:
			h.logger.Error("Failed to decide producer application", "application_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, application)
}
