package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
	"github.com/grocerysushi/stumbleupon-clone/internal/services"
)

// Services groups the business services the handlers depend on.
type Services struct {
	Discovery *services.DiscoveryService
	Feedback  *services.FeedbackService
	Links     *services.LinkService
	Topics    *services.TopicService
}

// SetupRoutes configures all Gin API routes and injects necessary dependencies.
// limiter may be nil to disable rate limiting.
func SetupRoutes(router *gin.Engine, svc Services, limiter *RateLimiter, log logrus.FieldLogger) {
	h := &handler{svc: svc, log: log.WithField("component", "api")}

	router.GET("/health", HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(MetricsMiddleware())
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	{
		api.GET("/stumble", h.stumble)
		api.POST("/feedback", h.feedback)

		api.POST("/links", h.submitLink)
		api.GET("/links", h.listLinks)
		api.GET("/links/:id/stats", h.linkStats)
		api.PATCH("/links/:id/status", h.moderateLink)

		api.GET("/topics", h.listTopics)
		api.POST("/topics", h.createTopic)
	}
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type handler struct {
	svc Services
	log logrus.FieldLogger
}

// GET /api/v1/stumble?userId=&topics=a,b
func (h *handler) stumble(c *gin.Context) {
	req := services.SelectRequest{ViewerID: c.Query("userId")}
	if raw := c.Query("topics"); raw != "" {
		req.Topics = strings.Split(raw, ",")
	}

	link, err := h.svc.Discovery.Select(c.Request.Context(), req)
	if err != nil {
		if customerrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No links available"})
			return
		}
		h.fail(c, err, "stumble")
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// POST /api/v1/feedback
func (h *handler) feedback(c *gin.Context) {
	var req services.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if _, err := h.svc.Feedback.Record(c.Request.Context(), req); err != nil {
		if customerrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.fail(c, err, "feedback")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/v1/links
func (h *handler) submitLink(c *gin.Context) {
	var req services.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	link, err := h.svc.Links.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "submit link")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"linkId":  link.ID,
		"status":  "pending_approval",
	})
}

// GET /api/v1/links?status=&userId=
func (h *handler) listLinks(c *gin.Context) {
	status := models.LinkStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	links, err := h.svc.Links.List(c.Request.Context(), status, c.Query("userId"))
	if err != nil {
		h.fail(c, err, "list links")
		return
	}
	if links == nil {
		links = []models.Link{}
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// GET /api/v1/links/:id/stats
func (h *handler) linkStats(c *gin.Context) {
	stats, err := h.svc.Links.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		if customerrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.fail(c, err, "link stats")
		return
	}
	events := make(map[string]int64, len(stats.Events))
	for action, n := range stats.Events {
		events[string(action)] = n
	}
	c.JSON(http.StatusOK, gin.H{
		"link":   stats.Link,
		"events": events,
	})
}

type moderateBody struct {
	Status string `json:"status"`
}

// PATCH /api/v1/links/:id/status
func (h *handler) moderateLink(c *gin.Context) {
	var body moderateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	link, err := h.svc.Links.Moderate(c.Request.Context(), services.ModerateRequest{
		LinkID: c.Param("id"),
		Status: models.LinkStatus(body.Status),
	})
	if err != nil {
		if customerrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
			return
		}
		h.fail(c, err, "moderate link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"link": link})
}

// GET /api/v1/topics
func (h *handler) listTopics(c *gin.Context) {
	topics, err := h.svc.Topics.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list topics")
		return
	}
	if topics == nil {
		topics = []models.Topic{}
	}
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// POST /api/v1/topics
func (h *handler) createTopic(c *gin.Context) {
	var req services.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	topic, err := h.svc.Topics.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "create topic")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"topic": topic})
}

// fail maps err to a status code. Internal details only go to the log.
func (h *handler) fail(c *gin.Context, err error, op string) {
	var verr *customerrors.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case customerrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, customerrors.ErrLinkAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Link already exists"})
	case errors.Is(err, customerrors.ErrTopicAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Topic already exists"})
	default:
		h.log.WithError(err).WithField("operation", op).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
