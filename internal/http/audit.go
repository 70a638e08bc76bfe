package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditdb "github.com/mrlokans/classlib/internal/database/audit"
	"github.com/mrlokans/classlib/internal/entities"
)

type AuditController struct {
	events AuditReader
}

func NewAuditController(events AuditReader) *AuditController {
	return &AuditController{events: events}
}

// AuditLogPage renders the audit log UI
// GET /audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	filter, page, ok := parseAuditFilter(c)
	if !ok {
		return
	}

	events, total, err := ac.events.ListEvents(filter)
	if err != nil {
		respondPageError(c, err, "list audit events")
		return
	}

	render(c, http.StatusOK, "audit", "Audit log", gin.H{
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages(total, filter.Limit),
		"TotalEvents": total,
		"EventType":   string(filter.EventType),
		"EventTypes":  getEventTypes(),
	}, paginate(events, total, filter))
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit?page=&limit=&type=&user_id=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	filter, _, ok := parseAuditFilter(c)
	if !ok {
		return
	}

	events, total, err := ac.events.ListEvents(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load audit events")
		return
	}

	c.JSON(http.StatusOK, paginate(events, total, filter))
}

func parseAuditFilter(c *gin.Context) (auditdb.Filter, int, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	filter := auditdb.Filter{
		EventType: entities.AuditEventType(c.Query("type")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid user_id")
			return filter, page, false
		}
		filter.UserID = uint(id)
	}
	return filter, page, true
}

func paginate(events []entities.AuditEvent, total int64, filter auditdb.Filter) PaginatedResponse {
	return PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
		HasMore:    int64(filter.Offset+len(events)) < total,
		TotalPages: totalPages(total, filter.Limit),
	}
}

func totalPages(total int64, limit int) int {
	pages := (int(total) + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

func getEventTypes() []EventTypeOption {
	return []EventTypeOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditEventBorrow), Label: "Borrow"},
		{Value: string(entities.AuditEventReturn), Label: "Return"},
		{Value: string(entities.AuditEventOverdue), Label: "Overdue"},
		{Value: string(entities.AuditEventClass), Label: "Classes"},
		{Value: string(entities.AuditEventProfile), Label: "Profile"},
		{Value: string(entities.AuditEventAuth), Label: "Authentication"},
		{Value: string(entities.AuditEventSeed), Label: "Seed"},
	}
}

type EventTypeOption struct {
	Value string
	Label string
}
