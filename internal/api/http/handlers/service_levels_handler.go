package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// ServiceLevelsHandler exposes service-level definitions and the deadline
// preview.
type ServiceLevelsHandler struct {
	levels repository.ServiceLevelRepository
	sla    *service.SLAService
}

// NewServiceLevelsHandler constructs handler.
func NewServiceLevelsHandler(levels repository.ServiceLevelRepository, slaService *service.SLAService) *ServiceLevelsHandler {
	return &ServiceLevelsHandler{levels: levels, sla: slaService}
}

// ListServiceLevels GET /service-levels.
func (h *ServiceLevelsHandler) ListServiceLevels(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	levels, err := h.levels.List(c.UserContext(), pageSize, (page-1)*pageSize)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.ServiceLevelResponse, 0, len(levels))
	for i := range levels {
		items = append(items, serviceLevelResponse(&levels[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetServiceLevel GET /service-levels/:id.
func (h *ServiceLevelsHandler) GetServiceLevel(c *fiber.Ctx) error {
	level, err := h.levels.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": serviceLevelResponse(level)})
}

// PreviewDeadlines POST /service-levels/:id/preview.
func (h *ServiceLevelsHandler) PreviewDeadlines(c *fiber.Ctx) error {
	var req dto.PreviewDeadlinesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Priority == "" {
		return apperrors.NewValidationError("priority required", nil)
	}
	start := req.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	responseBy, resolutionBy, err := h.sla.PreviewDeadlines(c.UserContext(), c.Params("id"), req.Priority, start)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PreviewDeadlinesResponse{
		ResponseBy:   responseBy,
		ResolutionBy: resolutionBy,
	}})
}

func serviceLevelResponse(level *domain.ServiceLevel) dto.ServiceLevelResponse {
	priorities := make([]dto.ServiceLevelPriorityResponse, 0, len(level.Priorities))
	for _, row := range level.Priorities {
		priorities = append(priorities, dto.ServiceLevelPriorityResponse{
			Priority:            row.Priority,
			ResponseAllotment:   row.ResponseAllotment,
			ResponseUnit:        row.ResponseUnit,
			ResolutionAllotment: row.ResolutionAllotment,
			ResolutionUnit:      row.ResolutionUnit,
		})
	}
	windows := make([]dto.SupportWindowResponse, 0, len(level.Windows))
	for _, w := range level.Windows {
		windows = append(windows, dto.SupportWindowResponse{
			Weekday: w.Weekday.String(),
			Start:   formatOffset(w.Start),
			End:     formatOffset(w.End),
		})
	}
	return dto.ServiceLevelResponse{
		ID:            level.ID,
		Name:          level.Name,
		CustomerID:    level.CustomerID,
		HolidayListID: level.HolidayListID,
		Active:        level.Active,
		Priorities:    priorities,
		Windows:       windows,
		CreatedAt:     level.CreatedAt,
		UpdatedAt:     level.UpdatedAt,
	}
}

func formatOffset(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
