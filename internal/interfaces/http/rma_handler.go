package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/rma-api/internal/application/analytics"
	"github.com/jhoicas/rma-api/internal/application/dto"
	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

// SlipGenerator genera la constancia PDF de una devolución.
type SlipGenerator interface {
	GenerateSlip(ctx context.Context, req *entity.RMARequest, items []*entity.RMAItem) ([]byte, error)
}

// RMAHandler maneja las peticiones HTTP del flujo de devoluciones (protegido).
type RMAHandler struct {
	workflow *rma.WorkflowUseCase
	stats    *analytics.RMAStatsUseCase
	slips    SlipGenerator
}

// NewRMAHandler construye el handler.
func NewRMAHandler(workflow *rma.WorkflowUseCase, stats *analytics.RMAStatsUseCase, slips SlipGenerator) *RMAHandler {
	return &RMAHandler{workflow: workflow, stats: stats, slips: slips}
}

// Create godoc
// @Summary      Crear solicitud de devolución
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRMARequest  true  "Solicitud con sus ítems"
// @Success      201   {object}  dto.CreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/rmas [post]
func (h *RMAHandler) Create(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.CreateRMARequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id, err := h.workflow.Create(c.UserContext(), rma.FromCreateRequest(in, actor))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: id})
}

// List godoc
// @Summary      Listar devoluciones
// @Tags         rmas
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "PENDING, APPROVED, REJECTED, RECEIVED, REFUNDED"
// @Param        kind         query  string  false  "CUSTOMER_RETURN o VENDOR_RETURN"
// @Param        customer_id  query  string  false  "Cliente"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.RMAListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/rmas [get]
func (h *RMAHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit y offset deben ser numéricos"})
	}
	page.Normalize()
	filter := repository.RMAFilter{
		Status:     entity.RMAStatus(c.Query("status")),
		Kind:       entity.RMAKind(c.Query("kind")),
		CustomerID: c.Query("customer_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	list, total, err := h.workflow.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.RMAListResponse{
		Items: make([]dto.RMAResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, r := range list {
		out.Items = append(out.Items, rma.ToRMAResponse(r))
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de devoluciones del período
// @Description  Sin fechas usa el mes en curso. Formato YYYY-MM-DD; la fecha final es inclusiva.
// @Tags         rmas
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Fecha inicial"
// @Param        to    query  string  false  "Fecha final"
// @Success      200  {object}  dto.RMAStatsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/rmas/stats [get]
func (h *RMAHandler) Stats(c *fiber.Ctx) error {
	out, err := h.stats.GetStats(c.UserContext(), c.Query("from"), c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de una devolución con ítems e historial
// @Tags         rmas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id} [get]
func (h *RMAHandler) Get(c *fiber.Ctx) error {
	detail, err := h.workflow.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rma.ToDetailResponse(detail))
}

// Approve godoc
// @Summary      Aprobar devolución (PENDING → APPROVED)
// @Tags         rmas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/approve [post]
func (h *RMAHandler) Approve(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	id := c.Params("id")
	if err := h.workflow.Approve(c.UserContext(), id, actor); err != nil {
		return writeError(c, err)
	}
	return h.respondDetail(c, id)
}

// Reject godoc
// @Summary      Rechazar devolución (PENDING → REJECTED)
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la devolución"
// @Param        body  body  dto.RejectRMARequest  true  "Motivo"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/reject [post]
func (h *RMAHandler) Reject(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.RejectRMARequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id := c.Params("id")
	if err := h.workflow.Reject(c.UserContext(), id, in.Reason, actor); err != nil {
		return writeError(c, err)
	}
	return h.respondDetail(c, id)
}

// Receive godoc
// @Summary      Registrar recepción e inspección (APPROVED → RECEIVED)
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la devolución"
// @Param        body  body  dto.ReceiveRMARequest  true  "Condición por ítem"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/receive [post]
func (h *RMAHandler) Receive(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.ReceiveRMARequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	conditions := make(map[string]entity.ItemCondition, len(in.ItemConditions))
	for itemID, cond := range in.ItemConditions {
		conditions[itemID] = entity.ItemCondition(cond)
	}
	id := c.Params("id")
	if err := h.workflow.Receive(c.UserContext(), id, conditions, in.InspectionNotes, actor); err != nil {
		return writeError(c, err)
	}
	return h.respondDetail(c, id)
}

// Refund godoc
// @Summary      Procesar reembolso y reponer inventario (RECEIVED → REFUNDED)
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true   "ID de la devolución"
// @Param        body  body  dto.RefundRMARequest  false  "Monto ajustado"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/refund [post]
func (h *RMAHandler) Refund(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.RefundRMARequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	id := c.Params("id")
	if err := h.workflow.ProcessRefund(c.UserContext(), id, in.RefundAmount, actor); err != nil {
		return writeError(c, err)
	}
	return h.respondDetail(c, id)
}

// SetItemDisposition godoc
// @Summary      Decidir el destino de un ítem pendiente
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                     true  "ID de la devolución"
// @Param        itemId  path  string                     true  "ID del ítem"
// @Param        body    body  dto.SetDispositionRequest  true  "RESTOCK o VENDOR_RETURN"
// @Success      200  {object}  dto.RMADetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/items/{itemId}/disposition [put]
func (h *RMAHandler) SetItemDisposition(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.SetDispositionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id := c.Params("id")
	err := h.workflow.SetItemDisposition(c.UserContext(), id, c.Params("itemId"), entity.Disposition(in.Disposition), actor)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondDetail(c, id)
}

// CreateVendorRMA godoc
// @Summary      Generar devolución a proveedor desde una devolución de cliente
// @Tags         rmas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la devolución de cliente"
// @Param        body  body  dto.CreateVendorRMARequest  true  "Proveedor e ítems"
// @Success      201  {object}  dto.CreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/vendor-rma [post]
func (h *RMAHandler) CreateVendorRMA(c *fiber.Ctx) error {
	actor, ok := requireActor(c)
	if !ok {
		return nil
	}
	var in dto.CreateVendorRMARequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	id, err := h.workflow.CreateVendorRMA(c.UserContext(), c.Params("id"), in.VendorID, in.ItemIDs, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreatedResponse{ID: id})
}

// Slip godoc
// @Summary      Constancia PDF de autorización de devolución
// @Tags         rmas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rmas/{id}/slip [get]
func (h *RMAHandler) Slip(c *fiber.Ctx) error {
	detail, err := h.workflow.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	pdfBytes, err := h.slips.GenerateSlip(c.UserContext(), detail.Request, detail.Items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_ERROR", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+detail.Request.ReferenceCode+`.pdf"`)
	return c.Send(pdfBytes)
}

func (h *RMAHandler) respondDetail(c *fiber.Ctx, id string) error {
	detail, err := h.workflow.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rma.ToDetailResponse(detail))
}

// requireActor escribe 401 si el token no trae usuario.
func requireActor(c *fiber.Ctx) (string, bool) {
	actor := GetUserID(c)
	if actor == "" {
		_ = c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
		return "", false
	}
	return actor, true
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// writeError traduce los errores de dominio a status HTTP.
func writeError(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = fiber.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrGenerationExhausted):
		status, code = fiber.StatusServiceUnavailable, "GENERATION_EXHAUSTED"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrStorage):
		code = "STORAGE"
	}
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		// no exponer detalles del driver
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
