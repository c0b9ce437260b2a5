package controller

import (
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/serverutils"
	"ai-organizer-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IProposalController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	BulkTransition(ctx *fiber.Ctx) error
	PatchOntology(ctx *fiber.Ctx) error
}

type proposalController struct {
	proposalService service.IProposalService
}

func NewProposalController(proposalService service.IProposalService) IProposalController {
	return &proposalController{
		proposalService: proposalService,
	}
}

func (c *proposalController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/proposal/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("job/:jobId", c.List)
	h.Post("job/:jobId/bulk", c.BulkTransition)
	h.Patch("job/:jobId/:id/ontology", c.PatchOntology)
}

func (c *proposalController) List(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "jobId")
	if err != nil {
		return err
	}

	query := dto.ListProposalsQuery{
		Status: ctx.Query("status"),
		Limit:  ctx.QueryInt("limit"),
		Offset: ctx.QueryInt("offset"),
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.proposalService.List(ctx.Context(), jobId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list proposals", res))
}

func (c *proposalController) BulkTransition(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "jobId")
	if err != nil {
		return err
	}

	var req dto.BulkTransitionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.proposalService.BulkTransition(ctx.Context(), jobId, &req)
	if err != nil {
		return err
	}

	message := "Success transition proposals"
	if res.Failed > 0 {
		message = "Transition completed with partial failures"
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *proposalController) PatchOntology(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "jobId")
	if err != nil {
		return err
	}
	proposalId, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.PatchOntologyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.proposalService.PatchOntology(ctx.Context(), jobId, proposalId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success patch ontology fields", res))
}
