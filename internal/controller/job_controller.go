package controller

import (
	"ai-organizer-be/internal/dto"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/serverutils"
	"ai-organizer-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	ExecuteStep(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Results(ctx *fiber.Ctx) error
}

type jobController struct {
	jobService service.IJobService
}

func NewJobController(jobService service.IJobService) IJobController {
	return &jobController{
		jobService: jobService,
	}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get(":id", c.Status)
	h.Post(":id/steps/:step", c.ExecuteStep)
	h.Post(":id/cancel", c.Cancel)
	h.Get(":id/results", c.Results)
}

func (c *jobController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("malformed request body")
	}
	req.IdempotencyKey = serverutils.IdempotencyKey(ctx, req.IdempotencyKey)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.jobService.Create(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create job", res))
}

func (c *jobController) Status(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.jobService.GetStatus(ctx.Context(), jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get job status", res))
}

func (c *jobController) ExecuteStep(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "id")
	if err != nil {
		return err
	}
	stepName := ctx.Params("step")

	var req dto.ExecuteStepRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperrors.Validation("malformed request body")
		}
	}
	req.IdempotencyKey = serverutils.IdempotencyKey(ctx, req.IdempotencyKey)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.jobService.ExecuteStep(ctx.Context(), jobId, stepName, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute step", res))
}

func (c *jobController) Cancel(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.jobService.Cancel(ctx.Context(), jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cancel job", res))
}

func (c *jobController) Results(ctx *fiber.Ctx) error {
	jobId, err := parseId(ctx, "id")
	if err != nil {
		return err
	}

	query := dto.ResultsQuery{
		Step:   ctx.Query("step"),
		Limit:  ctx.QueryInt("limit"),
		Offset: ctx.QueryInt("offset"),
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return err
	}

	res, err := c.jobService.Results(ctx.Context(), jobId, &query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success fetch results", res))
}

func parseId(ctx *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(param))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + param + " parameter")
	}
	return id, nil
}
