package controller

import (
	"exam-prep-be/internal/config"
	"exam-prep-be/internal/dto"
	"exam-prep-be/internal/pkg/serverutils"
	"exam-prep-be/internal/service"
	"exam-prep-be/pkg/generation"

	"github.com/gofiber/fiber/v2"
)

type IGenerationController interface {
	RegisterRoutes(r fiber.Router)
	EnsureTopic(ctx *fiber.Ctx) error
	EnsureSyllabus(ctx *fiber.Ctx) error
	DeduplicateTopic(ctx *fiber.Ctx) error
	GetPolicy(ctx *fiber.Ctx) error
}

type generationController struct {
	service   service.IGenerationService
	publisher service.IPublisherService
	genCfg    config.GenerationConfig
	auth      fiber.Handler
}

func NewGenerationController(
	service service.IGenerationService,
	publisher service.IPublisherService,
	genCfg config.GenerationConfig,
	auth fiber.Handler,
) IGenerationController {
	return &generationController{
		service:   service,
		publisher: publisher,
		genCfg:    genCfg,
		auth:      auth,
	}
}

func (c *generationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/generation/v1")
	h.Use(c.auth)
	h.Get("assistants/:assistantId/policy", c.GetPolicy)
	h.Post("assistants/:assistantId/ensure", c.EnsureSyllabus)
	h.Post("assistants/:assistantId/topics/:slug/ensure", c.EnsureTopic)
	h.Post("assistants/:assistantId/topics/:slug/dedupe", c.DeduplicateTopic)
}

func (c *generationController) EnsureTopic(ctx *fiber.Ctx) error {
	var req dto.EnsureTopicRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	mode, err := generation.ParseMode(req.Mode)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.EnsureTopicContent(ctx.Context(), ctx.Params("assistantId"), ctx.Params("slug"), mode, nil)
	if err != nil {
		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponseWithData(code, err.Error(), res))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ensure topic content", res))
}

func (c *generationController) EnsureSyllabus(ctx *fiber.Ctx) error {
	var req dto.EnsureSyllabusRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	mode, err := generation.ParseMode(req.Mode)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	assistantId := ctx.Params("assistantId")

	if req.Async {
		jobId, err := c.publisher.EnqueueSyllabus(ctx.Context(), assistantId, mode)
		if err != nil {
			return err
		}
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Syllabus generation queued", dto.EnqueueBatchResponse{
			JobId:       jobId,
			AssistantId: assistantId,
			Mode:        string(mode),
		}))
	}

	res, err := c.service.EnsureSyllabusContent(ctx.Context(), assistantId, mode, nil)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success ensure syllabus content", res))
}

func (c *generationController) DeduplicateTopic(ctx *fiber.Ctx) error {
	out, err := c.service.DeduplicateTopic(ctx.Context(), ctx.Params("assistantId"), ctx.Params("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success deduplicate topic", dto.NewDedupeResponse(out)))
}

func (c *generationController) GetPolicy(ctx *fiber.Ctx) error {
	assistantId := ctx.Params("assistantId")
	return ctx.JSON(serverutils.SuccessResponse("Success get policy", dto.PolicyResponse{
		AssistantId: assistantId,
		Policy:      c.genCfg.PolicyFor(assistantId),
	}))
}
