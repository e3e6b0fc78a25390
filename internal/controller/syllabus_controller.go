package controller

import (
	"exam-prep-be/internal/dto"
	"exam-prep-be/internal/pkg/serverutils"
	"exam-prep-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISyllabusController interface {
	RegisterRoutes(r fiber.Router)
	GetSyllabus(ctx *fiber.Ctx) error
	Reconcile(ctx *fiber.Ctx) error
	GetTopicContent(ctx *fiber.Ctx) error
}

type syllabusController struct {
	service service.ISyllabusService
	auth    fiber.Handler
}

func NewSyllabusController(service service.ISyllabusService, auth fiber.Handler) ISyllabusController {
	return &syllabusController{service: service, auth: auth}
}

func (c *syllabusController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/syllabus/v1")
	h.Get("assistants/:assistantId", c.GetSyllabus)
	h.Get("assistants/:assistantId/topics/:slug/content", c.GetTopicContent)
	h.Post("assistants/:assistantId/reconcile", c.auth, c.Reconcile) // protected
}

func (c *syllabusController) GetSyllabus(ctx *fiber.Ctx) error {
	topics, err := c.service.GetSyllabus(ctx.Context(), ctx.Params("assistantId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get syllabus", dto.NewTopicResponses(topics)))
}

func (c *syllabusController) Reconcile(ctx *fiber.Ctx) error {
	topics, err := c.service.ReconcileSyllabus(ctx.Context(), ctx.Params("assistantId"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reconcile syllabus", dto.NewTopicResponses(topics)))
}

func (c *syllabusController) GetTopicContent(ctx *fiber.Ctx) error {
	assistantId := ctx.Params("assistantId")
	slug := ctx.Params("slug")

	content, err := c.service.GetTopicContent(ctx.Context(), assistantId, slug)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get topic content",
		dto.NewTopicContentResponse(assistantId, slug, content.Tests, content.Flashcards)))
}
