package controller

import (
	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/serverutils"
	"ai-voice-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
}

func NewConversationController(service service.IConversationService) IConversationController {
	return &conversationController{service: service}
}

func (c *conversationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/conversations", auth)
	h.Get("/list", c.List)
	h.Get("/:id", c.Get)
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var query dto.ListConversationsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return apperror.Validation("Invalid query parameters")
	}

	res, err := c.service.List(ctx.UserContext(), authUser, query)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *conversationController) Get(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NotFound("Conversation not found")
	}

	res, err := c.service.Get(ctx.UserContext(), authUser, id)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
