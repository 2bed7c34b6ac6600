package controller

import (
	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/serverutils"
	"ai-voice-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	CompleteOnboarding(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/user", auth)
	h.Get("/profile", c.GetProfile)
	h.Put("/profile", c.UpdateProfile)
	h.Post("/onboarding", c.CompleteOnboarding)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetProfile(ctx.UserContext(), authUser)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.UpdateProfile(ctx.UserContext(), authUser, &req); err != nil {
		return err
	}
	return ctx.JSON(dto.MessageResponse{Success: true, Message: "Profile updated successfully"})
}

func (c *userController) CompleteOnboarding(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var req dto.OnboardingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CompleteOnboarding(ctx.UserContext(), authUser, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
