package controller

import (
	"context"
	"encoding/json"
	"errors"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/pkg/serverutils"
	"ai-voice-assistant-be/internal/service"
	"ai-voice-assistant-be/internal/session"
	ws "ai-voice-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	localSessionUser         = "session_user"
	localSessionConversation = "session_conversation"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	CreateAssistant(ctx *fiber.Ctx) error
	ListAssistants(ctx *fiber.Ctx) error
	CheckUser(ctx *fiber.Ctx) error
	StartCall(ctx *fiber.Ctx) error
	EndCall(ctx *fiber.Ctx) error
	SessionUpgrade(ctx *fiber.Ctx) error
	CleanupAssistants(ctx *fiber.Ctx) error
}

type voiceController struct {
	assistants    service.IAssistantService
	quota         service.IQuotaService
	calls         service.ICallService
	conversations service.IConversationService
	orchestrator  *session.Orchestrator
	hub           *ws.Hub
	admin         fiber.Handler
	logger        logger.ILogger
}

func NewVoiceController(
	assistants service.IAssistantService,
	quota service.IQuotaService,
	calls service.ICallService,
	conversations service.IConversationService,
	orchestrator *session.Orchestrator,
	hub *ws.Hub,
	admin fiber.Handler,
	logger logger.ILogger,
) IVoiceController {
	return &voiceController{
		assistants:    assistants,
		quota:         quota,
		calls:         calls,
		conversations: conversations,
		orchestrator:  orchestrator,
		hub:           hub,
		admin:         admin,
		logger:        logger,
	}
}

func (c *voiceController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/voice")
	h.Post("/cleanup-assistants", c.admin, c.CleanupAssistants)

	h.Post("/create-assistant", auth, c.CreateAssistant)
	h.Get("/assistants", auth, c.ListAssistants)
	h.Get("/check-user", auth, c.CheckUser)
	h.Post("/start-call", auth, c.StartCall)
	h.Post("/end-call", auth, c.EndCall)
	h.Get("/session/ws", auth, c.SessionUpgrade, websocket.New(c.serveSession))
}

func (c *voiceController) CreateAssistant(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateAssistantRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistants.Provision(ctx.UserContext(), authUser, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *voiceController) ListAssistants(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.assistants.ListForUser(ctx.UserContext(), authUser)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *voiceController) CheckUser(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	res, err := c.quota.Status(ctx.UserContext(), authUser)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *voiceController) StartCall(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var req dto.StartCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.calls.StartCall(ctx.UserContext(), authUser, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *voiceController) EndCall(ctx *fiber.Ctx) error {
	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	var req dto.EndCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.calls.EndCall(ctx.UserContext(), authUser, &req)
	if err != nil {
		// The live session, if any, keeps its timer and can still end the call.
		return err
	}

	// The conversation is closed; a live session must not end it again.
	if id, err := uuid.Parse(req.ConversationId); err == nil {
		if s, ok := c.orchestrator.Get(id); ok && s.AuthUser.Id == authUser.Id {
			s.Detach()
		}
	}
	return ctx.JSON(res)
}

func (c *voiceController) CleanupAssistants(ctx *fiber.Ctx) error {
	res, err := c.assistants.Cleanup(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// SessionUpgrade checks the upgrade request before the socket is accepted:
// the conversation must belong to the caller and still be open.
func (c *voiceController) SessionUpgrade(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	authUser, err := serverutils.AuthUser(ctx)
	if err != nil {
		return err
	}

	conversationID, err := uuid.Parse(ctx.Query("conversationId"))
	if err != nil {
		return apperror.Validation("conversationId must be a valid id")
	}

	conversation, err := c.conversations.FindOpen(ctx.UserContext(), authUser, conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return apperror.NotFound("Conversation not found")
	}

	ctx.Locals(localSessionUser, authUser)
	ctx.Locals(localSessionConversation, conversation)
	return ctx.Next()
}

func (c *voiceController) serveSession(conn *websocket.Conn) {
	authUser, _ := conn.Locals(localSessionUser).(entity.AuthUser)
	conversation, _ := conn.Locals(localSessionConversation).(*entity.VoiceConversation)
	if conversation == nil {
		conn.Close()
		return
	}

	s, err := c.orchestrator.Open(conversation.Id, authUser, conversation.StartedAt)
	if err != nil {
		c.logger.Warn("VoiceController", "Session refused", map[string]interface{}{
			"conversation_id": conversation.Id.String(),
			"error":           err.Error(),
		})
		conn.Close()
		return
	}

	ws.ServeWs(c.hub, conn, authUser.Id, func() { s.Connect() }, func(data []byte) {
		c.handleFrame(s, data)
	})
}

func (c *voiceController) handleFrame(s *session.Session, data []byte) {
	var ev session.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		c.hub.SendToUser(s.AuthUser.Id, session.Frame{Type: session.FrameError, ConversationID: s.ID, State: s.State(), Message: "Invalid frame"})
		return
	}

	err := s.HandleEvent(context.Background(), ev)
	switch {
	case err == nil, errors.Is(err, session.ErrEnded):
	case errors.Is(err, session.ErrUnknownEvent):
		c.hub.SendToUser(s.AuthUser.Id, session.Frame{Type: session.FrameError, ConversationID: s.ID, State: s.State(), Message: err.Error()})
	default:
		c.logger.Warn("VoiceController", "Session event failed", map[string]interface{}{
			"conversation_id": s.ID.String(),
			"event":           ev.Type,
			"error":           err.Error(),
		})
	}
}
