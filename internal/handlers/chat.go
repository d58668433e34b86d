// internal/handlers/chat.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/barterhub/barterhub-backend/internal/config"
	"github.com/barterhub/barterhub-backend/internal/i18n"
	"github.com/barterhub/barterhub-backend/internal/models"
	"github.com/barterhub/barterhub-backend/internal/services"
	"github.com/barterhub/barterhub-backend/internal/utils"
	"github.com/barterhub/barterhub-backend/internal/ws"
)

type ChatHandler struct {
	chatService      *services.ChatService
	autoReplyService *services.AutoReplyService
	assetService     *services.AssetService
	gate             *services.UnlockService
	hub              *ws.Hub
	cfg              *config.Config
}

type SendMessageRequest struct {
	Content string     `json:"content" validate:"required"`
	AssetID *uuid.UUID `json:"asset_id,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware on the REST
	// surface; the socket carries no state-changing commands.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewChatHandler(chatService *services.ChatService, autoReplyService *services.AutoReplyService, assetService *services.AssetService, gate *services.UnlockService, hub *ws.Hub, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		chatService:      chatService,
		autoReplyService: autoReplyService,
		assetService:     assetService,
		gate:             gate,
		hub:              hub,
		cfg:              cfg,
	}
}

// GET /chats
func (h *ChatHandler) GetConversations(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"conversations": h.chatService.Partners(viewerID),
	})
}

// GET /chats/:userId
func (h *ChatHandler) GetConversation(c *gin.Context) {
	viewerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	counterpartID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var messages []models.Message
	if assetStr := c.Query("asset_id"); assetStr != "" {
		assetID, err := uuid.Parse(assetStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid asset ID", nil)
			return
		}
		messages = h.chatService.ConversationForAsset(viewerID, counterpartID, assetID)
	} else {
		messages = h.chatService.ConversationWith(viewerID, counterpartID)
	}

	utils.SuccessResponse(c, gin.H{
		"messages": messages,
	})
}

// POST /chats/:userId/messages
//
// Messaging a seller about their listing sits behind the contact_seller gate:
// until the viewer has paid the unlock fee for that listing, the send is
// quoted at 402. Replies from the seller's side and unscoped messages pass
// freely.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	senderID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	receiverID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	var assetTitle string
	var autoReply bool

	if req.AssetID != nil {
		asset, err := h.assetService.GetAsset(*req.AssetID, &senderID)
		if err != nil {
			if errors.Is(err, services.ErrUnknownAsset) {
				utils.NotFoundResponse(c, "asset")
				return
			}
			utils.InternalErrorResponse(c, err.Error())
			return
		}

		// First contact with the seller requires the paid unlock.
		if asset.OwnerID == receiverID && asset.OwnerID != senderID &&
			!h.gate.IsUnlocked(senderID, asset.ID, models.UnlockPurposeContactSeller) {
			utils.PaymentRequiredResponse(c, gin.H{
				"purpose":  models.UnlockPurposeContactSeller,
				"asset_id": asset.ID,
				"amount":   h.gateFee(),
				"currency": asset.Currency,
			})
			return
		}

		assetTitle = asset.Title
		autoReply = asset.OwnerID == receiverID
	}

	msg, err := h.chatService.Append(senderID, receiverID, req.Content, req.AssetID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyChatInvalidMessage), err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	h.hub.NewMessage(msg)

	if autoReply && h.cfg.Chat.AutoReplyEnabled && h.autoReplyService != nil {
		h.autoReplyService.ScheduleReply(msg, assetTitle)
	}

	utils.CreatedResponse(c, gin.H{
		"message": msg,
	})
}

// GET /chats/ws
func (h *ChatHandler) ServeWS(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to upgrade connection", err.Error())
		return
	}

	client := ws.NewClient(userIDStr, conn, h.hub)
	client.Start()
}

func (h *ChatHandler) gateFee() float64 {
	return h.cfg.Payment.ContactUnlockFee
}
