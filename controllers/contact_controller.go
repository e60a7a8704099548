package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

// Notifier delivers staff notifications. *utils.Mailer satisfies it.
type Notifier interface {
	Enabled() bool
	NotifyTo() string
	Send(to, subject, body string) error
}

// ContactController stores contact form messages and forwards them to staff.
type ContactController struct {
	db       *gorm.DB
	notifier Notifier
	// notify runs the delivery; tests replace it to run synchronously
	notify func(func())
}

func NewContactController(db *gorm.DB, notifier Notifier) *ContactController {
	return &ContactController{
		db:       db,
		notifier: notifier,
		notify:   func(fn func()) { go fn() },
	}
}

// parseIsRead accepts true/1 and false/0. Anything else means no filter.
func parseIsRead(v string) (bool, bool) {
	switch v {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// List returns messages newest first, optionally filtered by is_read.
func (c *ContactController) List(ctx *gin.Context) {
	limit, offset := parsePagination(ctx)
	q := c.db.Model(&models.ContactMessage{})
	if isRead, ok := parseIsRead(ctx.Query("is_read")); ok {
		q = q.Where("is_read = ?", isRead)
	}

	var messages []models.ContactMessage
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error fetching messages", err)
		return
	}
	utils.Success(ctx, gin.H{"messages": messages})
}

// Create validates and stores a message from the public form.
func (c *ContactController) Create(ctx *gin.Context) {
	body := bindBody(ctx)
	name := strings.TrimSpace(str(body, "name"))
	email := strings.TrimSpace(str(body, "email"))
	subject := strings.TrimSpace(str(body, "subject"))
	message := strings.TrimSpace(str(body, "message"))

	var chk utils.Checker
	chk.Check(utils.MinLen(name, 2), "name", body["name"], "Name must be at least 2 characters")
	chk.Check(utils.IsEmail(email), "email", body["email"], "Please provide a valid email")
	chk.Check(utils.MinLen(subject, 5), "subject", body["subject"], "Subject must be at least 5 characters")
	chk.Check(utils.MinLen(message, 10), "message", body["message"], "Message must be at least 10 characters")
	if !chk.Valid() {
		utils.ValidationFailed(ctx, chk.Errors())
		return
	}

	msg := models.ContactMessage{
		Name:    utils.SanitizeText(name),
		Email:   email,
		Subject: utils.SanitizeText(subject),
		Message: utils.SanitizeText(message),
	}
	if err := c.db.Create(&msg).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error sending message", err)
		return
	}
	utils.Logger.Info("contact message received", zap.Uint("id", msg.ID), zap.String("email", msg.Email))

	if c.notifier != nil && c.notifier.Enabled() {
		c.notify(func() { c.forward(msg) })
	}

	utils.Success(ctx, gin.H{
		"message":   "Message sent successfully! We will get back to you soon.",
		"messageId": msg.ID,
	})
}

func (c *ContactController) forward(msg models.ContactMessage) {
	subject := fmt.Sprintf("[Dei Frati] %s", msg.Subject)
	body := fmt.Sprintf("From: %s <%s>\n\n%s\n", msg.Name, msg.Email, msg.Message)
	if err := c.notifier.Send(c.notifier.NotifyTo(), subject, body); err != nil {
		utils.Logger.Warn("contact notification failed", zap.Uint("id", msg.ID), zap.Error(err))
	}
}

func (c *ContactController) MarkRead(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", true).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error updating message", err)
		return
	}
	utils.Message(ctx, http.StatusOK, "Message marked as read")
}

func (c *ContactController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.db.Delete(&models.ContactMessage{}, id).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error deleting message", err)
		return
	}
	utils.Message(ctx, http.StatusOK, "Message deleted successfully")
}
