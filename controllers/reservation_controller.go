package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deifrati/api/middleware"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

var timeOfDay = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ReservationController handles table bookings.
type ReservationController struct {
	db *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{db: db}
}

func (r *ReservationController) find(ctx *gin.Context, scope func(*gorm.DB) *gorm.DB) {
	limit, offset := parsePagination(ctx)
	q := scope(r.db)
	if status := ctx.Query("status"); models.ValidReservationStatus(status) {
		q = q.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reservations).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error fetching reservations", err)
		return
	}
	utils.Success(ctx, gin.H{"reservations": reservations})
}

// List returns every reservation, newest first.
func (r *ReservationController) List(ctx *gin.Context) {
	r.find(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

// Mine returns the bookings made with the caller's email.
func (r *ReservationController) Mine(ctx *gin.Context) {
	email := ctx.GetString(middleware.ContextEmailKey)
	r.find(ctx, func(db *gorm.DB) *gorm.DB { return db.Where("email = ?", email) })
}

// Create books a table. Anyone may call it.
func (r *ReservationController) Create(ctx *gin.Context) {
	body := bindBody(ctx)

	name := strings.TrimSpace(str(body, "name"))
	email := strings.TrimSpace(str(body, "email"))
	phone := strings.TrimSpace(str(body, "phone"))
	dateRaw := str(body, "date")
	timeRaw := str(body, "time")
	guests, guestsOK := utils.IntFrom(body["guests"])
	date, dateOK := utils.ParseISODate(dateRaw)

	var c utils.Checker
	c.Check(utils.MinLen(name, 2), "name", body["name"], "Name must be at least 2 characters")
	c.Check(utils.IsEmail(email), "email", body["email"], "Please provide a valid email")
	c.Check(utils.MinLen(phone, 10), "phone", body["phone"], "Please provide a valid phone number")
	c.Check(dateOK, "date", body["date"], "Please provide a valid date")
	c.Check(timeOfDay.MatchString(timeRaw), "time", body["time"], "Please provide a valid time")
	c.Check(guestsOK && guests >= 1 && guests <= 20, "guests", body["guests"], "Number of guests must be between 1 and 20")
	if !c.Valid() {
		utils.ValidationFailed(ctx, c.Errors())
		return
	}

	reservation := models.Reservation{
		CustomerName:    utils.SanitizeText(name),
		Email:           email,
		Phone:           phone,
		Date:            time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Time:            timeRaw,
		Guests:          guests,
		SpecialRequests: optionalString(utils.SanitizeText(str(body, "specialRequests"))),
		Status:          models.ReservationPending,
	}
	if err := r.db.Create(&reservation).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error creating reservation", err)
		return
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{
		"message":       "Reservation created successfully",
		"reservationId": reservation.ID,
	})
}

// UpdateStatus lets staff confirm or cancel a booking.
func (r *ReservationController) UpdateStatus(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	status := str(bindBody(ctx), "status")
	if !models.ValidReservationStatus(status) {
		utils.Error(ctx, http.StatusBadRequest, "Invalid status")
		return
	}

	if err := r.db.Model(&models.Reservation{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error updating reservation", err)
		return
	}
	utils.Message(ctx, http.StatusOK, "Reservation updated successfully")
}

// Cancel marks a booking cancelled. Customers may only cancel their own.
func (r *ReservationController) Cancel(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var reservation models.Reservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Reservation not found")
			return
		}
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error cancelling reservation", err)
		return
	}

	if ctx.GetString(middleware.ContextRoleKey) != models.RoleAdmin &&
		reservation.Email != ctx.GetString(middleware.ContextEmailKey) {
		utils.Error(ctx, http.StatusForbidden, "Access denied")
		return
	}

	err := r.db.Model(&models.Reservation{}).Where("id = ?", id).Update("status", models.ReservationCancelled).Error
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error cancelling reservation", err)
		return
	}
	utils.Message(ctx, http.StatusOK, "Reservation cancelled successfully")
}
