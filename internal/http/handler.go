package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

type Handler struct {
	vehicleService      *service.VehicleService
	bookingService      *service.BookingService
	availabilityService *service.AvailabilityService
	issueService        *service.IssueService
	dashboardService    *service.DashboardService
	branchRepo          *repository.BranchRepository
	log                 zerolog.Logger
}

func NewHandler(
	vehicleService *service.VehicleService,
	bookingService *service.BookingService,
	availabilityService *service.AvailabilityService,
	issueService *service.IssueService,
	dashboardService *service.DashboardService,
	branchRepo *repository.BranchRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicleService:      vehicleService,
		bookingService:      bookingService,
		availabilityService: availabilityService,
		issueService:        issueService,
		dashboardService:    dashboardService,
		branchRepo:          branchRepo,
		log:                 log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	vehicles := protected.Group("/vehicles")
	{
		vehicles.GET("", h.listVehicles)
		vehicles.POST("", h.createVehicle)
		vehicles.GET("/:id", h.getVehicle)
		vehicles.DELETE("/:id", h.deleteVehicle)
		vehicles.PUT("/:id/location", h.moveVehicle)
		vehicles.PUT("/:id/mileage", h.recordMileage)
		vehicles.GET("/:id/mileage", h.listMileage)
		vehicles.PUT("/:id/health-override", h.overrideHealth)
		vehicles.DELETE("/:id/health-override", h.clearHealthOverride)
		vehicles.GET("/:id/issues", h.listVehicleIssues)
		vehicles.GET("/:id/activity", h.listVehicleActivity)
	}

	bookings := protected.Group("/bookings")
	{
		bookings.GET("", h.listBookings)
		bookings.POST("", h.createBooking)
		bookings.GET("/:id", h.getBooking)
		bookings.PATCH("/:id", h.updateBooking)
		bookings.PUT("/:id/cancel", h.cancelBooking)
	}

	issues := protected.Group("/issues")
	{
		issues.POST("", h.createIssue)
		issues.PATCH("/:id", h.updateIssue)
		issues.PUT("/:id/close", h.closeIssue)
		issues.DELETE("/:id", h.deleteIssue)
	}

	protected.GET("/availability", h.searchAvailability)
	protected.GET("/dashboard/summary", h.dashboardSummary)
	protected.GET("/branches", h.listBranches)
	protected.GET("/categories", h.listCategories)
}

// Vehicle handlers

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Registration       string  `json:"registration" binding:"required"`
		CategoryID         *string `json:"category_id"`
		BranchID           *string `json:"branch_id"`
		PersonalUse        bool    `json:"personal_use"`
		Mileage            int64   `json:"mileage"`
		NextServiceMileage *int64  `json:"next_service_mileage"`
		InsuranceExpiry    *string `json:"insurance_expiry"`
		MOTExpiry          *string `json:"mot_expiry"`
		MOTNotApplicable   bool    `json:"mot_not_applicable"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), principal, service.CreateVehicleInput{
		Registration:       req.Registration,
		CategoryID:         req.CategoryID,
		BranchID:           req.BranchID,
		PersonalUse:        req.PersonalUse,
		Mileage:            req.Mileage,
		NextServiceMileage: req.NextServiceMileage,
		InsuranceExpiry:    req.InsuranceExpiry,
		MOTExpiry:          req.MOTExpiry,
		MOTNotApplicable:   req.MOTNotApplicable,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := service.VehicleListFilter{}

	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid category_id"))
			return
		}
		filter.CategoryID = &id
	}
	if raw := strings.TrimSpace(c.Query("branch_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid branch_id"))
			return
		}
		filter.BranchID = &id
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.VehicleStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("health")); raw != "" {
		health := model.HealthClass(strings.ToUpper(raw))
		filter.Health = &health
	}

	vehicles, err := h.vehicleService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *Handler) getVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	vehicle, err := h.vehicleService.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if err := h.vehicleService.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) moveVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		BranchID       *string `json:"branch_id"`
		OnHire         bool    `json:"on_hire"`
		OnHireLocation *string `json:"on_hire_location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.Move(c.Request.Context(), principal, c.Param("id"), service.MoveVehicleInput{
		BranchID:       req.BranchID,
		OnHire:         req.OnHire,
		OnHireLocation: req.OnHireLocation,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) recordMileage(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Mileage int64 `json:"mileage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.RecordMileage(c.Request.Context(), principal, c.Param("id"), req.Mileage)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) listMileage(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	entries, err := h.vehicleService.MileageHistory(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) overrideHealth(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Health string  `json:"health" binding:"required"`
		Note   *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.vehicleService.OverrideHealth(
		c.Request.Context(), principal, c.Param("id"),
		model.HealthClass(strings.ToUpper(req.Health)), req.Note,
	)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) clearHealthOverride(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicle, err := h.vehicleService.ClearHealthOverride(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) listVehicleIssues(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	issues, err := h.issueService.ListByVehicle(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issues))
}

func (h *Handler) listVehicleActivity(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	entries, err := h.vehicleService.Activity(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(entries))
}

// Booking handlers

func (h *Handler) createBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		VehicleID     string  `json:"vehicle_id" binding:"required"`
		BranchID      string  `json:"branch_id"`
		ClientName    string  `json:"client_name" binding:"required"`
		ClientPhone   string  `json:"client_phone"`
		ClientEmail   string  `json:"client_email"`
		StartAt       string  `json:"start_at" binding:"required"`
		EndAt         string  `json:"end_at" binding:"required"`
		StartLocation string  `json:"start_location"`
		EndLocation   string  `json:"end_location"`
		Status        string  `json:"status"`
		Type          string  `json:"type"`
		ChauffeurName *string `json:"chauffeur_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), principal, service.CreateBookingInput{
		VehicleID:     req.VehicleID,
		BranchID:      req.BranchID,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Status:        strings.ToUpper(req.Status),
		Type:          strings.ToUpper(req.Type),
		ChauffeurName: req.ChauffeurName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(booking))
}

func (h *Handler) listBookings(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	filter := service.BookingListFilter{}

	if raw := strings.TrimSpace(c.Query("vehicle_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle_id"))
			return
		}
		filter.VehicleID = &id
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.BookingStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	if raw := strings.TrimSpace(c.Query("start_from")); raw != "" {
		t, err := parseTime(raw)
		if err == nil {
			filter.StartFrom = &t
		}
	}
	if raw := strings.TrimSpace(c.Query("start_to")); raw != "" {
		t, err := parseTime(raw)
		if err == nil {
			filter.StartTo = &t
		}
	}

	bookings, err := h.bookingService.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(bookings))
}

func (h *Handler) getBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

func (h *Handler) updateBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		VehicleID     *string `json:"vehicle_id"`
		StartAt       *string `json:"start_at"`
		EndAt         *string `json:"end_at"`
		Status        *string `json:"status"`
		ClientName    *string `json:"client_name"`
		ClientPhone   *string `json:"client_phone"`
		ClientEmail   *string `json:"client_email"`
		StartLocation *string `json:"start_location"`
		EndLocation   *string `json:"end_location"`
		ChauffeurName *string `json:"chauffeur_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if req.Status != nil {
		upper := strings.ToUpper(*req.Status)
		req.Status = &upper
	}

	booking, err := h.bookingService.Update(c.Request.Context(), principal, c.Param("id"), service.UpdateBookingInput{
		VehicleID:     req.VehicleID,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Status:        req.Status,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		ChauffeurName: req.ChauffeurName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

func (h *Handler) cancelBooking(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(booking))
}

// Availability

func (h *Handler) searchAvailability(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	start, err := parseTime(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start"))
		return
	}
	end, err := parseTime(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid end"))
		return
	}

	input := service.AvailabilityInput{Start: start, End: end}

	if raw := strings.TrimSpace(c.Query("category_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid category_id"))
			return
		}
		input.CategoryID = &id
	}
	if raw := strings.TrimSpace(c.Query("branch_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid branch_id"))
			return
		}
		input.BranchID = &id
	}
	if raw := strings.TrimSpace(c.Query("exclude_booking_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid exclude_booking_id"))
			return
		}
		input.ExcludeBookingID = &id
	}

	vehicles, err := h.availabilityService.Search(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicles))
}

// Issue handlers

func (h *Handler) createIssue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		VehicleID   string  `json:"vehicle_id" binding:"required"`
		Priority    *string `json:"priority"`
		Description string  `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if req.Priority != nil {
		upper := strings.ToUpper(*req.Priority)
		req.Priority = &upper
	}

	issue, err := h.issueService.Create(c.Request.Context(), principal, service.CreateIssueInput{
		VehicleID:   req.VehicleID,
		Priority:    req.Priority,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(issue))
}

func (h *Handler) updateIssue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Priority    *string `json:"priority"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if req.Priority != nil {
		upper := strings.ToUpper(*req.Priority)
		req.Priority = &upper
	}

	issue, err := h.issueService.Update(c.Request.Context(), principal, c.Param("id"), service.UpdateIssueInput{
		Priority:    req.Priority,
		Description: req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issue))
}

func (h *Handler) closeIssue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	issue, err := h.issueService.Close(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(issue))
}

func (h *Handler) deleteIssue(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.issueService.Delete(c.Request.Context(), principal, c.Param("id"), req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Dashboard and reference data

func (h *Handler) dashboardSummary(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	summary, err := h.dashboardService.Summary(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) listBranches(c *gin.Context) {
	branches, err := h.branchRepo.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(branches))
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.branchRepo.ListCategories(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(categories))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, service.ErrIntegrity):
		// The store acknowledged the write but returned no record: the
		// session is broken, not the request. Ask the client to
		// re-authenticate instead of retrying the operation.
		c.JSON(http.StatusUnauthorized, errorResponse("session invalid, please sign in again"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}
