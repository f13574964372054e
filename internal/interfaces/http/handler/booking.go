package handler

import (
	"strings"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	"github.com/gin-gonic/gin"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	BaseHandler
	bookingService *bookingapp.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *bookingapp.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create godoc
// @ID           createBooking
// @Summary      Create a booking
// @Description  Prices every article line, allocates an LR number and stores the booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request body CreateBookingRequest true "Booking"
// @Success      201 {object} APIResponse[bookingapp.BookingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	b, err := h.bookingService.Create(c.Request.Context(), principal(c), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, b)
}

// List godoc
// @ID           listBookings
// @Summary      List bookings
// @Description  Bookings visible to the caller: their org, and for operators their branch
// @Tags         bookings
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field" default(created_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Param        search    query string false "LR number or location"
// @Param        status    query string false "Status filter"
// @Param        from_date query string false "Pickup date from (YYYY-MM-DD)"
// @Param        to_date   query string false "Pickup date to (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]bookingapp.BookingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	var req BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.bookingService.List(c.Request.Context(), principal(c), req.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get godoc
// @ID           getBooking
// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[bookingapp.BookingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookingService.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// GetByLRNumber godoc
// @ID           getBookingByLRNumber
// @Summary      Get a booking by LR number
// @Tags         bookings
// @Produce      json
// @Param        lr_number path string true "LR number" example(MUM-26-001)
// @Success      200 {object} APIResponse[bookingapp.BookingResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/lr/{lr_number} [get]
func (h *BookingHandler) GetByLRNumber(c *gin.Context) {
	lr := strings.TrimSpace(c.Param("lr_number"))
	b, err := h.bookingService.GetByLRNumber(c.Request.Context(), principal(c), lr)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// UpdateStatus godoc
// @ID           updateBookingStatus
// @Summary      Change booking status
// @Description  Moves a booking along its lifecycle. loaded needs the loading context and unloaded the unloading context.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Booking ID" format(uuid)
// @Param        request body UpdateStatusRequest true "Status change"
// @Success      200 {object} APIResponse[bookingapp.BookingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	b, err := h.bookingService.UpdateStatus(c.Request.Context(), principal(c), id, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// AddArticle godoc
// @ID           addBookingArticle
// @Summary      Add an article line
// @Description  Prices one more line and recomputes the booking total
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Booking ID" format(uuid)
// @Param        request body ArticleLineRequest true "Article line"
// @Success      200 {object} APIResponse[bookingapp.BookingResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/{id}/articles [post]
func (h *BookingHandler) AddArticle(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ArticleLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	b, err := h.bookingService.AddArticle(c.Request.Context(), principal(c), id, bookingapp.AddArticleInput{Line: req.toInput()})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, b)
}

// History godoc
// @ID           getBookingHistory
// @Summary      Booking status history
// @Tags         bookings
// @Produce      json
// @Param        id path string true "Booking ID" format(uuid)
// @Success      200 {object} APIResponse[[]bookingapp.StatusChangeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /bookings/{id}/history [get]
func (h *BookingHandler) History(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	history, err := h.bookingService.History(c.Request.Context(), principal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// LookupRate godoc
// @ID           lookupRate
// @Summary      Look up the rate a line would get
// @Description  Display only. Booking creation resolves the rate again.
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        request body RateLookupRequest true "Lookup"
// @Success      200 {object} APIResponse[bookingapp.RateLookupResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rates/lookup [post]
func (h *BookingHandler) LookupRate(c *gin.Context) {
	var req RateLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.bookingService.LookupRate(c.Request.Context(), principal(c), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
