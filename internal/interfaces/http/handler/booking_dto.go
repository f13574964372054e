package handler

import (
	bookingapp "github.com/freightcore/backend/internal/application/booking"
	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualRateRequest is a caller-supplied rate for lines no contract or
// standard rate covers
type ManualRateRequest struct {
	RateType      string          `json:"rate_type" binding:"required,oneof=weight unit fixed whichever_higher" example:"weight"`
	RateValue     decimal.Decimal `json:"rate_value" binding:"omitempty,gte=0" swaggertype:"string" example:"12.50"`
	MinimumCharge decimal.Decimal `json:"minimum_charge" binding:"gte=0" swaggertype:"string" example:"0"`
}

// LineOptionsRequest holds the optional per-line charges, all percentages
// except the per-unit handling rates and the flat adjustment
type LineOptionsRequest struct {
	LoadingRatePerUnit    decimal.Decimal  `json:"loading_rate_per_unit" binding:"gte=0" swaggertype:"string"`
	UnloadingRatePerUnit  decimal.Decimal  `json:"unloading_rate_per_unit" binding:"gte=0" swaggertype:"string"`
	FuelSurchargePct      decimal.Decimal  `json:"fuel_surcharge_pct" binding:"gte=0,lte=100" swaggertype:"string"`
	UrgencySurchargePct   decimal.Decimal  `json:"urgency_surcharge_pct" binding:"gte=0,lte=100" swaggertype:"string"`
	FragilitySurchargePct decimal.Decimal  `json:"fragility_surcharge_pct" binding:"gte=0,lte=100" swaggertype:"string"`
	SeasonalAdjustmentPct decimal.Decimal  `json:"seasonal_adjustment_pct" swaggertype:"string"`
	Adjustment            decimal.Decimal  `json:"adjustment" swaggertype:"string"`
	LoyaltyDiscountPct    *decimal.Decimal `json:"loyalty_discount_pct,omitempty" binding:"omitempty,gte=0,lte=100" swaggertype:"string"`
}

// ArticleLineRequest is one article line of a booking
type ArticleLineRequest struct {
	ArticleID     *uuid.UUID          `json:"article_id,omitempty"`
	Name          string              `json:"name" binding:"max=200" example:"Cotton bales"`
	Quantity      int                 `json:"quantity" binding:"required,min=1" example:"10"`
	Weight        decimal.Decimal     `json:"weight" binding:"gte=0" swaggertype:"string" example:"26"`
	RateType      string              `json:"rate_type,omitempty" binding:"omitempty,oneof=weight unit fixed whichever_higher"`
	RateValue     *decimal.Decimal    `json:"rate_value,omitempty" binding:"omitempty,gte=0" swaggertype:"string"`
	Dimensions    *tariff.Dimensions  `json:"dimensions,omitempty"`
	DeclaredValue decimal.Decimal     `json:"declared_value" binding:"gte=0" swaggertype:"string"`
	Options       *LineOptionsRequest `json:"options,omitempty"`
}

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	OrgID         *uuid.UUID           `json:"org_id,omitempty"`
	BranchID      uuid.UUID            `json:"branch_id" binding:"required"`
	FromBranchID  uuid.UUID            `json:"from_branch_id" binding:"required"`
	ToBranchID    uuid.UUID            `json:"to_branch_id" binding:"required"`
	FromLocation  string               `json:"from_location" binding:"required,max=100" example:"Mumbai"`
	ToLocation    string               `json:"to_location" binding:"required,max=100" example:"Delhi"`
	SenderID      uuid.UUID            `json:"sender_id" binding:"required"`
	ReceiverID    uuid.UUID            `json:"receiver_id" binding:"required"`
	PaymentType   string               `json:"payment_type" binding:"required,oneof=paid to_pay to_be_billed" example:"paid"`
	PickupDate    string               `json:"pickup_date" binding:"required,datetime=2006-01-02" example:"2026-03-10"`
	DeclaredTotal *decimal.Decimal     `json:"declared_total,omitempty" binding:"omitempty,gte=0" swaggertype:"string"`
	ManualRate    *ManualRateRequest   `json:"manual_rate,omitempty"`
	Articles      []ArticleLineRequest `json:"articles" binding:"required,min=1,dive"`
}

// UpdateStatusRequest is the body of PATCH /bookings/:id/status
type UpdateStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=booked loaded in_transit unloaded delivered cancelled" example:"loaded"`
	WorkflowContext string `json:"workflow_context" binding:"omitempty,oneof=loading unloading general" example:"loading"`
	ExpectedStatus  string `json:"expected_status" binding:"required,oneof=booked loaded in_transit unloaded delivered cancelled" example:"booked"`
}

// BookingListRequest holds the query parameters of GET /bookings
type BookingListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,max=50"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=booked loaded in_transit unloaded delivered cancelled"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// RateLookupRequest is the body of POST /rates/lookup
type RateLookupRequest struct {
	OrgID       *uuid.UUID      `json:"org_id,omitempty"`
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	From        string          `json:"from_location" binding:"required,max=100" example:"Mumbai"`
	To          string          `json:"to_location" binding:"required,max=100" example:"Delhi"`
	ArticleID   *uuid.UUID      `json:"article_id,omitempty"`
	Weight      decimal.Decimal `json:"weight" binding:"gte=0" swaggertype:"string" example:"26"`
	Quantity    int             `json:"quantity" binding:"omitempty,min=1" example:"1"`
	BookingDate string          `json:"booking_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r *ManualRateRequest) toInput() *bookingapp.ManualRate {
	if r == nil {
		return nil
	}
	return &bookingapp.ManualRate{
		Basis:         rate.ChargeBasis(r.RateType),
		Value:         r.RateValue,
		MinimumCharge: r.MinimumCharge,
	}
}

func (r ArticleLineRequest) toInput() bookingapp.LineInput {
	line := bookingapp.LineInput{
		ArticleID:     r.ArticleID,
		Name:          r.Name,
		Quantity:      r.Quantity,
		Weight:        r.Weight,
		Dimensions:    r.Dimensions,
		DeclaredValue: r.DeclaredValue,
	}
	if r.RateType != "" && r.RateValue != nil {
		line.ManualRate = &bookingapp.ManualRate{Basis: rate.ChargeBasis(r.RateType), Value: *r.RateValue}
	}
	if o := r.Options; o != nil {
		line.Options = bookingapp.LineOptions{
			LoadingRatePerUnit:    o.LoadingRatePerUnit,
			UnloadingRatePerUnit:  o.UnloadingRatePerUnit,
			FuelSurchargePct:      o.FuelSurchargePct,
			UrgencySurchargePct:   o.UrgencySurchargePct,
			FragilitySurchargePct: o.FragilitySurchargePct,
			SeasonalAdjustmentPct: o.SeasonalAdjustmentPct,
			Adjustment:            o.Adjustment,
			LoyaltyDiscountPct:    o.LoyaltyDiscountPct,
		}
	}
	return line
}

func (r CreateBookingRequest) toInput() bookingapp.CreateBookingInput {
	lines := make([]bookingapp.LineInput, len(r.Articles))
	for i, a := range r.Articles {
		lines[i] = a.toInput()
	}
	return bookingapp.CreateBookingInput{
		OrgID:         r.OrgID,
		BranchID:      r.BranchID,
		FromBranchID:  r.FromBranchID,
		ToBranchID:    r.ToBranchID,
		FromLocation:  r.FromLocation,
		ToLocation:    r.ToLocation,
		SenderID:      r.SenderID,
		ReceiverID:    r.ReceiverID,
		PaymentType:   booking.PaymentType(r.PaymentType),
		PickupDate:    parseDate(r.PickupDate),
		DeclaredTotal: r.DeclaredTotal,
		ManualRate:    r.ManualRate.toInput(),
		Articles:      lines,
	}
}

func (r UpdateStatusRequest) toInput() bookingapp.UpdateStatusInput {
	in := bookingapp.UpdateStatusInput{
		Status:          booking.Status(r.Status),
		WorkflowContext: booking.WorkflowContext(r.WorkflowContext),
		ExpectedStatus:  booking.Status(r.ExpectedStatus),
	}
	if in.WorkflowContext == "" {
		in.WorkflowContext = booking.ContextGeneral
	}
	return in
}

func (r BookingListRequest) toFilter() bookingapp.ListFilter {
	return bookingapp.ListFilter{
		Page:     r.Page,
		PageSize: r.PageSize,
		OrderBy:  r.OrderBy,
		OrderDir: r.OrderDir,
		Search:   r.Search,
		Status:   booking.Status(r.Status),
		FromDate: parseOptionalDate(r.FromDate),
		ToDate:   parseOptionalDate(r.ToDate),
	}
}

func (r RateLookupRequest) toInput() bookingapp.RateLookupInput {
	quantity := r.Quantity
	if quantity == 0 {
		quantity = 1
	}
	in := bookingapp.RateLookupInput{
		OrgID:      r.OrgID,
		CustomerID: r.CustomerID,
		From:       r.From,
		To:         r.To,
		ArticleID:  r.ArticleID,
		Weight:     r.Weight,
		Quantity:   quantity,
	}
	if r.BookingDate != "" {
		in.BookingDate = parseDate(r.BookingDate)
	}
	return in
}
