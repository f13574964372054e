package booking

import (
	"strings"
	"time"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource records where a line's rate came from
type RateSource string

const (
	RateSourceContract RateSource = "contract"
	RateSourceStandard RateSource = "standard"
	RateSourceManual   RateSource = "manual"
	// RateSourceMixed is only used on the booking header
	RateSourceMixed RateSource = "mixed"
)

// IsValid checks if the source is a known line source
func (s RateSource) IsValid() bool {
	switch s {
	case RateSourceContract, RateSourceStandard, RateSourceManual:
		return true
	}
	return false
}

// String returns the string representation of RateSource
func (s RateSource) String() string {
	return string(s)
}

// Article is one priced freight line of a booking
type Article struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	ArticleID        *uuid.UUID
	Description      string
	Quantity         int
	ActualWeight     decimal.Decimal
	ChargedWeight    decimal.Decimal
	RateType         rate.ChargeBasis
	RateValue        decimal.Decimal
	RateSource       RateSource
	SlabID           *uuid.UUID
	FreightAmount    decimal.Decimal
	LoadingCharge    decimal.Decimal
	UnloadingCharge  decimal.Decimal
	SurchargeAmount  decimal.Decimal
	AdjustmentAmount decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	DeclaredValue    decimal.Decimal
	TotalAmount      decimal.Decimal
	CreatedAt        time.Time
}

// LineSpec identifies a line and its pricing source
type LineSpec struct {
	ArticleID     *uuid.UUID
	Description   string
	DeclaredValue decimal.Decimal
	Source        RateSource
	SlabID        *uuid.UUID
}

// NewArticle builds a line from its priced breakdown
func NewArticle(spec LineSpec, line tariff.LineBreakdown) (*Article, error) {
	desc := strings.TrimSpace(spec.Description)
	if desc == "" && spec.ArticleID == nil {
		return nil, shared.NewValidationError("article line needs an article_id or a name")
	}
	if len(desc) > 200 {
		return nil, shared.NewValidationError("article name cannot exceed 200 characters")
	}
	if !spec.Source.IsValid() {
		return nil, shared.NewValidationError("unknown rate source " + spec.Source.String())
	}
	if line.Quantity <= 0 || !line.ActualWeight.IsPositive() {
		return nil, shared.NewValidationError("quantity and weight must be positive")
	}
	if line.ChargedWeight.LessThan(line.ActualWeight) {
		return nil, shared.NewValidationError("charged weight cannot be below actual weight")
	}
	if spec.DeclaredValue.IsNegative() {
		return nil, shared.NewValidationError("declared value cannot be negative")
	}
	if err := checkStoredLine(spec, line); err != nil {
		return nil, err
	}

	return &Article{
		ID:               uuid.New(),
		ArticleID:        spec.ArticleID,
		Description:      desc,
		Quantity:         line.Quantity,
		ActualWeight:     line.ActualWeight,
		ChargedWeight:    line.ChargedWeight,
		RateType:         line.Basis,
		RateValue:        line.RateValue,
		RateSource:       spec.Source,
		SlabID:           spec.SlabID,
		FreightAmount:    line.FreightAmount,
		LoadingCharge:    line.LoadingCharge,
		UnloadingCharge:  line.UnloadingCharge,
		SurchargeAmount:  line.SurchargeAmount,
		AdjustmentAmount: line.AdjustmentAmount,
		DiscountAmount:   line.DiscountAmount,
		TaxAmount:        line.TaxAmount,
		DeclaredValue:    spec.DeclaredValue,
		TotalAmount:      line.Total,
		CreatedAt:        time.Now(),
	}, nil
}

func checkStoredLine(spec LineSpec, line tariff.LineBreakdown) error {
	if err := shared.WeightColumn.Check("weight", line.ActualWeight); err != nil {
		return err
	}
	if err := shared.WeightColumn.Check("charged weight", line.ChargedWeight); err != nil {
		return err
	}
	if err := shared.RateColumn.Check("rate value", line.RateValue); err != nil {
		return err
	}
	money := []struct {
		name  string
		value decimal.Decimal
	}{
		{"declared value", spec.DeclaredValue},
		{"freight amount", line.FreightAmount},
		{"loading charge", line.LoadingCharge},
		{"unloading charge", line.UnloadingCharge},
		{"surcharge amount", line.SurchargeAmount},
		{"adjustment amount", line.AdjustmentAmount},
		{"discount amount", line.DiscountAmount},
		{"tax amount", line.TaxAmount},
		{"line total", line.Total},
	}
	for _, m := range money {
		if err := shared.MoneyColumn.Check(m.name, m.value); err != nil {
			return err
		}
	}
	return nil
}
