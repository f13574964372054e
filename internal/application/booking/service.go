// Package booking orchestrates booking creation, status changes and line
// additions: authorization, rate resolution, pricing, the status state
// machine and one persistence unit per mutation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/logger"
	"github.com/freightcore/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RateResolver finds the pricing source for a line
type RateResolver interface {
	Resolve(ctx context.Context, q rate.Query) (rate.Resolution, error)
}

// BookingServiceConfig holds the dependencies of the booking service
type BookingServiceConfig struct {
	Bookings   booking.Repository
	Resolver   RateResolver
	Calculator *tariff.Calculator
	Guard      *tenancy.Guard
	Branches   masterdata.BranchRepository
	Customers  masterdata.CustomerRepository
	Articles   masterdata.ArticleRepository
	Metrics    *telemetry.BookingMetrics
	Logger     *zap.Logger
	// Location is the business timezone used to decide what "today" is
	Location *time.Location
	Now      func() time.Time
}

// BookingService handles booking operations
type BookingService struct {
	bookings   booking.Repository
	resolver   RateResolver
	calculator *tariff.Calculator
	guard      *tenancy.Guard
	branches   masterdata.BranchRepository
	customers  masterdata.CustomerRepository
	articles   masterdata.ArticleRepository
	metrics    *telemetry.BookingMetrics
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(cfg BookingServiceConfig) *BookingService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	guard := cfg.Guard
	if guard == nil {
		guard = tenancy.NewGuard()
	}
	return &BookingService{
		bookings:   cfg.Bookings,
		resolver:   cfg.Resolver,
		calculator: cfg.Calculator,
		guard:      guard,
		branches:   cfg.Branches,
		customers:  cfg.Customers,
		articles:   cfg.Articles,
		metrics:    cfg.Metrics,
		logger:     log,
		location:   loc,
		now:        now,
	}
}

// pricedLine is one line after rate selection and pricing
type pricedLine struct {
	article   *booking.Article
	breakdown tariff.LineBreakdown
	contract  *rate.RateContract
}

// Create validates, prices and stores a new booking with its lines
func (s *BookingService) Create(ctx context.Context, p tenancy.Principal, in CreateBookingInput) (*BookingResponse, error) {
	b, err := s.create(ctx, p, in)
	if err != nil {
		s.rejected(ctx, "create", err)
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("lr_number", b.LRNumber),
		zap.String("rate_source", b.RateSource.String()),
		zap.String("total_amount", b.TotalAmount.StringFixed(tariff.MoneyPlaces)),
	)
	resp := ToBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) create(ctx context.Context, p tenancy.Principal, in CreateBookingInput) (*booking.Booking, error) {
	if !p.Valid() {
		return nil, shared.ErrUnauthorized
	}
	b, err := booking.NewBooking(p.OrgFor(in.OrgID), p.UserID, booking.Header{
		BranchID:     in.BranchID,
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		FromLocation: in.FromLocation,
		ToLocation:   in.ToLocation,
		SenderID:     in.SenderID,
		ReceiverID:   in.ReceiverID,
		PaymentType:  in.PaymentType,
		PickupDate:   in.PickupDate,
	}, s.today())
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(p, tenancy.ActionCreate, b.Scope()); err != nil {
		return nil, err
	}
	if len(in.Articles) == 0 {
		return nil, shared.NewValidationError("a booking needs at least one article")
	}
	if err := s.checkReferences(ctx, b); err != nil {
		return nil, err
	}

	lines := make([]*booking.Article, 0, len(in.Articles))
	breakdowns := make([]tariff.LineBreakdown, 0, len(in.Articles))
	var contractID *uuid.UUID
	for i, line := range in.Articles {
		priced, err := s.priceLine(ctx, b, line, in.ManualRate)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i+1, err)
		}
		lines = append(lines, priced.article)
		breakdowns = append(breakdowns, priced.breakdown)
		if contractID == nil && priced.contract != nil {
			id := priced.contract.ID
			contractID = &id
		}
	}

	totals := s.calculator.Aggregate(breakdowns)
	if err := tariff.VerifyDeclaredTotal(in.DeclaredTotal, totals); err != nil {
		return nil, err
	}
	if err := b.AttachLines(lines, contractID); err != nil {
		return nil, err
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// checkReferences verifies that the booking's branches and parties belong to its organization
func (s *BookingService) checkReferences(ctx context.Context, b *booking.Booking) error {
	seen := make(map[uuid.UUID]bool, 3)
	for _, id := range []uuid.UUID{b.BranchID, b.FromBranchID, b.ToBranchID} {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.branches.FindByID(ctx, b.OrgID, id); err != nil {
			return referenceError(err, "branch", id)
		}
	}
	for _, id := range []uuid.UUID{b.SenderID, b.ReceiverID} {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.customers.FindByID(ctx, b.OrgID, id); err != nil {
			return referenceError(err, "customer", id)
		}
	}
	return nil
}

// referenceError turns a missing reference into a validation error so that
// the booking itself is not reported as missing
func referenceError(err error, kind string, id uuid.UUID) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewValidationError(fmt.Sprintf("%s %s does not exist in this organization", kind, id))
	}
	return err
}

// priceLine selects a rate for one line and prices it. Rate order: contract
// slab, the line's manual rate, the booking's manual rate, article standard rate.
func (s *BookingService) priceLine(ctx context.Context, b *booking.Booking, line LineInput, headerRate *ManualRate) (pricedLine, error) {
	if line.Quantity <= 0 || !line.Weight.IsPositive() {
		return pricedLine{}, shared.NewValidationError("quantity and weight must be positive")
	}
	if err := shared.WeightColumn.Check("weight", line.Weight); err != nil {
		return pricedLine{}, err
	}
	for _, m := range []*ManualRate{line.ManualRate, headerRate} {
		if m == nil {
			continue
		}
		if err := m.Rate().Validate(); err != nil {
			return pricedLine{}, err
		}
	}

	var master *masterdata.Article
	if line.ArticleID != nil {
		a, err := s.articles.FindByID(ctx, b.OrgID, *line.ArticleID)
		if err != nil {
			return pricedLine{}, referenceError(err, "article", *line.ArticleID)
		}
		if !a.IsActive {
			return pricedLine{}, shared.NewValidationError(fmt.Sprintf("article %s is inactive", a.ID))
		}
		master = a
	}

	q := rate.Query{
		OrgID:       b.OrgID,
		CustomerID:  b.BillingCustomerID,
		From:        b.FromLocation,
		To:          b.ToLocation,
		ArticleID:   line.ArticleID,
		Weight:      s.calculator.ChargedWeight(line.Quantity, line.Weight, line.Dimensions),
		BookingDate: b.PickupDate,
	}
	if master != nil {
		q.ArticleCategory = master.Category
	}
	res, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return pricedLine{}, err
	}
	s.metrics.RateResolved(ctx, string(res.Kind))

	r, source, slabID, err := selectRate(res, master, line.ManualRate, headerRate)
	if err != nil {
		return pricedLine{}, err
	}

	breakdown, err := s.calculator.PriceLine(r, tariff.LineInput{
		Quantity:     line.Quantity,
		ActualWeight: line.Weight,
		Dimensions:   line.Dimensions,
		Options:      lineOptions(line.Options, master, res.Contract),
	})
	if err != nil {
		return pricedLine{}, err
	}

	name := line.Name
	if name == "" && master != nil {
		name = master.Name
	}
	article, err := booking.NewArticle(booking.LineSpec{
		ArticleID:     line.ArticleID,
		Description:   name,
		DeclaredValue: line.DeclaredValue,
		Source:        source,
		SlabID:        slabID,
	}, breakdown)
	if err != nil {
		return pricedLine{}, err
	}

	out := pricedLine{article: article, breakdown: breakdown}
	if source == booking.RateSourceContract {
		out.contract = res.Contract
	}
	return out, nil
}

func selectRate(res rate.Resolution, master *masterdata.Article, lineRate, headerRate *ManualRate) (rate.Rate, booking.RateSource, *uuid.UUID, error) {
	switch {
	case res.HasRate():
		slabID := res.Slab.ID
		return res.Rate(), booking.RateSourceContract, &slabID, nil
	case lineRate != nil:
		return lineRate.Rate(), booking.RateSourceManual, nil, nil
	case headerRate != nil:
		return headerRate.Rate(), booking.RateSourceManual, nil, nil
	case master != nil && master.HasStandardRate():
		return master.StandardRate(), booking.RateSourceStandard, nil, nil
	}
	return rate.Rate{}, "", nil, shared.NewDomainError(shared.CodeNoApplicableRate,
		"no contract rate or standard rate applies; a manual rate is required")
}

// lineOptions maps request options to tariff options. Without an explicit
// loyalty discount, the contract's base discount applies.
func lineOptions(o LineOptions, master *masterdata.Article, contract *rate.RateContract) tariff.Options {
	opts := tariff.Options{
		LoadingRatePerUnit:    o.LoadingRatePerUnit,
		UnloadingRatePerUnit:  o.UnloadingRatePerUnit,
		FuelSurchargePct:      o.FuelSurchargePct,
		UrgencySurchargePct:   o.UrgencySurchargePct,
		FragilitySurchargePct: o.FragilitySurchargePct,
		SeasonalAdjustmentPct: o.SeasonalAdjustmentPct,
		Adjustment:            o.Adjustment,
	}
	if master != nil {
		opts.RequiresSpecialHandling = master.RequiresSpecialHandling
	}
	switch {
	case o.LoyaltyDiscountPct != nil:
		opts.LoyaltyDiscountPct = *o.LoyaltyDiscountPct
	case contract != nil:
		opts.LoyaltyDiscountPct = contract.BaseDiscountPercentage
	}
	return opts
}

// Get returns a booking with its lines
func (s *BookingService) Get(ctx context.Context, p tenancy.Principal, id uuid.UUID) (*BookingResponse, error) {
	b, err := s.load(ctx, p, tenancy.ActionRead, id)
	if err != nil {
		return nil, err
	}
	resp := ToBookingResponse(b)
	return &resp, nil
}

// GetByLRNumber returns a booking by its LR number
func (s *BookingService) GetByLRNumber(ctx context.Context, p tenancy.Principal, lrNumber string) (*BookingResponse, error) {
	b, err := s.bookings.FindByLRNumber(ctx, s.guard.ListScope(p), lrNumber)
	if err != nil {
		return nil, err
	}
	resp := ToBookingResponse(b)
	return &resp, nil
}

// List returns the bookings visible to the caller
func (s *BookingService) List(ctx context.Context, p tenancy.Principal, f ListFilter) (*shared.Paginated[BookingResponse], error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown status %q", f.Status))
	}
	if f.FromDate != nil && f.ToDate != nil && f.ToDate.Before(*f.FromDate) {
		return nil, shared.NewValidationError("to_date cannot be before from_date")
	}

	q := booking.ListQuery{
		Filter: shared.Filter{
			Page:     f.Page,
			PageSize: f.PageSize,
			OrderBy:  f.OrderBy,
			OrderDir: f.OrderDir,
			Search:   f.Search,
		}.Normalize(),
		Status:   f.Status,
		FromDate: f.FromDate,
		ToDate:   f.ToDate,
	}
	page, err := s.bookings.List(ctx, s.guard.ListScope(p), q)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToBookingResponses(page.Items), page.Total, page.Page, page.PageSize)
	return &result, nil
}

// UpdateStatus moves a booking along the state machine
func (s *BookingService) UpdateStatus(ctx context.Context, p tenancy.Principal, id uuid.UUID, in UpdateStatusInput) (*BookingResponse, error) {
	b, err := s.updateStatus(ctx, p, id, in)
	if err != nil {
		s.rejected(ctx, "update_status", err)
		return nil, err
	}
	resp := ToBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) updateStatus(ctx context.Context, p tenancy.Principal, id uuid.UUID, in UpdateStatusInput) (*booking.Booking, error) {
	if !in.ExpectedStatus.IsValid() {
		return nil, shared.NewValidationError("expected_status must be the last observed booking status")
	}
	b, err := s.load(ctx, p, tenancy.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if in.ExpectedStatus != b.Status {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("booking is %s, expected %s", b.Status, in.ExpectedStatus))
	}

	from := b.Status
	change, err := b.ApplyStatus(in.Status, in.WorkflowContext, p.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.UpdateStatus(ctx, b, from, change); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.logger).Info("Booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("from", from.String()),
		zap.String("to", b.Status.String()),
		zap.String("workflow_context", in.WorkflowContext.String()),
	)
	return b, nil
}

// AddArticle prices one more line and adds it to an open booking
func (s *BookingService) AddArticle(ctx context.Context, p tenancy.Principal, id uuid.UUID, in AddArticleInput) (*BookingResponse, error) {
	b, err := s.addArticle(ctx, p, id, in)
	if err != nil {
		s.rejected(ctx, "add_article", err)
		return nil, err
	}
	resp := ToBookingResponse(b)
	return &resp, nil
}

func (s *BookingService) addArticle(ctx context.Context, p tenancy.Principal, id uuid.UUID, in AddArticleInput) (*booking.Booking, error) {
	b, err := s.load(ctx, p, tenancy.ActionUpdate, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot add articles to a %s booking", b.Status))
	}

	priced, err := s.priceLine(ctx, b, in.Line, nil)
	if err != nil {
		return nil, err
	}
	if err := b.AddArticle(priced.article); err != nil {
		return nil, err
	}
	added := b.Articles[len(b.Articles)-1]
	if err := s.bookings.SaveArticles(ctx, b, []booking.Article{added}); err != nil {
		return nil, err
	}
	return b, nil
}

// History returns the status history of a booking, oldest first
func (s *BookingService) History(ctx context.Context, p tenancy.Principal, id uuid.UUID) ([]StatusChangeResponse, error) {
	if _, err := s.load(ctx, p, tenancy.ActionRead, id); err != nil {
		return nil, err
	}
	changes, err := s.bookings.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToStatusChangeResponses(changes), nil
}

// LookupRate reports which rate a line would get. Nothing is enforced here;
// creation resolves again.
func (s *BookingService) LookupRate(ctx context.Context, p tenancy.Principal, in RateLookupInput) (*RateLookupResult, error) {
	if !p.Valid() {
		return nil, shared.ErrUnauthorized
	}
	orgID := p.OrgFor(in.OrgID)
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}
	if err := s.guard.Check(p, tenancy.ActionRead, tenancy.BranchScope(tenancy.ResourceContract, orgID, p.BranchID)); err != nil {
		return nil, err
	}
	if _, err := s.customers.FindByID(ctx, orgID, in.CustomerID); err != nil {
		return nil, err
	}

	var master *masterdata.Article
	q := rate.Query{
		OrgID:       orgID,
		CustomerID:  in.CustomerID,
		From:        in.From,
		To:          in.To,
		ArticleID:   in.ArticleID,
		Weight:      in.Weight,
		BookingDate: in.BookingDate,
	}
	if q.BookingDate.IsZero() {
		q.BookingDate = s.today()
	}
	if in.ArticleID != nil {
		a, err := s.articles.FindByID(ctx, orgID, *in.ArticleID)
		if err != nil {
			return nil, err
		}
		master = a
		q.ArticleCategory = a.Category
	}

	res, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	s.metrics.RateResolved(ctx, string(res.Kind))

	out := &RateLookupResult{
		HasContract:  res.HasContract(),
		HasRate:      res.HasRate(),
		Kind:         string(res.Kind),
		Message:      res.Message(),
		RateContract: toContractSummary(res.Contract),
	}
	if res.HasRate() {
		r := res.Rate()
		slabID := res.Slab.ID
		out.Rate = &r
		out.SlabID = &slabID
	}
	if master != nil && master.HasStandardRate() {
		std := master.StandardRate()
		out.StandardRate = &std
	}

	applied := out.Rate
	if applied == nil {
		applied = out.StandardRate
	}
	if applied != nil && in.Quantity > 0 {
		estimate, err := s.calculator.PriceLine(*applied, tariff.LineInput{
			Quantity:     in.Quantity,
			ActualWeight: in.Weight,
			Options:      lineOptions(LineOptions{}, master, res.Contract),
		})
		if err != nil {
			return nil, err
		}
		out.Estimate = &estimate
	}
	return out, nil
}

// load fetches a booking and authorizes the action; a denial reads as NOT_FOUND
func (s *BookingService) load(ctx context.Context, p tenancy.Principal, action tenancy.Action, id uuid.UUID) (*booking.Booking, error) {
	b, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := s.guard.Authorize(p, action, b.Scope()); !decision.Allowed {
		logger.WithLogger(ctx, s.logger).Debug("Booking access denied",
			zap.String("booking_id", id.String()),
			zap.String("action", string(action)),
			zap.String("reason", string(decision.Reason)),
		)
		return nil, decision.Err()
	}
	return b, nil
}

// today is the current calendar day in the business timezone, as a UTC date
func (s *BookingService) today() time.Time {
	n := s.now().In(s.location)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *BookingService) rejected(ctx context.Context, operation string, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		s.metrics.Rejected(ctx, operation, domainErr.Code)
		return
	}
	logger.WithLogger(ctx, s.logger).Error("Booking operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
}
