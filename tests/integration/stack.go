package integration

import (
	"context"
	"testing"
	"time"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	eventapp "github.com/freightcore/backend/internal/application/event"
	rateapp "github.com/freightcore/backend/internal/application/rate"
	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/event"
	"github.com/freightcore/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Tenant is one seeded organization: two branches, two customers, an
// operator and an admin at the first branch, and an active contract for the
// sender on the first-to-second branch lane
type Tenant struct {
	Org      *masterdata.Organization
	Origin   *masterdata.Branch
	Dest     *masterdata.Branch
	Sender   *masterdata.Customer
	Receiver *masterdata.Customer
	Operator tenancy.Principal
	Admin    tenancy.Principal
	Contract *rateapp.ContractResponse
}

// Stack is the application layer wired on a real database
type Stack struct {
	DB         *TestDB
	Bookings   *bookingapp.BookingService
	Contracts  *rateapp.ContractService
	Outbox     *eventapp.OutboxService
	OutboxRepo *event.GormOutboxRepository
	Serializer *event.EventSerializer

	orgs      *persistence.GormOrganizationRepository
	branches  *persistence.GormBranchRepository
	customers *persistence.GormCustomerRepository
	users     *persistence.GormUserRepository
}

// NewStack migrates a fresh database and wires the services over it
func NewStack(t *testing.T) *Stack {
	t.Helper()
	tdb := NewTestDB(t)
	log := zaptest.NewLogger(t)

	serializer := event.NewDomainEventSerializer()
	outbox := event.NewOutboxPublisher(serializer)
	branches := persistence.NewGormBranchRepository(tdb.DB)
	customers := persistence.NewGormCustomerRepository(tdb.DB)
	articles := persistence.NewGormArticleRepository(tdb.DB)
	contracts := persistence.NewGormRateContractRepository(tdb.DB, outbox)
	bookings := persistence.NewGormBookingRepository(tdb.DB, outbox, booking.NewLRNumberFormat(3))
	outboxRepo := event.NewGormOutboxRepository(tdb.DB)

	calculator, err := tariff.NewCalculator(tariff.DefaultPolicy())
	require.NoError(t, err)
	guard := tenancy.NewGuard()

	bookingService := bookingapp.NewBookingService(bookingapp.BookingServiceConfig{
		Bookings:   bookings,
		Resolver:   rate.NewResolver(contracts),
		Calculator: calculator,
		Guard:      guard,
		Branches:   branches,
		Customers:  customers,
		Articles:   articles,
		Logger:     log,
	})

	return &Stack{
		DB:         tdb,
		Bookings:   bookingService,
		Contracts:  rateapp.NewContractService(contracts, customers, articles, guard, log),
		Outbox:     eventapp.NewOutboxService(outboxRepo, guard, log),
		OutboxRepo: outboxRepo,
		Serializer: serializer,
		orgs:       persistence.NewGormOrganizationRepository(tdb.DB),
		branches:   branches,
		customers:  customers,
		users:      persistence.NewGormUserRepository(tdb.DB, outbox),
	}
}

// SeedTenant creates an organization with the fixture described on Tenant
func (s *Stack) SeedTenant(t *testing.T, name, code string) *Tenant {
	t.Helper()
	ctx := context.Background()

	org, err := masterdata.NewOrganization(name, code)
	require.NoError(t, err)
	require.NoError(t, s.orgs.Create(ctx, org))

	tn := &Tenant{Org: org}
	tn.Origin, err = masterdata.NewBranch(org.ID, "Mumbai Central", "MUM", "Mumbai")
	require.NoError(t, err)
	require.NoError(t, s.branches.Create(ctx, tn.Origin))
	tn.Dest, err = masterdata.NewBranch(org.ID, "Delhi Hub", "DEL", "Delhi")
	require.NoError(t, err)
	require.NoError(t, s.branches.Create(ctx, tn.Dest))

	tn.Sender, err = masterdata.NewCustomer(org.ID, nil, "Shree Textiles", "+91 98200 12345")
	require.NoError(t, err)
	require.NoError(t, s.customers.Create(ctx, tn.Sender))
	tn.Receiver, err = masterdata.NewCustomer(org.ID, nil, "Capital Traders", "+91 98100 54321")
	require.NoError(t, err)
	require.NoError(t, s.customers.Create(ctx, tn.Receiver))

	tn.Operator = s.seedUser(t, org.ID, tn.Origin.ID, code+".operator", tenancy.RoleOperator)
	tn.Admin = s.seedUser(t, org.ID, tn.Origin.ID, code+".admin", tenancy.RoleAdmin)

	tn.Contract, err = s.Contracts.Create(ctx, tn.Admin, rateapp.CreateContractInput{
		CustomerID:     tn.Sender.ID,
		ContractNumber: "RC-" + code + "-001",
		ValidFrom:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:     time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC),
		Slabs: []rate.SlabInput{{
			FromLocation: "Mumbai",
			ToLocation:   "Delhi",
			WeightFrom:   decimal.Zero,
			WeightTo:     decimal.NewFromInt(50),
			ChargeBasis:  rate.ChargeBasisWeight,
			RatePerKg:    decimal.NewFromInt(50),
		}},
	})
	require.NoError(t, err)
	_, err = s.Contracts.Activate(ctx, tn.Admin, nil, tn.Contract.ID)
	require.NoError(t, err)
	return tn
}

func (s *Stack) seedUser(t *testing.T, orgID, branchID uuid.UUID, username string, role tenancy.Role) tenancy.Principal {
	t.Helper()
	u, err := identity.NewUser(orgID, branchID, username, "correct-horse", role)
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), u))
	return u.Principal()
}

// BookingInput is a 26 kg Mumbai to Delhi shipment priced by the contract
func (tn *Tenant) BookingInput() bookingapp.CreateBookingInput {
	return bookingapp.CreateBookingInput{
		BranchID:     tn.Origin.ID,
		FromBranchID: tn.Origin.ID,
		ToBranchID:   tn.Dest.ID,
		FromLocation: "Mumbai",
		ToLocation:   "Delhi",
		SenderID:     tn.Sender.ID,
		ReceiverID:   tn.Receiver.ID,
		PaymentType:  booking.PaymentPaid,
		PickupDate:   time.Now().UTC(),
		Articles: []bookingapp.LineInput{{
			Name:     "Cotton bales",
			Quantity: 1,
			Weight:   decimal.NewFromInt(26),
		}},
	}
}
