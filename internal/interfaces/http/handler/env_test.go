package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	eventapp "github.com/freightcore/backend/internal/application/event"
	"github.com/freightcore/backend/internal/application/identity"
	mdapp "github.com/freightcore/backend/internal/application/masterdata"
	rateapp "github.com/freightcore/backend/internal/application/rate"
	"github.com/freightcore/backend/internal/domain/booking"
	domainidentity "github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/auth"
	"github.com/freightcore/backend/internal/infrastructure/config"
	"github.com/freightcore/backend/internal/infrastructure/event"
	"github.com/freightcore/backend/internal/infrastructure/persistence"
	"github.com/freightcore/backend/internal/interfaces/http/dto"
	"github.com/freightcore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
	domainidentity.PasswordCost = bcrypt.MinCost
}

const testPassword = "correct-horse"

// testEnv is the API backed by an in-memory SQLite database
type testEnv struct {
	t        *testing.T
	router   *gin.Engine
	jwt      *auth.JWTService
	orgID    uuid.UUID
	mumbai   *masterdata.Branch
	delhi    *masterdata.Branch
	sender   *masterdata.Customer
	recv     *masterdata.Customer
	users    map[tenancy.Role]*domainidentity.User
	tokens   map[tenancy.Role]string
	outsider string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	ctx := context.Background()

	db, err := persistence.Open(sqlite.Open(":memory:"), persistence.Options{Logger: log})
	require.NoError(t, err)
	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	outbox := event.NewOutboxPublisher(event.NewDomainEventSerializer())
	orgs := persistence.NewGormOrganizationRepository(db.DB)
	branches := persistence.NewGormBranchRepository(db.DB)
	customers := persistence.NewGormCustomerRepository(db.DB)
	articles := persistence.NewGormArticleRepository(db.DB)
	contracts := persistence.NewGormRateContractRepository(db.DB, outbox)
	bookings := persistence.NewGormBookingRepository(db.DB, outbox, booking.NewLRNumberFormat(3))
	users := persistence.NewGormUserRepository(db.DB, outbox)

	jwtCfg := config.JWTConfig{
		Secret:                "handler-test-secret-handler-test-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "freightcore-test",
		MaxLoginAttempts:      3,
		LockoutDuration:       15 * time.Minute,
	}
	jwtService := auth.NewJWTService(jwtCfg)
	guard := tenancy.NewGuard()
	calculator, err := tariff.NewCalculator(tariff.DefaultPolicy())
	require.NoError(t, err)

	bookingSvc := bookingapp.NewBookingService(bookingapp.BookingServiceConfig{
		Bookings:   bookings,
		Resolver:   rate.NewResolver(contracts),
		Calculator: calculator,
		Guard:      guard,
		Branches:   branches,
		Customers:  customers,
		Articles:   articles,
		Logger:     log,
	})
	contractSvc := rateapp.NewContractService(contracts, customers, articles, guard, log)

	env := &testEnv{
		t:      t,
		jwt:    jwtService,
		users:  map[tenancy.Role]*domainidentity.User{},
		tokens: map[tenancy.Role]string{},
	}

	org, err := masterdata.NewOrganization("Konkan Freight", "KFL")
	require.NoError(t, err)
	require.NoError(t, orgs.Create(ctx, org))
	env.orgID = org.ID

	env.mumbai, err = masterdata.NewBranch(org.ID, "Mumbai Central", "MUM", "Mumbai")
	require.NoError(t, err)
	require.NoError(t, branches.Create(ctx, env.mumbai))
	env.delhi, err = masterdata.NewBranch(org.ID, "Delhi Hub", "DEL", "Delhi")
	require.NoError(t, err)
	require.NoError(t, branches.Create(ctx, env.delhi))

	env.sender, err = masterdata.NewCustomer(org.ID, nil, "Shree Textiles", "+91 98200 12345")
	require.NoError(t, err)
	require.NoError(t, customers.Create(ctx, env.sender))
	env.recv, err = masterdata.NewCustomer(org.ID, nil, "Capital Traders", "+91 98100 54321")
	require.NoError(t, err)
	require.NoError(t, customers.Create(ctx, env.recv))

	for _, role := range []tenancy.Role{tenancy.RoleOperator, tenancy.RoleAdmin, tenancy.RoleOrgAdmin} {
		u, err := domainidentity.NewUser(org.ID, env.mumbai.ID, "mumbai."+role.String(), testPassword, role)
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, u))
		env.users[role] = u
		env.tokens[role] = env.issue(u.Principal(), u.Username)
	}
	env.outsider = env.issue(tenancy.Principal{
		UserID:   uuid.New(),
		OrgID:    uuid.New(),
		BranchID: uuid.New(),
		Role:     tenancy.RoleOrgAdmin,
	}, "outsider")

	admin := env.users[tenancy.RoleAdmin].Principal()
	contract, err := contractSvc.Create(ctx, admin, rateapp.CreateContractInput{
		CustomerID:     env.sender.ID,
		ContractNumber: "RC-2026-001",
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
	_, err = contractSvc.Activate(ctx, admin, nil, contract.ID)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestID())
	system := NewSystemHandler(sqlDB, eventapp.NewOutboxService(event.NewGormOutboxRepository(db.DB), guard, log), "test")
	r.GET("/health", system.Health)

	api := r.Group("/api/v1")
	api.POST("/auth/login", NewAuthHandler(identity.NewAuthService(users, jwtService, jwtCfg, log)).Login)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(jwtService))
	bh := NewBookingHandler(bookingSvc)
	protected.POST("/bookings", bh.Create)
	protected.GET("/bookings", bh.List)
	protected.GET("/bookings/lr/:lr_number", bh.GetByLRNumber)
	protected.GET("/bookings/:id", bh.Get)
	protected.PATCH("/bookings/:id/status", bh.UpdateStatus)
	protected.POST("/bookings/:id/articles", bh.AddArticle)
	protected.GET("/bookings/:id/history", bh.History)
	protected.POST("/rates/lookup", bh.LookupRate)

	ch := NewRateContractHandler(contractSvc)
	protected.POST("/rate-contracts", ch.Create)
	protected.GET("/rate-contracts", ch.List)
	protected.GET("/rate-contracts/:id", ch.Get)
	protected.POST("/rate-contracts/:id/slabs", ch.AddSlab)
	protected.POST("/rate-contracts/:id/activate", ch.Activate)
	protected.POST("/rate-contracts/:id/terminate", ch.Terminate)

	mh := NewMasterDataHandler(
		mdapp.NewBranchService(branches, guard, log),
		mdapp.NewCustomerService(customers, branches, guard, log),
		mdapp.NewArticleService(articles, branches, guard, log),
	)
	protected.POST("/branches", mh.CreateBranch)
	protected.GET("/branches", mh.ListBranches)
	protected.POST("/customers", mh.CreateCustomer)
	protected.GET("/customers", mh.ListCustomers)
	protected.POST("/articles", mh.CreateArticle)
	protected.GET("/articles", mh.ListArticles)

	uh := NewUserHandler(identity.NewUserService(users, branches, guard, log))
	protected.POST("/users", uh.Create)
	protected.GET("/users", uh.List)
	protected.PUT("/users/:id/role", uh.ChangeRole)
	protected.GET("/system/outbox", system.OutboxStats)

	env.router = r
	return env
}

func (e *testEnv) issue(p tenancy.Principal, username string) string {
	e.t.Helper()
	tok, err := e.jwt.Issue(p, username)
	require.NoError(e.t, err)
	return tok.Token
}

// do sends a request with an optional JSON body and bearer token
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the data field of a success envelope
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

// errorOf unmarshals the error field of a failure envelope
func errorOf(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return *resp.Error
}

func today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

// bookingBody is a Mumbai to Delhi booking priced by the seeded contract
func (e *testEnv) bookingBody() map[string]any {
	return map[string]any{
		"branch_id":      e.mumbai.ID,
		"from_branch_id": e.mumbai.ID,
		"to_branch_id":   e.delhi.ID,
		"from_location":  "Mumbai",
		"to_location":    "Delhi",
		"sender_id":      e.sender.ID,
		"receiver_id":    e.recv.ID,
		"payment_type":   "paid",
		"pickup_date":    today(),
		"articles": []map[string]any{{
			"name":     "Cotton bales",
			"quantity": 1,
			"weight":   "26",
		}},
	}
}

func (e *testEnv) createBooking() bookingapp.BookingResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/bookings", e.tokens[tenancy.RoleOperator], e.bookingBody())
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[bookingapp.BookingResponse](e.t, w)
}

func jsonUnmarshal(w *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}
