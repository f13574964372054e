package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Query describes one freight line to price
type Query struct {
	OrgID           uuid.UUID
	CustomerID      uuid.UUID
	From            string
	To              string
	ArticleID       *uuid.UUID
	ArticleCategory string
	Weight          decimal.Decimal
	BookingDate     time.Time
}

// ResolutionKind tells the caller which pricing source applies
type ResolutionKind string

const (
	// ResolutionContractSlab means a contract slab priced the line
	ResolutionContractSlab ResolutionKind = "contract_slab"
	// ResolutionNoContractRate means a usable contract exists but no slab matched
	ResolutionNoContractRate ResolutionKind = "no_contract_rate"
	// ResolutionNoContract means the customer has no usable contract
	ResolutionNoContract ResolutionKind = "no_contract"
)

// Resolution is the outcome of rate resolution
type Resolution struct {
	Kind     ResolutionKind
	Contract *RateContract
	Slab     *RateSlab
}

// HasContract reports whether a usable contract was found
func (r Resolution) HasContract() bool {
	return r.Contract != nil
}

// HasRate reports whether a contract slab priced the query
func (r Resolution) HasRate() bool {
	return r.Kind == ResolutionContractSlab && r.Slab != nil
}

// Rate returns the slab rate; only meaningful when HasRate is true
func (r Resolution) Rate() Rate {
	if r.Slab == nil {
		return Rate{}
	}
	return r.Slab.Rate()
}

// Message is a short human-readable description of the outcome
func (r Resolution) Message() string {
	switch r.Kind {
	case ResolutionContractSlab:
		return fmt.Sprintf("Contract rate from %s", r.Contract.ContractNumber)
	case ResolutionNoContractRate:
		return fmt.Sprintf("Contract %s has no rate for this route and weight; standard rate applies", r.Contract.ContractNumber)
	default:
		return "No active contract; standard rate applies"
	}
}

// SelectSlab picks the most specific slab across the usable contracts.
// Ranking: article match, then category match, then wildcard; a narrower
// weight band breaks ties. An unbroken tie returns ErrAmbiguousRate.
func SelectSlab(contracts []*RateContract, q Query) (Resolution, error) {
	usable := make([]*RateContract, 0, len(contracts))
	for _, c := range contracts {
		if c != nil && c.IsUsableOn(q.BookingDate) {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return Resolution{Kind: ResolutionNoContract}, nil
	}

	var (
		best         *RateSlab
		bestContract *RateContract
		tied         bool
	)
	for _, c := range usable {
		for i := range c.Slabs {
			s := &c.Slabs[i]
			if !s.Matches(q) {
				continue
			}
			switch cmp := compareSlabs(s, best); {
			case cmp > 0:
				best, bestContract, tied = s, c, false
			case cmp == 0:
				tied = true
			}
		}
	}

	if best == nil {
		return Resolution{Kind: ResolutionNoContractRate, Contract: usable[0]}, nil
	}
	if tied {
		return Resolution{}, shared.NewDomainError(shared.CodeAmbiguousRate,
			fmt.Sprintf("more than one equally specific slab matches %s -> %s at weight %s",
				q.From, q.To, q.Weight.String()))
	}
	return Resolution{Kind: ResolutionContractSlab, Contract: bestContract, Slab: best}, nil
}

// compareSlabs returns >0 when a outranks b, 0 on a tie and <0 otherwise.
// A nil b always loses.
func compareSlabs(a, b *RateSlab) int {
	if b == nil {
		return 1
	}
	if d := a.Specificity() - b.Specificity(); d != 0 {
		return d
	}
	// Narrower band wins.
	return b.WeightSpan().Cmp(a.WeightSpan())
}

// ContractFinder loads the contracts that may price a customer's bookings
type ContractFinder interface {
	FindActiveForCustomer(ctx context.Context, orgID, customerID uuid.UUID, on time.Time) ([]*RateContract, error)
}

// Resolver resolves rates against stored contracts
type Resolver struct {
	contracts ContractFinder
}

// NewResolver creates a resolver backed by the given contract source
func NewResolver(contracts ContractFinder) *Resolver {
	return &Resolver{contracts: contracts}
}

// Resolve validates the query, loads candidate contracts and selects a slab
func (r *Resolver) Resolve(ctx context.Context, q Query) (Resolution, error) {
	if err := q.Validate(); err != nil {
		return Resolution{}, err
	}
	contracts, err := r.contracts.FindActiveForCustomer(ctx, q.OrgID, q.CustomerID, DateOf(q.BookingDate))
	if err != nil {
		return Resolution{}, err
	}
	return SelectSlab(contracts, q)
}

// Validate checks the query shape
func (q Query) Validate() error {
	if q.OrgID == uuid.Nil || q.CustomerID == uuid.Nil {
		return shared.NewValidationError("org_id and customer_id are required")
	}
	if q.From == "" || q.To == "" {
		return shared.NewValidationError("from and to locations are required")
	}
	if !q.Weight.IsPositive() {
		return shared.NewValidationError("weight must be positive")
	}
	if q.BookingDate.IsZero() {
		return shared.NewValidationError("booking date is required")
	}
	return nil
}
