package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
	"github.com/timmiekettle/tk2/internal/shared"
)

// ErrCompanyRequired is raised for a Ghana customer with a receivable account
// but no company to attach it to.
var ErrCompanyRequired = httpx.Userf(httpx.ErrValidation, "company is required when adding a default account for a Ghana customer")

type Service struct {
	repo  Repository
	audit shared.AuditRecorder
	now   func() time.Time
}

func NewService(repo Repository, audit shared.AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// Search returns the name of the first customer matching email, then mobile.
// ok is false when nothing matched or neither argument was given.
func (s *Service) Search(ctx context.Context, req SearchCustomerRequest) (string, bool, error) {
	if email := strings.TrimSpace(req.Email); email != "" {
		name, err := s.repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return name, true, nil
		case !errors.Is(err, ErrNotFound):
			return "", false, fmt.Errorf("search by email: %w", err)
		}
	}
	if candidates := mobileCandidates(req.Mobile); len(candidates) > 0 {
		name, err := s.repo.FindByMobile(ctx, candidates)
		switch {
		case err == nil:
			return name, true, nil
		case !errors.Is(err, ErrNotFound):
			return "", false, fmt.Errorf("search by mobile: %w", err)
		}
	}
	return "", false, nil
}

// Create inserts a customer and returns its name.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (string, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return "", httpx.Userf(httpx.ErrValidation, "customer_name is required")
	}

	customer := Customer{
		Name:            name,
		CustomerName:    name,
		CustomerGroup:   DefaultGroup,
		Territory:       DefaultTerritory,
		Country:         strings.TrimSpace(req.Country),
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(req.BillingCurrency)),
		EmailID:         strings.TrimSpace(req.Email),
		MobileNo:        strings.TrimSpace(req.Mobile),
		CreatedAt:       s.now(),
	}
	if e164, ok := NormalizeMobile(customer.MobileNo, regionFor(customer.Country)); ok {
		customer.MobileNo = e164
	}
	if actor, ok := shared.ActorFromContext(ctx); ok {
		customer.Owner = actor.Caller()
	}

	if customer.Country == Ghana {
		customer.Territory = Ghana
		if account := strings.TrimSpace(req.DefaultAccount); account != "" {
			company := strings.TrimSpace(req.Company)
			if company == "" {
				return "", ErrCompanyRequired
			}
			customer.Accounts = append(customer.Accounts, PartyAccount{Company: company, Account: account})
		}
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Create(ctx, customer)
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "customer.create",
			Entity:   "Customer",
			EntityID: customer.Name,
			Meta:     map[string]any{"territory": customer.Territory, "accounts": len(customer.Accounts)},
		})
	}
	return customer.Name, nil
}
