package pos

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

type CustomerRequest struct {
	Name    string              `json:"name" binding:"required"`
	Phone   string              `json:"phone"`
	Email   string              `json:"email"`
	Address string              `json:"address"`
	Type    domain.CustomerType `json:"type"`
}

func (r *CustomerRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domain.NewValidationError("name", "required", r.Name)
	}
	if r.Type == "" {
		r.Type = domain.CustomerRegular
	}
	if !r.Type.Valid() {
		return domain.NewValidationError("type", "must be regular or vip", string(r.Type))
	}
	return nil
}

func (s *Service) CreateCustomer(ctx context.Context, req CustomerRequest) (domain.Customer, error) {
	if err := req.validate(); err != nil {
		return domain.Customer{}, err
	}
	return s.store.Customers().Save(ctx, domain.Customer{
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		Type:           req.Type,
		TotalPurchases: decimal.Zero,
	})
}

// UpdateCustomer edits contact details. The purchase aggregate is only
// changed by sale transitions.
func (s *Service) UpdateCustomer(ctx context.Context, id string, req CustomerRequest) (domain.Customer, error) {
	if err := req.validate(); err != nil {
		return domain.Customer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.store.Customers().Get(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Type = req.Type
	return s.store.Customers().Save(ctx, customer)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	return s.store.Customers().Get(ctx, id)
}

// ListCustomers returns customers sorted by name.
func (s *Service) ListCustomers(ctx context.Context, search string) ([]domain.Customer, error) {
	customers, err := s.store.Customers().All(ctx)
	if err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Phone), search) &&
			!strings.Contains(strings.ToLower(c.Email), search) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.store.Customers().Get(ctx, id); err != nil {
		return err
	}
	return s.store.Customers().Delete(ctx, id)
}
