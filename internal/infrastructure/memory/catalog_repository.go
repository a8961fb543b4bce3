package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/citrus-stock/internal/domain"
	"github.com/jhoicas/citrus-stock/internal/domain/entity"
	"github.com/jhoicas/citrus-stock/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el repositorio.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if p.SKU != "" && existing.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	c := *p
	r.s.products[p.ID] = &c
	r.s.track(p.ID)
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
	}
	c := *p
	r.s.products[p.ID] = &c
	return nil
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.products))
	for id := range r.s.products {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		c := *r.s.products[id]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

// Delete quita la referencia en las partidas (ON DELETE SET NULL).
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	for bid, b := range r.s.batches {
		if b.ProductID == id {
			c := cloneBatch(b)
			c.ProductID = ""
			r.s.batches[bid] = c
		}
	}
	return nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

// NewSupplierRepository construye el repositorio.
func NewSupplierRepository(s *Store) *SupplierRepo { return &SupplierRepo{s: s} }

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *sup
	r.s.suppliers[sup.ID] = &c
	r.s.track(sup.ID)
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok {
		return nil, nil
	}
	c := *sup
	return &c, nil
}

func (r *SupplierRepo) Update(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.suppliers[sup.ID]; !ok {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, sup.ID)
	}
	c := *sup
	r.s.suppliers[sup.ID] = &c
	return nil
}

func (r *SupplierRepo) List(_ context.Context, limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.suppliers))
	for id := range r.s.suppliers {
		ids = append(ids, id)
	}
	r.s.sortByInsertion(ids)
	out := make([]*entity.Supplier, 0, len(ids))
	for _, id := range ids {
		c := *r.s.suppliers[id]
		out = append(out, &c)
	}
	return page(out, limit, offset), nil
}

// Delete quita la referencia en las partidas (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.suppliers, id)
	for bid, b := range r.s.batches {
		if b.SupplierID == id {
			c := cloneBatch(b)
			c.SupplierID = ""
			r.s.batches[bid] = c
		}
	}
	return nil
}
