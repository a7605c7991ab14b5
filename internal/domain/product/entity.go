package product

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrOutOfStock = errors.New("product is out of stock")

type Product struct {
	id          uuid.UUID
	storeID     uuid.UUID
	name        string
	description string
	category    string
	priceCents  int64
	costPoints  int64
	stock       int64
	imageURL    string
	createdAt   time.Time
	updatedAt   time.Time
}

type Attributes struct {
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int64
	ImageURL    string
}

func NewProduct(storeID uuid.UUID, attrs Attributes, now time.Time) (*Product, error) {
	p := &Product{
		id:        uuid.New(),
		storeID:   storeID,
		createdAt: now,
	}
	if err := p.apply(attrs, now); err != nil {
		return nil, err
	}
	return p, nil
}

func ReconstructProduct(
	id, storeID uuid.UUID,
	name, description, category string,
	priceCents, costPoints, stock int64,
	imageURL string,
	createdAt, updatedAt time.Time,
) *Product {
	return &Product{
		id:          id,
		storeID:     storeID,
		name:        name,
		description: description,
		category:    category,
		priceCents:  priceCents,
		costPoints:  costPoints,
		stock:       stock,
		imageURL:    imageURL,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (p *Product) ID() uuid.UUID        { return p.id }
func (p *Product) StoreID() uuid.UUID   { return p.storeID }
func (p *Product) Name() string         { return p.name }
func (p *Product) Description() string  { return p.description }
func (p *Product) Category() string     { return p.category }
func (p *Product) PriceCents() int64    { return p.priceCents }
func (p *Product) CostPoints() int64    { return p.costPoints }
func (p *Product) Stock() int64         { return p.stock }
func (p *Product) ImageURL() string     { return p.imageURL }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

func (p *Product) IsOwnedBy(storeID uuid.UUID) bool { return p.storeID == storeID }

func (p *Product) InStock() bool { return p.stock > 0 }

// Update replaces every editable attribute; cost is always recomputed from price.
func (p *Product) Update(attrs Attributes, now time.Time) error {
	return p.apply(attrs, now)
}

func (p *Product) Attributes() Attributes {
	return Attributes{
		Name:        p.name,
		Description: p.description,
		Category:    p.category,
		PriceCents:  p.priceCents,
		Stock:       p.stock,
		ImageURL:    p.imageURL,
	}
}

func (p *Product) SetImageURL(url string, now time.Time) {
	p.imageURL = url
	p.updatedAt = now
}

func (p *Product) TakeOne(now time.Time) error {
	if !p.InStock() {
		return ErrOutOfStock
	}
	p.stock--
	p.updatedAt = now
	return nil
}

func (p *Product) apply(attrs Attributes, now time.Time) error {
	name, err := normalizeName(attrs.Name)
	if err != nil {
		return err
	}
	category, err := normalizeCategory(attrs.Category)
	if err != nil {
		return err
	}
	cost, err := CostForPrice(attrs.PriceCents)
	if err != nil {
		return err
	}
	if err := validateStock(attrs.Stock); err != nil {
		return err
	}

	p.name = name
	p.description = attrs.Description
	p.category = category
	p.priceCents = attrs.PriceCents
	p.costPoints = cost
	p.stock = attrs.Stock
	p.imageURL = attrs.ImageURL
	p.updatedAt = now
	return nil
}
