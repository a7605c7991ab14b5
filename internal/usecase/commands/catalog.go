package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"path"
	"time"

	"techpoints/internal/domain/product"
	reqdto "techpoints/internal/handler/dto/request"
	"techpoints/internal/infra"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/pkg/config"
	"techpoints/internal/pkg/errs"
	"techpoints/internal/usecase/queries"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	CatalogActionCreated = "created"
	CatalogActionUpdated = "updated"
	CatalogActionDeleted = "deleted"
	CatalogActionImage   = "image"
)

var (
	ErrImageTooLarge    = errs.New("image too large")
	ErrUnsupportedImage = errs.New("unsupported image type")
)

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type ProductResult struct {
	Product  *queries.ProductView
	Degraded bool
}

type CatalogCommands interface {
	CreateProduct(ctx context.Context, req reqdto.ProductRequest, storeID uuid.UUID) (*ProductResult, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, req reqdto.ProductRequest, storeID uuid.UUID) (*ProductResult, error)
	PatchProduct(ctx context.Context, productID uuid.UUID, req reqdto.ProductPatchRequest, storeID uuid.UUID) (*ProductResult, error)
	DeleteProduct(ctx context.Context, productID, storeID uuid.UUID) error
	UploadImage(ctx context.Context, productID, storeID uuid.UUID, data []byte) (*ProductResult, error)
}

type catalogCommandsImpl struct {
	uow     shared.UnitOfWork
	images  ImageStore
	events  shared.EventPublisher
	clock   clock.Clock
	storage config.StorageConfig
}

func NewCatalogCommands(
	uow shared.UnitOfWork,
	images ImageStore,
	events shared.EventPublisher,
	clock clock.Clock,
	storage config.StorageConfig,
) CatalogCommands {
	return &catalogCommandsImpl{
		uow:     uow,
		images:  images,
		events:  events,
		clock:   clock,
		storage: storage,
	}
}

func (c *catalogCommandsImpl) CreateProduct(ctx context.Context, req reqdto.ProductRequest, storeID uuid.UUID) (*ProductResult, error) {
	var result *ProductResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := c.clock.Now()

		p, err := product.NewProduct(storeID, req.ToDomain(), now)
		if err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, p); err != nil {
			if infra.IsKind(err, infra.KindForeignKeyViolated) {
				return errs.ErrNotAuthorized
			}
			return err
		}
		if err := c.enqueue(ctx, tx, p, CatalogActionCreated, now); err != nil {
			return err
		}

		result = &ProductResult{Product: toProductView(p), Degraded: tx.Degraded()}
		return nil
	})
	if err != nil {
		return nil, mapCatalogError(err)
	}

	c.publish(result.Product, CatalogActionCreated)
	return result, nil
}

func (c *catalogCommandsImpl) UpdateProduct(
	ctx context.Context,
	productID uuid.UUID,
	req reqdto.ProductRequest,
	storeID uuid.UUID,
) (*ProductResult, error) {
	var result *ProductResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := c.clock.Now()

		p, err := c.lockOwned(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}

		attrs := req.ToDomain()
		attrs.ImageURL = p.ImageURL()
		if err := p.Update(attrs, now); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		if err := c.enqueue(ctx, tx, p, CatalogActionUpdated, now); err != nil {
			return err
		}

		result = &ProductResult{Product: toProductView(p), Degraded: tx.Degraded()}
		return nil
	})
	if err != nil {
		return nil, mapCatalogError(err)
	}

	c.publish(result.Product, CatalogActionUpdated)
	return result, nil
}

// PatchProduct leaves the product untouched, and emits nothing, when the
// patch matches the stored values.
func (c *catalogCommandsImpl) PatchProduct(
	ctx context.Context,
	productID uuid.UUID,
	req reqdto.ProductPatchRequest,
	storeID uuid.UUID,
) (*ProductResult, error) {
	var (
		result  *ProductResult
		changed bool
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := c.clock.Now()

		p, err := c.lockOwned(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}

		current := p.Attributes()
		changed = req.Changes(current)
		if changed {
			if err := p.Update(req.ApplyTo(current), now); err != nil {
				return err
			}
			if err := tx.Products().Update(ctx, p); err != nil {
				return err
			}
			if err := c.enqueue(ctx, tx, p, CatalogActionUpdated, now); err != nil {
				return err
			}
		}

		result = &ProductResult{Product: toProductView(p), Degraded: tx.Degraded()}
		return nil
	})
	if err != nil {
		return nil, mapCatalogError(err)
	}

	if changed {
		c.publish(result.Product, CatalogActionUpdated)
	}
	return result, nil
}

func (c *catalogCommandsImpl) DeleteProduct(ctx context.Context, productID, storeID uuid.UUID) error {
	var deleted *queries.ProductView
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		deleted = nil

		p, err := c.lockOwned(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}
		if err := tx.Products().Delete(ctx, productID); err != nil {
			return err
		}
		if err := c.enqueue(ctx, tx, p, CatalogActionDeleted, c.clock.Now()); err != nil {
			return err
		}

		deleted = toProductView(p)
		return nil
	})
	if err != nil {
		return mapCatalogError(err)
	}

	c.removeImage(ctx, deleted.ImageURL)
	c.publish(deleted, CatalogActionDeleted)
	return nil
}

// UploadImage stores the object first and swaps the URL in a second step;
// an orphaned object is removed if the swap fails.
func (c *catalogCommandsImpl) UploadImage(ctx context.Context, productID, storeID uuid.UUID, data []byte) (*ProductResult, error) {
	if c.storage.MaxImageBytes > 0 && int64(len(data)) > c.storage.MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	ext, ok := imageExtensions[http.DetectContentType(data)]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := c.findOwned(ctx, tx, productID, storeID)
		return err
	})
	if err != nil {
		return nil, mapCatalogError(err)
	}

	objectPath := path.Join(productID.String(), uuid.NewString()+ext)
	url, err := c.images.Upload(ctx, c.storage.ImageBucket, objectPath, data)
	if err != nil {
		return nil, errs.Wrap(err, "failed to upload product image")
	}

	var (
		result *ProductResult
		oldURL string
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result = nil
		now := c.clock.Now()

		p, err := c.lockOwned(ctx, tx, productID, storeID)
		if err != nil {
			return err
		}
		oldURL = p.ImageURL()
		p.SetImageURL(url, now)
		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}
		if err := c.enqueue(ctx, tx, p, CatalogActionImage, now); err != nil {
			return err
		}

		result = &ProductResult{Product: toProductView(p), Degraded: tx.Degraded()}
		return nil
	})
	if err != nil {
		c.removeImage(ctx, url)
		return nil, mapCatalogError(err)
	}

	c.removeImage(ctx, oldURL)
	c.publish(result.Product, CatalogActionImage)
	return result, nil
}

func (c *catalogCommandsImpl) findOwned(ctx context.Context, tx shared.Tx, productID, storeID uuid.UUID) (*product.Product, error) {
	p, err := tx.Products().FindByID(ctx, productID)
	return ownedBy(p, err, storeID)
}

// lockOwned is findOwned for units that write the product row back.
func (c *catalogCommandsImpl) lockOwned(ctx context.Context, tx shared.Tx, productID, storeID uuid.UUID) (*product.Product, error) {
	p, err := tx.Products().FindByIDForUpdate(ctx, productID)
	return ownedBy(p, err, storeID)
}

func ownedBy(p *product.Product, err error, storeID uuid.UUID) (*product.Product, error) {
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}
	if !p.IsOwnedBy(storeID) {
		return nil, errs.ErrNotAuthorized
	}
	return p, nil
}

func (c *catalogCommandsImpl) enqueue(ctx context.Context, tx shared.Tx, p *product.Product, action string, now time.Time) error {
	payload, err := json.Marshal(catalogEvent(p.ID(), p.StoreID(), action, now))
	if err != nil {
		return errs.Wrap(err, "failed to marshal catalog event")
	}
	return tx.Notifications().CreateJob(ctx, jobKindCatalogSync, shared.TopicCatalogChanged, payload, now)
}

func (c *catalogCommandsImpl) publish(view *queries.ProductView, action string) {
	c.events.Publish(shared.TopicCatalogChanged, catalogEvent(view.ID, view.StoreID, action, c.clock.Now()))
}

// removeImage is best-effort; a stale object never fails the catalog change.
func (c *catalogCommandsImpl) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	bucket, objectPath, ok := c.images.ObjectPath(url)
	if !ok {
		return
	}
	if err := c.images.Delete(context.WithoutCancel(ctx), bucket, objectPath); err != nil {
		slog.Warn("failed to delete product image", "url", url, "error", err.Error())
	}
}

func catalogEvent(productID, storeID uuid.UUID, action string, now time.Time) shared.CatalogChangedEvent {
	return shared.CatalogChangedEvent{
		ProductID: productID,
		StoreID:   storeID,
		Action:    action,
		Timestamp: now,
	}
}

func toProductView(p *product.Product) *queries.ProductView {
	return &queries.ProductView{
		ID:          p.ID(),
		StoreID:     p.StoreID(),
		Name:        p.Name(),
		Description: p.Description(),
		Category:    p.Category(),
		PriceCents:  p.PriceCents(),
		CostPoints:  p.CostPoints(),
		Stock:       p.Stock(),
		ImageURL:    p.ImageURL(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func mapCatalogError(err error) error {
	switch {
	case errs.Is(err, errs.ErrProductNotFound), errs.Is(err, errs.ErrNotAuthorized):
		return err
	case errs.Is(err, product.ErrInvalidPrice):
		return errs.Mark(err, errs.ErrInvalidPrice)
	case errs.Is(err, product.ErrInvalidStock):
		return errs.Mark(err, errs.ErrInvalidStock)
	case errs.Is(err, product.ErrEmptyName), errs.Is(err, product.ErrNameTooLong), errs.Is(err, product.ErrInvalidCategory):
		return errs.Mark(err, errs.ErrDomainValidation)
	default:
		return markUpstream(err)
	}
}
