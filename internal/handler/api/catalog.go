package api

import (
	"io"
	"net/http"

	reqdto "techpoints/internal/handler/dto/request"
	resdto "techpoints/internal/handler/dto/response"
	"techpoints/internal/handler/httperr"
	"techpoints/internal/pkg/config"
	"techpoints/internal/usecase/commands"
	"techpoints/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const imageFormField = "image"

type CatalogHandler struct {
	cmds          commands.CatalogCommands
	q             queries.CatalogQueries
	maxImageBytes int64
}

func NewCatalogHandler(cmds commands.CatalogCommands, q queries.CatalogQueries, cfg config.Config) *CatalogHandler {
	return &CatalogHandler{cmds: cmds, q: q, maxImageBytes: cfg.Storage.MaxImageBytes}
}

// @Summary List products
// @Description List the catalog with optional filters and keyset pagination
// @Tags products
// @Produce json
// @Param store query string false "Store ID"
// @Param category query string false "Category"
// @Param in_stock query bool false "Only products with stock"
// @Param q query string false "Name search"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.ProductListResponse
// @Failure 400 {object} httperr.Response
// @Router /api/products [get]
func (h *CatalogHandler) List(c *gin.Context) {
	storeID, ok := queryUUID(c, "store")
	if !ok {
		return
	}
	inStock, ok := queryBool(c, "in_stock")
	if !ok {
		return
	}
	filters := queries.ProductFilters{
		StoreID:  storeID,
		Category: queryString(c, "category"),
		InStock:  inStock,
		Query:    queryString(c, "q"),
	}
	cursor, limit := pagination(c)

	items, next, err := h.q.ListProducts(c.Request.Context(), filters, cursor, limit)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductList(items, next))
}

// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/products/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid product id")
	if !ok {
		return
	}
	view, err := h.q.GetProduct(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductView(view))
}

// @Summary Create product
// @Description Add a product to the calling store's catalog. Cost in points is derived from the price.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ProductRequest true "Product"
// @Success 201 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/products [post]
func (h *CatalogHandler) Create(c *gin.Context) {
	storeID, _, ok := actor(c)
	if !ok {
		return
	}
	var req reqdto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.CreateProduct(c.Request.Context(), req, storeID)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.Header("Location", "/api/products/"+result.Product.ID.String())
	c.JSON(http.StatusCreated, resdto.FromProductResult(result))
}

// @Summary Update product
// @Description Replace the attributes of a product owned by the calling store
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body reqdto.ProductRequest true "Product"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/products/{id} [put]
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid product id")
	if !ok {
		return
	}
	storeID, _, ok := actor(c)
	if !ok {
		return
	}
	var req reqdto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.UpdateProduct(c.Request.Context(), id, req, storeID)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductResult(result))
}

// @Summary Patch product
// @Description Change only the supplied attributes of a product owned by the calling store
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body reqdto.ProductPatchRequest true "Fields to change"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /api/products/{id} [patch]
func (h *CatalogHandler) Patch(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid product id")
	if !ok {
		return
	}
	storeID, _, ok := actor(c)
	if !ok {
		return
	}
	var req reqdto.ProductPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.PatchProduct(c.Request.Context(), id, req, storeID)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductResult(result))
}

// @Summary Delete product
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/products/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid product id")
	if !ok {
		return
	}
	storeID, _, ok := actor(c)
	if !ok {
		return
	}
	if err := h.cmds.DeleteProduct(c.Request.Context(), id, storeID); err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Upload product image
// @Description Replace the product image with the uploaded file (png, jpeg, gif or webp)
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param image formData file true "Image file"
// @Success 200 {object} resdto.ProductResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 413 {object} httperr.Response
// @Failure 415 {object} httperr.Response
// @Router /api/products/{id}/image [put]
func (h *CatalogHandler) UploadImage(c *gin.Context) {
	id, ok := pathUUID(c, "id", "Invalid product id")
	if !ok {
		return
	}
	storeID, _, ok := actor(c)
	if !ok {
		return
	}

	data, err := h.readImage(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Image file required", nil)
		return
	}

	result, err := h.cmds.UploadImage(c.Request.Context(), id, storeID, data)
	if err != nil {
		httperr.AbortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromProductResult(result))
}

// readImage reads one byte past the limit so oversize files are reported as such.
func (h *CatalogHandler) readImage(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(imageFormField)
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	return io.ReadAll(r)
}
