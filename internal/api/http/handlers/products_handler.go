package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/api/dto"
	"github.com/cijene-me/cijene-api/internal/media"
	"github.com/cijene-me/cijene-api/internal/service"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

type ProductsHandler struct {
	products *service.ProductService
}

func NewProductsHandler(products *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	p, err := h.products.Create(c.UserContext(), actor, productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.DataResponse[dto.ProductResponse]{Data: dto.NewProductResponse(*p)})
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	var q dto.ProductListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	page, err := h.products.List(c.UserContext(), q.Filter())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewListResponse(page, dto.NewProductResponse))
}

func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	p, err := h.products.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.ProductResponse]{Data: dto.NewProductResponse(*p)})
}

func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	p, err := h.products.Update(c.UserContext(), actor, id, productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.ProductResponse]{Data: dto.NewProductResponse(*p)})
}

func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UploadImage handles multipart POST /products/:id/image. The content type is
// sniffed from the file, the client's claim is ignored.
func (h *ProductsHandler) UploadImage(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("invalid input", map[string]any{"file": "is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return apperrors.NewInternalError(err)
	}
	head = head[:n]
	contentType := media.SniffContentType(head)

	p, err := h.products.UploadImage(c.UserContext(), actor, id, contentType, io.MultiReader(bytes.NewReader(head), f), fh.Size)
	if err != nil {
		return err
	}
	return c.JSON(dto.DataResponse[dto.ProductResponse]{Data: dto.NewProductResponse(*p)})
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:       req.Name,
		Barcode:    req.Barcode,
		CategoryID: req.CategoryID,
		ImageURL:   req.ImageURL,
	}
}
