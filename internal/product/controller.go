package product

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/commons"
)

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *Controller) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	resp, err := c.useCase.ListProducts(r.Context())
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *Controller) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req CreateProductRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	resp, err := c.useCase.CreateProduct(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, resp)
}

func (c *Controller) HandleListFormats(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	resp, err := c.useCase.ListFormats(r.Context())
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, resp)
}

func (c *Controller) HandleCreateFormat(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req CreateFormatRequest
	if !commons.DecodeJSON(w, r, logger, &req) {
		return
	}

	resp, err := c.useCase.CreateFormat(r.Context(), req)
	if err != nil {
		commons.WriteUseCaseError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, resp)
}
