package inventory

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medsys/medsys/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Any clinical role may read the catalog.
	read := e.Group("/inventory", auth.RequireRole("inventory", "doctor", "staff"))
	read.GET("/", h.Dashboard)
	read.GET("/categories", h.ListCategories)
	read.GET("/medicines", h.ListMedicines)
	read.GET("/medicines/:id", h.GetMedicine)
	read.GET("/medicines/:id/units", h.ListUnits)

	// Writes stay with the inventory head.
	write := e.Group("/inventory", auth.RequireRole("inventory"))
	write.POST("/categories", h.CreateCategory)
	write.POST("/medicines", h.CreateMedicine)
	write.POST("/medicines/:id", h.UpdateMedicine)
	write.POST("/medicines/:id/stock", h.AdjustStock)
	write.POST("/units", h.RegisterUnit)
	write.POST("/units/:barcode/dispense", h.DispenseUnit)
}

// Dashboard lists the full catalog, flagging low-stock medicines.
func (h *Handler) Dashboard(c echo.Context) error {
	medicines, err := h.svc.ListMedicines(c.Request().Context(), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	var lowStock []*Medicine
	for _, m := range medicines {
		if m.Active && m.LowStock() {
			lowStock = append(lowStock, m)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"medicines": medicines,
		"low_stock": lowStock,
	})
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category, err := h.svc.CreateCategory(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) CreateMedicine(c echo.Context) error {
	var req MedicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.CreateMedicine(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := h.svc.GetMedicine(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medicine not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateMedicine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req MedicineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.UpdateMedicine(c.Request().Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medicine not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedicines(c echo.Context) error {
	activeOnly := c.QueryParam("active") == "true"
	medicines, err := h.svc.ListMedicines(c.Request().Context(), activeOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"medicines": medicines})
}

func (h *Handler) AdjustStock(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	m, err := h.svc.AdjustStock(c.Request().Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, ErrStockConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) RegisterUnit(c echo.Context) error {
	var req UnitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.RegisterUnit(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrBarcodeTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medicine not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) ListUnits(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	units, err := h.svc.ListUnits(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"units": units})
}

func (h *Handler) DispenseUnit(c echo.Context) error {
	u, err := h.svc.DispenseUnit(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		if errors.Is(err, ErrAlreadyDispensed) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, u)
}
