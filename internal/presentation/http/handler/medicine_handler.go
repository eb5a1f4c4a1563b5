package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

// MedicineHandler handles medicine-related HTTP requests
type MedicineHandler struct {
	medicineService *service.MedicineService
	stockService    *service.StockService
	importService   *service.ImportService
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(
	medicineService *service.MedicineService,
	stockService *service.StockService,
	importService *service.ImportService,
) *MedicineHandler {
	return &MedicineHandler{
		medicineService: medicineService,
		stockService:    stockService,
		importService:   importService,
	}
}

// List handles listing medicines
// @Summary List medicines
// @Tags medicines
// @Produce json
// @Param search query string false "Name, manufacturer or batch number"
// @Param category query string false "Category"
// @Param low_stock query bool false "Only low stock"
// @Success 200 {object} response.APIResponse
// @Router /medicines [get]
func (h *MedicineHandler) List(c *gin.Context) {
	var filter request.MedicineFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.MedicineFilterParams{
		Pagination: pageParams(filter.Page, filter.PerPage, filter.Limit),
		Search:     filter.Search,
		Category:   filter.Category,
		LowStock:   filter.LowStock,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
	}

	medicines, total, err := h.medicineService.ListMedicines(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(medicines,
		pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Medicines retrieved successfully", result)
}

// LowStock lists medicines at or below their minimum stock level
func (h *MedicineHandler) LowStock(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "limit must be a number")
			return
		}
		limit = n
	}

	medicines, err := h.medicineService.ListLowStock(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if medicines == nil {
		medicines = []entity.Medicine{}
	}

	response.OK(c, "Low stock medicines retrieved successfully", medicines)
}

// Get handles fetching a single medicine
func (h *MedicineHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "medicine")
	if !ok {
		return
	}

	medicine, err := h.medicineService.GetMedicine(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine retrieved successfully", medicine)
}

// Create handles creating a medicine
// @Summary Create medicine
// @Tags medicines
// @Accept json
// @Produce json
// @Param request body request.CreateMedicineRequest true "Medicine"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /medicines [post]
func (h *MedicineHandler) Create(c *gin.Context) {
	var req request.CreateMedicineRequest
	if !bindJSON(c, &req) {
		return
	}

	expiry, err := parseExpiryDate(req.ExpiryDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	medicine, err := h.medicineService.CreateMedicine(c.Request.Context(), &service.CreateMedicineInput{
		Name:              req.Name,
		Manufacturer:      req.Manufacturer,
		Category:          req.Category,
		BatchNumber:       req.BatchNumber,
		ExpiryDate:        expiry,
		Quantity:          req.Quantity,
		Price:             req.Price,
		GSTRate:           req.GSTRate,
		MinimumStockLevel: req.MinimumStockLevel,
		Description:       req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Medicine created successfully", medicine)
}

// Update handles a partial medicine update
func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "medicine")
	if !ok {
		return
	}

	var req request.UpdateMedicineRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateMedicineInput{
		Name:              req.Name,
		Manufacturer:      req.Manufacturer,
		Category:          req.Category,
		BatchNumber:       req.BatchNumber,
		Quantity:          req.Quantity,
		Price:             req.Price,
		GSTRate:           req.GSTRate,
		MinimumStockLevel: req.MinimumStockLevel,
		Description:       req.Description,
	}
	if req.ExpiryDate != nil {
		expiry, err := parseExpiryDate(*req.ExpiryDate)
		if err != nil {
			response.Error(c, err)
			return
		}
		input.ExpiryDate = &expiry
	}

	medicine, err := h.medicineService.UpdateMedicine(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine updated successfully", medicine)
}

// Delete handles deleting a medicine
func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "medicine")
	if !ok {
		return
	}

	if err := h.medicineService.DeleteMedicine(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine deleted successfully", nil)
}

// Restock adds received stock to a medicine
func (h *MedicineHandler) Restock(c *gin.Context) {
	id, ok := parseID(c, "medicine")
	if !ok {
		return
	}

	var req request.RestockRequest
	if !bindJSON(c, &req) {
		return
	}

	medicine, err := h.stockService.Restock(c.Request.Context(), id, &service.RestockInput{
		Quantity:  req.Quantity,
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine restocked successfully", medicine)
}

// Movements lists the stock ledger for a medicine, newest first
func (h *MedicineHandler) Movements(c *gin.Context) {
	id, ok := parseID(c, "medicine")
	if !ok {
		return
	}

	var filter request.MovementFilterRequest
	if !bindQuery(c, &filter) {
		return
	}
	params := pageParams(filter.Page, filter.PerPage, filter.Limit)

	movements, total, err := h.stockService.ListMovements(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(movements,
		pagination.NewPagination(params.Page, params.PerPage, total))
	response.SuccessWithPagination(c, 200, "Stock movements retrieved successfully", result)
}

// Import handles a spreadsheet upload in the multipart field "file"
// @Summary Import medicines
// @Tags medicines
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX or CSV file"
// @Success 200 {object} response.APIResponse
// @Router /medicines/import [post]
func (h *MedicineHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A file is required in the 'file' field")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	rows, err := h.importService.ParseFile(fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.importService.ImportMedicines(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Import completed", result)
}

func parseExpiryDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperror.NewValidationError([]apperror.FieldError{
			{Field: "expiry_date", Message: "Expiry date must be in YYYY-MM-DD format"},
		})
	}
	return t, nil
}
