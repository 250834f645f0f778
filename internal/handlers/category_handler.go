package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

// CategoryHandler handles the group's category settings.
type CategoryHandler struct {
	subcategoryService services.SubcategoryServicer
	auditService       services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(subcategoryService services.SubcategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{subcategoryService: subcategoryService, auditService: auditService}
}

// CreateSubcategoryRequest represents the request payload for adding a subcategory
type CreateSubcategoryRequest struct {
	CategoryGroup models.CategoryGroup `json:"category_group" binding:"required,category_group"`
	Code          string               `json:"code" binding:"required,subcategory_code"`
	Name          string               `json:"name" binding:"required,min=2,max=100"`
}

// CategoriesResponse lists subcategories keyed by bucket.
type CategoriesResponse struct {
	Categories map[models.CategoryGroup][]models.Subcategory `json:"categories"`
}

// ListCategories returns the group's subcategories grouped by bucket
// @Summary     List categories
// @Description Get the family group's subcategories grouped by bucket (needs, wants, savings)
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} CategoriesResponse "Subcategories by bucket"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subcategories, err := h.subcategoryService.ListSubcategories(sess)
	if err != nil {
		respondWithError(c, err)
		return
	}

	grouped := make(map[models.CategoryGroup][]models.Subcategory, len(models.CategoryGroups))
	for _, g := range models.CategoryGroups {
		grouped[g] = []models.Subcategory{}
	}
	for _, sc := range subcategories {
		grouped[sc.CategoryGroup] = append(grouped[sc.CategoryGroup], sc)
	}

	c.JSON(http.StatusOK, CategoriesResponse{Categories: grouped})
}

// CreateCategory adds a subcategory to a bucket
// @Summary     Create a subcategory
// @Description Add a subcategory under needs, wants or savings. Codes are unique per group.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSubcategoryRequest true "Subcategory details"
// @Success     201 {object} models.Subcategory "Subcategory created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate code"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	sc, err := h.subcategoryService.CreateSubcategory(sess, req.CategoryGroup, req.Code, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditCreateSubcategory, "subcategory", sc.ID, c.ClientIP(),
		map[string]interface{}{"code": sc.Code, "category_group": sc.CategoryGroup})

	c.JSON(http.StatusCreated, gin.H{"category": sc})
}

// DeleteCategory removes a subcategory
// @Summary     Delete a subcategory
// @Description Remove a subcategory. Transactions that referenced it keep their bucket.
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subcategory ID"
// @Success     200 {object} MessageResponse "Subcategory deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subcategory not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subcategoryService.DeleteSubcategory(sess, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(sess, services.AuditDeleteSubcategory, "subcategory", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully"})
}
