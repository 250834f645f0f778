package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/services"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

type mockSubcategoryService struct {
	listFn   func(sess session.Session) ([]models.Subcategory, error)
	createFn func(sess session.Session, group models.CategoryGroup, code, name string) (*models.Subcategory, error)
	deleteFn func(sess session.Session, id string) error
}

func (m *mockSubcategoryService) ListSubcategories(sess session.Session) ([]models.Subcategory, error) {
	if m.listFn != nil {
		return m.listFn(sess)
	}
	return nil, nil
}

func (m *mockSubcategoryService) CreateSubcategory(sess session.Session, group models.CategoryGroup, code, name string) (*models.Subcategory, error) {
	if m.createFn != nil {
		return m.createFn(sess, group, code, name)
	}
	return &models.Subcategory{CategoryGroup: group, Code: code, Name: name}, nil
}

func (m *mockSubcategoryService) DeleteSubcategory(sess session.Session, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(sess, id)
	}
	return nil
}

var _ services.SubcategoryServicer = (*mockSubcategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectSession(testSession))
	auth.GET("/categories", handler.ListCategories)
	auth.POST("/categories", handler.CreateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_ListCategories(t *testing.T) {
	svc := &mockSubcategoryService{
		listFn: func(session.Session) ([]models.Subcategory, error) {
			return []models.Subcategory{
				{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_health", Name: "Health"},
				{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_groceries", Name: "Groceries"},
				{CategoryGroup: models.CategoryGroupWants, Code: "cat_leisure", Name: "Leisure"},
			}, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	categories := parseJSON(t, rec)["categories"].(map[string]interface{})
	if len(categories["needs"].([]interface{})) != 2 {
		t.Errorf("expected 2 needs, got %v", categories["needs"])
	}
	if len(categories["savings"].([]interface{})) != 0 {
		t.Errorf("expected empty savings list, got %v", categories["savings"])
	}
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(&mockSubcategoryService{}, audit))

		rec := doRequest(r, "POST", "/categories", `{"category_group":"wants","code":"cat_pets","name":"Pets"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		category := parseJSON(t, rec)["category"].(map[string]interface{})
		if category["code"] != "cat_pets" {
			t.Errorf("expected cat_pets, got %v", category["code"])
		}
		if len(audit.actions) != 1 {
			t.Errorf("expected one audit entry, got %v", audit.actions)
		}
	})

	t.Run("returns 400 on invalid code", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockSubcategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"category_group":"wants","code":"Pets!","name":"Pets"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 409 on duplicate code", func(t *testing.T) {
		svc := &mockSubcategoryService{
			createFn: func(session.Session, models.CategoryGroup, string, string) (*models.Subcategory, error) {
				return nil, apperrors.ErrDuplicateSubcategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"category_group":"wants","code":"cat_pets","name":"Pets"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_SUBCATEGORY")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	svc := &mockSubcategoryService{
		deleteFn: func(_ session.Session, id string) error {
			if id != testOtherID {
				return apperrors.ErrSubcategoryNotFound
			}
			return nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

	if rec := doRequest(r, "DELETE", "/categories/"+testOtherID, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := doRequest(r, "DELETE", "/categories/"+testUserID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
