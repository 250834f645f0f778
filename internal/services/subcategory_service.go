package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/models"
	"github.com/Antonio-217/controle-financeiro/internal/session"
)

// defaultSubcategories seeds every new family group.
var defaultSubcategories = []models.Subcategory{
	{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_fixas", Name: "Fixed bills"},
	{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_saude", Name: "Health"},
	{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_transporte", Name: "Transport"},
	{CategoryGroup: models.CategoryGroupNeeds, Code: "cat_mercado", Name: "Groceries"},
	{CategoryGroup: models.CategoryGroupWants, Code: "cat_lazer", Name: "Leisure & travel"},
	{CategoryGroup: models.CategoryGroupWants, Code: "cat_compras", Name: "Personal shopping"},
	{CategoryGroup: models.CategoryGroupWants, Code: "cat_assinaturas", Name: "Subscriptions"},
	{CategoryGroup: models.CategoryGroupWants, Code: "cat_restaurante", Name: "Restaurants & delivery"},
	{CategoryGroup: models.CategoryGroupSavings, Code: "cat_reserva", Name: "Emergency fund"},
	{CategoryGroup: models.CategoryGroupSavings, Code: "cat_invest", Name: "Investments"},
	{CategoryGroup: models.CategoryGroupSavings, Code: "cat_objetivos", Name: "Long-term goals"},
}

func seedSubcategories(tx *gorm.DB, groupID string) error {
	rows := make([]models.Subcategory, len(defaultSubcategories))
	for i, sc := range defaultSubcategories {
		sc.GroupID = groupID
		rows[i] = sc
	}
	return tx.Create(&rows).Error
}

// subcategoryService handles a group's category settings.
type subcategoryService struct {
	db *gorm.DB
}

// NewSubcategoryService creates a new SubcategoryServicer.
func NewSubcategoryService(db *gorm.DB) SubcategoryServicer {
	return &subcategoryService{db: db}
}

// ListSubcategories returns the group's subcategories ordered by bucket then name.
func (s *subcategoryService) ListSubcategories(sess session.Session) ([]models.Subcategory, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	var subcategories []models.Subcategory
	if err := s.db.Where("group_id = ?", sess.GroupID).
		Order("category_group ASC, name ASC").
		Find(&subcategories).Error; err != nil {
		return nil, storeError(err, nil)
	}
	return subcategories, nil
}

// CreateSubcategory adds a subcategory under a bucket. Codes are unique per group.
func (s *subcategoryService) CreateSubcategory(sess session.Session, group models.CategoryGroup, code, name string) (*models.Subcategory, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if !group.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be needs, wants or savings")
	}
	if code == "" || len(name) < 2 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "code and a name of at least 2 characters are required")
	}

	sc := &models.Subcategory{
		GroupID:       sess.GroupID,
		CategoryGroup: group,
		Code:          code,
		Name:          name,
	}
	if err := s.db.Create(sc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateSubcategory
		}
		return nil, storeError(err, nil)
	}
	return sc, nil
}

// DeleteSubcategory removes a subcategory. Transactions keep the code they
// were tagged with.
func (s *subcategoryService) DeleteSubcategory(sess session.Session, id string) error {
	if err := sess.Validate(); err != nil {
		return err
	}

	res := s.db.Where("id = ? AND group_id = ?", id, sess.GroupID).Delete(&models.Subcategory{})
	if res.Error != nil {
		return storeError(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrSubcategoryNotFound
	}
	return nil
}
