// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/Antonio-217/controle-financeiro/internal/models"
)

var (
	periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	codeRegex   = regexp.MustCompile(`^[a-z][a-z0-9_]{1,39}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_group", validateCategoryGroup)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("transaction_status", validateTransactionStatus)
		_ = v.RegisterValidation("period", validatePeriod)
		_ = v.RegisterValidation("subcategory_code", validateSubcategoryCode)
		_ = v.RegisterValidation("money", validateMoney)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	}
}

// decimalValue lets tags validate decimals through their string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateCategoryGroup(fl validator.FieldLevel) bool {
	return models.CategoryGroup(fl.Field().String()).Valid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch models.PaymentMethod(fl.Field().String()) {
	case models.PaymentMethodDebit, models.PaymentMethodCreditCard, models.PaymentMethodCash:
		return true
	}
	return false
}

func validateTransactionStatus(fl validator.FieldLevel) bool {
	switch models.TransactionStatus(fl.Field().String()) {
	case models.TransactionStatusPaid, models.TransactionStatusPending:
		return true
	}
	return false
}

func validatePeriod(fl validator.FieldLevel) bool {
	return periodRegex.MatchString(fl.Field().String())
}

func validateSubcategoryCode(fl validator.FieldLevel) bool {
	return codeRegex.MatchString(fl.Field().String())
}

// validateMoney accepts non-negative decimals with at most two fractional digits.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}
