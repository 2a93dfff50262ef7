// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"finara/internal/daterange"
	"finara/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("recurring_interval", validateRecurringInterval)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("report_frequency", validateReportFrequency)
		_ = v.RegisterValidation("date_preset", validateDatePreset)
	}
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).IsValid()
}

func validateRecurringInterval(fl validator.FieldLevel) bool {
	return models.RecurringInterval(fl.Field().String()).IsValid()
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return models.PaymentMethod(fl.Field().String()).IsValid()
}

func validateReportFrequency(fl validator.FieldLevel) bool {
	return models.ReportFrequency(fl.Field().String()).IsValid()
}

func validateDatePreset(fl validator.FieldLevel) bool {
	return daterange.Preset(fl.Field().String()).IsValid()
}
