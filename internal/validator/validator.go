// Package validator provides custom validation functions for Gin's binding
// engine. Enum-like values arriving from the aggregator are closed string
// sets; these validators enforce them at the API boundary.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"moneta/internal/models"
)

// validCurrencies contains the ISO 4217 currency codes the aggregator reports.
var validCurrencies = map[string]bool{
	"AED": true, "AUD": true, "BRL": true, "CAD": true, "CHF": true,
	"CNY": true, "CZK": true, "DKK": true, "EUR": true, "GBP": true,
	"HKD": true, "HUF": true, "IDR": true, "ILS": true, "INR": true,
	"JPY": true, "KRW": true, "MXN": true, "MYR": true, "NOK": true,
	"NZD": true, "PHP": true, "PLN": true, "RON": true, "SEK": true,
	"SGD": true, "THB": true, "TRY": true, "TWD": true, "USD": true,
	"VND": true, "ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("cash_flow_type", validateCashFlowType)
		_ = v.RegisterValidation("liability_type", validateLiabilityType)
		_ = v.RegisterValidation("security_type", validateSecurityType)
		_ = v.RegisterValidation("frequency", validateFrequency)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateAccountType(fl validator.FieldLevel) bool {
	return models.KnownAccountType(fl.Field().String())
}

func validateCashFlowType(fl validator.FieldLevel) bool {
	switch models.CashFlowType(fl.Field().String()) {
	case models.CashFlowIncome, models.CashFlowExpense, models.CashFlowTransfer:
		return true
	}
	return false
}

func validateLiabilityType(fl validator.FieldLevel) bool {
	return models.KnownLiabilityType(fl.Field().String())
}

func validateSecurityType(fl validator.FieldLevel) bool {
	return models.KnownSecurityType(fl.Field().String())
}

func validateFrequency(fl validator.FieldLevel) bool {
	return models.KnownFrequency(fl.Field().String())
}
