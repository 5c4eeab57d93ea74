package rma

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain/repository"
)

// Categoría y claves de configuración del módulo de devoluciones.
const (
	SettingsCategory               = "rma"
	SettingRestockingFeePercentage = "restocking_fee_percentage"
	SettingReturnWindowDays        = "return_window_days"
	SettingEmailNotifications      = "email_notifications"
)

// Policy parámetros de negocio vigentes al momento de la operación.
type Policy struct {
	RestockingFeePercent decimal.Decimal // 0 si no está definido o no es positivo
	ReturnWindowDays     int             // 0 = sin límite
	EmailNotifications   bool
}

// LoadPolicy lee la política desde el proveedor de configuración.
// Valores ausentes o mal formados se tratan como no definidos.
func LoadPolicy(ctx context.Context, settings repository.SettingsRepository) (Policy, error) {
	var p Policy
	if settings == nil {
		return p, nil
	}

	raw, ok, err := settings.Get(ctx, SettingsCategory, SettingRestockingFeePercentage)
	if err != nil {
		return p, err
	}
	if ok {
		if pct, perr := decimal.NewFromString(strings.TrimSpace(raw)); perr == nil && pct.IsPositive() {
			p.RestockingFeePercent = pct
		}
	}

	raw, ok, err = settings.Get(ctx, SettingsCategory, SettingReturnWindowDays)
	if err != nil {
		return p, err
	}
	if ok {
		if days, perr := strconv.Atoi(strings.TrimSpace(raw)); perr == nil && days > 0 {
			p.ReturnWindowDays = days
		}
	}

	raw, ok, err = settings.Get(ctx, SettingsCategory, SettingEmailNotifications)
	if err != nil {
		return p, err
	}
	if ok {
		p.EmailNotifications = parseBool(raw)
	}
	return p, nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on", "si", "sí":
		return true
	}
	return false
}

// StaticSettings configuración fija de la categoría "rma" (valores por defecto desde env/Viper, tests).
type StaticSettings map[string]string

// Get implementa repository.SettingsRepository.
func (s StaticSettings) Get(_ context.Context, category, key string) (string, bool, error) {
	if category != SettingsCategory {
		return "", false, nil
	}
	v, ok := s[key]
	return v, ok, nil
}

// ChainSettings consulta cada proveedor en orden; gana el primero que tenga la clave.
type ChainSettings []repository.SettingsRepository

// Get implementa repository.SettingsRepository.
func (c ChainSettings) Get(ctx context.Context, category, key string) (string, bool, error) {
	for _, s := range c {
		v, ok, err := s.Get(ctx, category, key)
		if err != nil {
			return "", false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
