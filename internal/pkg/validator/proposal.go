package validator

import (
	"fmt"
	"strings"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

const (
	maxRequirementLength = 20000
	maxUserIDLength      = 128
	maxPlatformLength    = 32
)

// Validator checks inbound API payloads before they reach the use cases.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerate validates a proposal generation request.
func (v *Validator) ValidateGenerate(userID, platform, requirement string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if len(userID) > maxUserIDLength {
		return fmt.Errorf("%w: user_id exceeds %d characters", entity.ErrInvalidParameter, maxUserIDLength)
	}
	if strings.TrimSpace(platform) == "" {
		return fmt.Errorf("%w: platform", entity.ErrMissingField)
	}
	if len(platform) > maxPlatformLength {
		return fmt.Errorf("%w: platform exceeds %d characters", entity.ErrInvalidParameter, maxPlatformLength)
	}
	if strings.TrimSpace(requirement) == "" {
		return fmt.Errorf("%w: requirement", entity.ErrMissingField)
	}
	if len(requirement) > maxRequirementLength {
		return fmt.Errorf("%w: requirement exceeds %d characters", entity.ErrInvalidParameter, maxRequirementLength)
	}
	return nil
}

// ValidateReindex validates a store reindex request.
func (v *Validator) ValidateReindex(store, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: dir", entity.ErrMissingField)
	}
	switch entity.StoreName(store) {
	case entity.StoreTemplates, entity.StoreExamples, entity.StoreSession:
		return nil
	default:
		return fmt.Errorf("%w: unknown store %q", entity.ErrInvalidParameter, store)
	}
}
