package models

import "fmt"

// Retention safeguards.
const (
	RetentionConfirmationPhrase = "DELETE AUDIT LOGS"
	RetentionSafetyFloorDays    = 90
)

// RetentionState names one step of a purge run.
type RetentionState string

// Purge steps in execution order.
const (
	StateRequested RetentionState = "requested"
	StateValidated RetentionState = "validated"
	StateCounted   RetentionState = "counted"
	StateBackedUp  RetentionState = "backed_up"
	StateDeleted   RetentionState = "deleted"
	StateLogged    RetentionState = "logged"
	StateCommitted RetentionState = "committed"
)

// RetentionRequest asks to delete rows of one category older than MinAgeDays.
type RetentionRequest struct {
	Category         string `json:"category"`
	MinAgeDays       int    `json:"min_age_days"`
	ConfirmationText string `json:"confirmation_text"`
}

// CheckProtected refuses categories that no caller may purge.
func (r *RetentionRequest) CheckProtected() error {
	if Category(r.Category) == CategorySecurityEvents {
		return &ComplianceViolation{Category: CategorySecurityEvents}
	}

	return nil
}

// Validate moves a request from Requested to Validated. The protected category
// is checked first so it is refused regardless of the other fields.
func (r *RetentionRequest) Validate() (CategoryDescriptor, error) {
	if err := r.CheckProtected(); err != nil {
		return CategoryDescriptor{}, err
	}

	d, err := ResolveStrict(r.Category)
	if err != nil {
		return CategoryDescriptor{}, err
	}

	if r.ConfirmationText != RetentionConfirmationPhrase {
		return CategoryDescriptor{}, &ValidationError{
			Field:   "confirmation_text",
			Message: fmt.Sprintf("must be exactly %q", RetentionConfirmationPhrase),
		}
	}

	if r.MinAgeDays < RetentionSafetyFloorDays {
		return CategoryDescriptor{}, &ValidationError{
			Field:   "min_age_days",
			Message: fmt.Sprintf("must be at least %d", RetentionSafetyFloorDays),
		}
	}

	return d, nil
}

// RetentionResult reports a committed purge.
type RetentionResult struct {
	Category     Category `json:"category"`
	DeletedCount int64    `json:"deleted_count"`
	MinAgeDays   int      `json:"min_age_days"`
}
