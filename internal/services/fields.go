package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/utils"
)

const (
	msgRequired   = "This field is required."
	msgBlank      = "This field may not be blank."
	msgNull       = "This field may not be null."
	msgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgEndBefore  = "End date must not be before start date."

	msgCannotMoveTask = "Only the project owner can move this task to another project."
)

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func msgDoesNotExist(id uint64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

// applyName validates a required, length-limited name. required is true on create.
func applyName(fields apierrors.FieldErrors, field string, value utils.Optional[string], required bool, target *string) {
	if !value.Set {
		if required {
			fields.Add(field, msgRequired)
		}
		return
	}
	if value.Null {
		fields.Add(field, msgNull)
		return
	}
	if strings.TrimSpace(value.Value) == "" {
		fields.Add(field, msgBlank)
		return
	}
	if utf8.RuneCountInString(value.Value) > constants.MaxNameLength {
		fields.Add(field, msgMaxLength(constants.MaxNameLength))
		return
	}
	*target = value.Value
}

// applyDate parses an optional YYYY-MM-DD value into target. null or "" clears it.
func applyDate(fields apierrors.FieldErrors, field string, value utils.Optional[string], target **time.Time) {
	if !value.Set {
		return
	}
	if value.Null || value.Value == "" {
		*target = nil
		return
	}
	parsed, err := time.Parse(constants.DateLayout, value.Value)
	if err != nil {
		fields.Add(field, msgDateFormat)
		return
	}
	*target = &parsed
}

// checkDateRange rejects an end date earlier than the start date
func checkDateRange(fields apierrors.FieldErrors, start, end *time.Time) {
	if start != nil && end != nil && end.Before(*start) {
		fields.Add("end_date", msgEndBefore)
	}
}
