package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/omniql-engine/queryguard/engine/models"
)

// ValidationResult contains detailed validation info
type ValidationResult struct {
	Valid bool
	Error string
	Name  string // offending collection or field name
}

// Validate checks that op can be sent to the document store as is.
func Validate(op models.Operation) error {
	result := ValidateWithDetails(op)
	if result.Valid {
		return nil
	}
	return &NameError{Name: result.Name, Message: result.Error}
}

// ValidateWithDetails returns detailed validation result
func ValidateWithDetails(op models.Operation) *ValidationResult {
	if err := ValidateCollectionName(op.CollectionName()); err != nil {
		return &ValidationResult{Error: err.Error(), Name: op.CollectionName()}
	}

	for _, name := range fieldNames(op) {
		if err := ValidateFieldName(name); err != nil {
			return &ValidationResult{Error: err.Error(), Name: name}
		}
	}
	return &ValidationResult{Valid: true}
}

// ValidateCollectionName checks a MongoDB collection name: not empty, no '$',
// no NUL and no "system." prefix.
func ValidateCollectionName(name string) error {
	switch {
	case name == "":
		return errors.New("collection name is empty")
	case strings.ContainsRune(name, '$'):
		return fmt.Errorf("collection name %q contains '$'", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("collection name %q contains a NUL character", name)
	case strings.HasPrefix(name, "system."):
		return fmt.Errorf("collection name %q is reserved", name)
	}
	return nil
}

// ValidateFieldName checks a field name or dotted path: no empty path element,
// no NUL and no element starting with '$'.
func ValidateFieldName(name string) error {
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("field name %q contains a NUL character", name)
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return fmt.Errorf("field name %q has an empty path element", name)
		}
		if strings.HasPrefix(part, "$") {
			return fmt.Errorf("field name %q starts with '$'", name)
		}
	}
	return nil
}

// NameError reports an invalid collection or field name.
type NameError struct {
	Name    string
	Message string
}

func (e *NameError) Error() string {
	return e.Message
}

func fieldNames(op models.Operation) []string {
	var names []string
	addPredicate := func(p models.Predicate) {
		for _, c := range p {
			names = append(names, c.Field)
		}
	}
	addFields := func(fields []models.Field) {
		for _, f := range fields {
			names = append(names, f.Name)
		}
	}

	switch o := op.(type) {
	case models.Find:
		addPredicate(o.Filter)
	case models.InsertOne:
		addFields(o.Document)
	case models.UpdateMany:
		addPredicate(o.Filter)
		addFields(o.Update)
	case models.DeleteMany:
		addPredicate(o.Filter)
	}
	return names
}
