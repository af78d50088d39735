package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator handles target validation
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator creates a new validator with the given schema file
func NewValidator(schemaPath string) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates all target files in a directory
func (v *Validator) ValidateDirectory(dirPath string) []ValidationError {
	targetFiles, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)

	if len(targetFiles) == 0 {
		return allErrors
	}

	for _, tf := range targetFiles {
		schemaErrors := v.validateSchema(tf.File, tf.Target)
		allErrors = append(allErrors, schemaErrors...)
	}

	extraErrors := v.validateExtraRules(targetFiles)
	allErrors = append(allErrors, extraErrors...)

	return allErrors
}

// validateSchema validates a single target against the JSON schema
func (v *Validator) validateSchema(file string, tgt *Target) []ValidationError {
	var errors []ValidationError

	// Round-trip through YAML to get the generic structure schema
	// validation expects
	yamlBytes, err := yaml.Marshal(tgt)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to marshal target: %v", err),
		})
		return errors
	}

	var jsonData interface{}
	if err := yaml.Unmarshal(yamlBytes, &jsonData); err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Message: fmt.Sprintf("failed to convert to JSON: %v", err),
		})
		return errors
	}

	if err := v.schema.Validate(jsonData); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(file, validationErr)...)
		} else {
			errors = append(errors, ValidationError{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// extractSchemaErrors converts JSON schema validation errors to ValidationErrors
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	var errors []ValidationError

	path := strings.Join(err.InstanceLocation, ".")
	if path == "" {
		path = "(root)"
	}

	errors = append(errors, ValidationError{
		File:    file,
		Path:    path,
		Message: err.Error(),
	})

	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}

	return errors
}

// validateExtraRules applies additional validation rules beyond JSON schema
func (v *Validator) validateExtraRules(targetFiles []TargetWithFile) []ValidationError {
	var errors []ValidationError

	idSeen := make(map[string]string)
	for _, tf := range targetFiles {
		id := tf.Target.Metadata.ID
		if prevFile, exists := idSeen[id]; exists {
			errors = append(errors, ValidationError{
				File:    tf.File,
				Path:    "metadata.id",
				Message: fmt.Sprintf("duplicate ID %q (also in %s)", id, filepath.Base(prevFile)),
			})
		} else {
			idSeen[id] = tf.File
		}

		errors = append(errors, validateIntervals(tf.File, tf.Target)...)
	}

	return errors
}

// validateIntervals checks the timing fields of a target
func validateIntervals(file string, tgt *Target) []ValidationError {
	var errors []ValidationError

	if _, err := ParseDuration(tgt.Spec.EvaluationInterval); err != nil {
		errors = append(errors, ValidationError{
			File:    file,
			Path:    "spec.evaluationInterval",
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	if tgt.Spec.LookbackDays < 0 {
		errors = append(errors, ValidationError{
			File:    file,
			Path:    "spec.lookbackDays",
			Message: fmt.Sprintf("must be positive, got %g", tgt.Spec.LookbackDays),
		})
	}

	return errors
}
