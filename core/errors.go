package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TransformErrorBadInput       = "TRANSFORM_BAD_INPUT"
	TransformErrorConfigInvalid  = "TRANSFORM_CONFIG_INVALID"
	TransformErrorResolverFailed = "TRANSFORM_RESOLVER_FAILED"
	TransformErrorOutputInvalid  = "TRANSFORM_OUTPUT_INVALID"
	TransformErrorSpecNotFound   = "TRANSFORM_SPEC_NOT_FOUND"
	TransformErrorInternal       = "TRANSFORM_INTERNAL_ERROR"
)

var (
	ErrSpecNotFound      = errors.New("core: mapping spec not found")
	ErrResolverNotFound  = errors.New("core: resolver not found")
	ErrIdentityMissing   = errors.New("core: identity field missing from output")
	ErrConfigInvalid     = errors.New("core: mapping configuration invalid")
	ErrResolutionFailed  = errors.New("core: field resolution failed")
	ErrSpecNotPublished  = errors.New("core: mapping spec is not published")
	ErrSpecStoreRequired = errors.New("core: mapping spec store is required")
)

func transformErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureTransformErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrSpecNotFound):
		return newTransformError(err.Error(), goerrors.CategoryNotFound, TransformErrorSpecNotFound)
	case errors.Is(err, ErrSpecNotPublished):
		return newTransformError(err.Error(), goerrors.CategoryConflict, TransformErrorSpecNotFound)
	case errors.Is(err, ErrResolverNotFound), errors.Is(err, ErrConfigInvalid):
		return newTransformError(err.Error(), goerrors.CategoryBadInput, TransformErrorConfigInvalid)
	case errors.Is(err, ErrIdentityMissing):
		return newTransformError(err.Error(), goerrors.CategoryValidation, TransformErrorOutputInvalid)
	case errors.Is(err, ErrResolutionFailed):
		return newTransformError(err.Error(), goerrors.CategoryOperation, TransformErrorResolverFailed)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newTransformError(err.Error(), goerrors.CategoryBadInput, TransformErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureTransformErrorEnvelope(mapped)
}

func newTransformError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureTransformErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureTransformErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = transformHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTransformTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTransformTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return TransformErrorBadInput
	case goerrors.CategoryValidation:
		return TransformErrorOutputInvalid
	case goerrors.CategoryNotFound:
		return TransformErrorSpecNotFound
	case goerrors.CategoryOperation:
		return TransformErrorResolverFailed
	default:
		return TransformErrorInternal
	}
}

func transformHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryOperation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// resolutionError wraps a resolver or transform failure with the section
// and destination key it belongs to. It aborts the whole Transform call.
func resolutionError(field CompiledField, cause error) error {
	return goerrors.Wrap(
		cause,
		goerrors.CategoryOperation,
		"core: resolving "+field.Instruction.describe()+" for "+field.Section.Name+"."+field.Target+" failed",
	).
		WithCode(http.StatusBadGateway).
		WithTextCode(TransformErrorResolverFailed)
}

// identityMissingError is the post-assembly validation failure, distinct
// from resolver failures, naming the missing field.
func identityMissingError(identityPath string) error {
	return goerrors.NewValidation("core: transform output validation failed", goerrors.FieldError{
		Field:   identityPath,
		Message: "required identity field is missing or empty",
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(TransformErrorOutputInvalid).
		WithSeverity(goerrors.SeverityError)
}

// configInvalidError reports compile-time configuration issues.
func configInvalidError(issues []ConfigIssue) error {
	fieldErrors := make([]goerrors.FieldError, 0, len(issues))
	for _, issue := range issues {
		if issue.Severity != ConfigIssueError {
			continue
		}
		field := issue.Target
		if field == "" {
			field = issue.Section
		}
		fieldErrors = append(fieldErrors, goerrors.FieldError{
			Field:   field,
			Message: issue.Message,
		})
	}
	return goerrors.NewValidation("core: mapping configuration is invalid", fieldErrors...).
		WithCode(http.StatusBadRequest).
		WithTextCode(TransformErrorConfigInvalid).
		WithSeverity(goerrors.SeverityError)
}
