package services

import (
	"errors"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	customerrors "github.com/grocerysushi/stumbleupon-clone/internal/errors"
	"github.com/grocerysushi/stumbleupon-clone/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator with the domain tags registered.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("feedback_action", func(fl validator.FieldLevel) bool {
			return models.Action(fl.Field().String()).IsFeedback()
		})
		_ = validate.RegisterValidation("link_status", func(fl validator.FieldLevel) bool {
			return models.LinkStatus(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
			return isWebURL(fl.Field().String())
		})
	})
	return validate
}

// validateStruct runs the struct tags and converts the first failure into a
// customerrors.ValidationError whose cause identifies the failing rule.
func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return customerrors.NewValidationError("request", customerrors.ErrMissingField, err.Error())
	}
	fe := fieldErrs[0]
	return customerrors.NewValidationError(fe.Field(), causeForTag(fe.Tag()), describe(fe))
}

func causeForTag(tag string) error {
	switch tag {
	case "required":
		return customerrors.ErrMissingField
	case "feedback_action":
		return customerrors.ErrInvalidAction
	case "slug":
		return customerrors.ErrInvalidSlug
	case "link_status":
		return customerrors.ErrInvalidStatus
	case "weburl":
		return customerrors.ErrInvalidURL
	}
	return customerrors.ErrMissingField
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ""
	case "feedback_action":
		return "must be one of LIKE, DISLIKE, SKIP, SAVE, SHARE"
	case "slug":
		return "must contain lowercase letters, digits and dashes only"
	case "link_status":
		return "must be one of PENDING, APPROVED, REJECTED, FLAGGED"
	case "weburl":
		return "must be an absolute http or https URL"
	}
	return fe.Tag()
}

// normalizeTopics trims, lower-cases and de-duplicates a topic filter.
// Empty entries are dropped; anything that is not a slug is a validation error.
func normalizeTopics(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		slug := strings.ToLower(strings.TrimSpace(t))
		if slug == "" {
			continue
		}
		if !slugPattern.MatchString(slug) {
			return nil, customerrors.NewValidationError("topics", customerrors.ErrInvalidTopic, "unexpected characters in "+slug)
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out, nil
}

func isWebURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
