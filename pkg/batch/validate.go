package batch

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/yaklabco/mdpatch/pkg/fingerprint"
	"github.com/yaklabco/mdpatch/pkg/locate"
	"github.com/yaklabco/mdpatch/pkg/patch"
)

// Resolve validates a single entry outside of a batch file, as built from
// command-line flags, and converts it. Errors are Errors with DocumentLevel
// indices.
func (e Entry) Resolve() (Item, error) {
	item, errs := e.toItem(DocumentLevel)
	if len(errs) > 0 {
		return Item{}, errs
	}
	return item, nil
}

// validate runs the semantic checks that the schema cannot express.
func (e Entry) validate(index int) Errors {
	kind, kindErr := patch.ParseKind(e.Operation)
	needsContent := kindErr == nil && kind.NeedsContent()

	err := validation.ValidateStruct(&e,
		validation.Field(&e.File, validation.Required.Error("is required"), validation.By(notBlank)),
		validation.Field(&e.Heading, validation.Required.Error("is required"), validation.By(validHeading)),
		validation.Field(&e.Index, validation.Min(0).Error("must be zero or greater")),
		validation.Field(&e.Operation, validation.Required.Error("is required"), validation.By(validKind)),
		validation.Field(&e.Content, validation.When(needsContent,
			validation.Required.Error("is required for append and replace"), validation.By(notBlank))),
		validation.Field(&e.Fingerprint, validation.By(validPattern)),
	)

	return fieldErrors(index, err)
}

func notBlank(value any) error {
	if s, ok := value.(string); ok && s != "" && strings.TrimSpace(s) == "" {
		return validation.NewError("batch_blank", "must not be blank")
	}
	return nil
}

func validHeading(value any) error {
	list, ok := value.(HeadingList)
	if !ok || len(list) == 0 {
		return nil
	}
	if _, err := locate.ParseSteps(list); err != nil {
		return validation.NewError("batch_heading", err.Error())
	}
	return nil
}

func validKind(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := patch.ParseKind(s); err != nil {
		return validation.NewError("batch_operation", err.Error())
	}
	return nil
}

func validPattern(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := fingerprint.Compile(s); err != nil {
		return validation.NewError("batch_fingerprint", err.Error())
	}
	return nil
}

// fieldErrors converts ozzo-validation's per-field map into ordered
// ValidationErrors.
func fieldErrors(index int, err error) Errors {
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return Errors{{Index: index, Message: err.Error()}}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Errors, 0, len(names))
	for _, name := range names {
		out = append(out, ValidationError{Index: index, Field: name, Message: fields[name].Error()})
	}
	return out
}
