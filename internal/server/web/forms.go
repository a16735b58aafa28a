package web

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoginForm is the navbar login form. Username accepts an email as well.
type LoginForm struct {
	Username string `form:"username" label:"Username" validate:"required"`
	Password string `form:"password" label:"Password" validate:"required"`
}

// RegisterForm is the account creation form.
type RegisterForm struct {
	Username string `form:"username" label:"Username" validate:"required,min=3,max=25"`
	Email    string `form:"email" label:"Email" validate:"required,email,min=6,max=40"`
	Password string `form:"password" label:"Password" validate:"required,min=6,max=40"`
	Confirm  string `form:"confirm" label:"Verify password" validate:"required,eqfield=Password"`
}

func loginFormFromRequest(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func registerFormFromRequest(r *http.Request) RegisterForm {
	return RegisterForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}
}

// formValidator wraps validator.Validate and renders field errors as the
// messages shown above a form, e.g. "Username - This field is required.".
type formValidator struct {
	v *validator.Validate
}

func newFormValidator() *formValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return &formValidator{v: v}
}

// Messages validates form and returns one message per failed field, in
// field order. A nil result means the form is valid.
func (fv *formValidator) Messages(form any) []string {
	err := fv.v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	seen := map[string]bool{}
	var out []string
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		out = append(out, fieldMessage(fe.Field(), messageFor(form, fe)))
	}
	return out
}

func fieldMessage(label, msg string) string {
	return label + " - " + msg
}

func messageFor(form any, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Passwords must match"
	case "min", "max":
		if lo, hi, ok := lengthBounds(form, fe.StructField()); ok {
			return "Field must be between " + lo + " and " + hi + " characters long."
		}
	}
	return "Invalid value."
}

// lengthBounds reads the min and max rules declared for a field so length
// errors can name both ends of the range.
func lengthBounds(form any, field string) (string, string, bool) {
	t := reflect.TypeOf(form)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	f, ok := t.FieldByName(field)
	if !ok {
		return "", "", false
	}

	var lo, hi string
	for _, rule := range strings.Split(f.Tag.Get("validate"), ",") {
		if v, found := strings.CutPrefix(rule, "min="); found {
			lo = v
		}
		if v, found := strings.CutPrefix(rule, "max="); found {
			hi = v
		}
	}
	return lo, hi, lo != "" && hi != ""
}
