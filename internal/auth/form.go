package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LoginForm is the submitted login form.
type LoginForm struct {
	Email        string `validate:"required,email,max=255"`
	Password     string `validate:"required,max=255"`
	StayLoggedIn bool
	RedirectURL  string `validate:"omitempty,max=2048"`
}

// Form field names.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldStayLoggedIn = "stay_logged_in"
	FieldRedirectURL  = "redirect_url"
)

var formValidator = validator.New()

// bindLoginForm reads and validates the login form. ok is false when the body
// cannot be parsed or a constraint fails.
func bindLoginForm(r *http.Request) (form LoginForm, ok bool) {
	if err := r.ParseForm(); err != nil {
		return LoginForm{}, false
	}
	form = LoginForm{
		Email:        strings.TrimSpace(r.PostForm.Get(FieldEmail)),
		Password:     r.PostForm.Get(FieldPassword),
		StayLoggedIn: checkboxValue(r.PostForm.Get(FieldStayLoggedIn)),
		RedirectURL:  strings.TrimSpace(r.PostForm.Get(FieldRedirectURL)),
	}
	if err := formValidator.Struct(form); err != nil {
		return LoginForm{}, false
	}
	return form, true
}

func checkboxValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	default:
		return false
	}
}

// LocalRedirect reports whether target is a path on this host. Absolute and
// protocol-relative URLs are refused, as is anything carrying control
// characters, which browsers strip before resolving the URL.
func LocalRedirect(target string) bool {
	if target == "" || target[0] != '/' {
		return false
	}
	for _, r := range target {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == "" && u.User == nil
}
