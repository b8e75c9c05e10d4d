package handler

import (
	"net/http"
	"reflect"
	"strings"

	authdomain "family-directory-go/internal/domain/auth"
	directorydomain "family-directory-go/internal/domain/directory"
	messagingdomain "family-directory-go/internal/domain/messaging"
	"family-directory-go/pkg/logger"
	"github.com/go-playground/validator/v10"
)

// CookieConfig describes the session cookie the auth handlers set.
type CookieConfig struct {
	Name   string
	Secure bool
}

type Handlers struct {
	Auth      *authdomain.Service
	Directory *directorydomain.Service
	Messaging *messagingdomain.Service

	cookies  CookieConfig
	validate *validator.Validate
	log      logger.Logger
}

func New(auth *authdomain.Service, directory *directorydomain.Service, messaging *messagingdomain.Service, cookies CookieConfig, log logger.Logger) *Handlers {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{
		Auth:      auth,
		Directory: directory,
		Messaging: messaging,
		cookies:   cookies,
		validate:  validate,
		log:       log,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
