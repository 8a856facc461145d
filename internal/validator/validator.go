package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// BodyField is the field path used for errors about the body as a whole.
const BodyField = "body"

var (
	// trans is the singleton English translator for validation errors.
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// It is safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(jsonName)

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	})
}

// TranslateErrors takes a validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with BodyField.
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields[BodyField] = err.Error()
	return fields
}

// BindJSON reads the request body and decodes it into dst.
// Returns nil on success or a field error map on failure.
func BindJSON(c *gin.Context, dst any) map[string]string {
	raw, err := c.GetRawData()
	if err != nil {
		return map[string]string{BodyField: "request body could not be read"}
	}
	return Decode(raw, dst)
}

// Decode fills the request struct pointed to by dst from raw and validates
// it. Every violation is reported, keyed by JSON field name; a body that is
// not a JSON object is reported under BodyField and then validated as if it
// were empty. Returns nil when dst is valid.
func Decode(raw []byte, dst any) map[string]string {
	Setup()

	fields := make(map[string]string)

	obj, err := parseObject(raw)
	if err != nil {
		fields[BodyField] = err.Error()
	}

	rv := reflect.ValueOf(dst).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := jsonName(sf)
		if name == "" || !sf.IsExported() {
			continue
		}
		msg, ok := obj[name]
		if !ok {
			continue
		}
		if err := decodeField(msg, rv.Field(i)); err != nil {
			fields[name] = name + " " + err.Error()
		}
	}

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		for name, msg := range TranslateErrors(err) {
			// A type error is more precise than the constraint it caused.
			if _, seen := fields[name]; !seen {
				fields[name] = msg
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
