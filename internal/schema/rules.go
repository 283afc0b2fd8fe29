package schema

import (
	"reflect"
	"time"

	"github.com/aTrapDeer/portfolio-cms/internal/storage"
	"github.com/go-playground/validator/v10"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := ParseTime(fl.Field().String())
		return err == nil
	}))
	// CV file metadata is checked against the same policy the upload endpoint uses.
	must(v.RegisterValidation("cvtype", func(fl validator.FieldLevel) bool {
		return storage.Documents.Allows(fl.Field().String())
	}))
	must(v.RegisterValidation("cvsize", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		switch f.Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			return f.Int() <= storage.Documents.MaxSize
		}
		return false
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ParseTime accepts RFC 3339 datetimes and plain YYYY-MM-DD dates.
func ParseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func cvTypes() []string { return storage.Documents.Types }

func cvMaxSize() int64 { return storage.Documents.MaxSize }
