package serve

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/syssam/analytiq/serve/validate"
)

// validateInput runs the struct-tag validator over a copy of in, taking
// its address so validate.Struct can reflect on named fields regardless
// of whether In is passed by value.
func validateInput[In any](in In) error {
	return validate.Struct(&in)
}

// decodeInput unmarshals the request body into a zero value of In, then
// overlays any query parameters whose JSON name matches a still-zero
// field, per spec.md §4.8 step 6 ("merging body and query parameters").
func decodeInput[In any](r *http.Request) (In, error) {
	var in In
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && err != io.EOF {
			return in, err
		}
	}
	overlayQuery(&in, r.URL.Query())
	return in, nil
}

func overlayQuery(dst any, query url.Values) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		values, ok := query[name]
		if !ok || len(values) == 0 {
			continue
		}
		fv := rv.Field(i)
		if !fv.IsZero() {
			continue
		}
		setFromQuery(fv, values)
	}
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func setFromQuery(fv reflect.Value, values []string) {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(values[0])
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(values[0], 10, 64); err == nil {
			fv.SetInt(n)
		}
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(values[0], 64); err == nil {
			fv.SetFloat(n)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(values[0]); err == nil {
			fv.SetBool(b)
		}
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.String {
			fv.Set(reflect.ValueOf(values))
		}
	}
}
