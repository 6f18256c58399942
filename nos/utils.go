package nos

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/netease/nos-go-sdk/nos/types"
)

// marshalInput copies the fields of request tagged `input:"header,Name"` or
// `input:"query,name"` into input. Empty values are skipped. A map tagged
// `input:"header,x-nos-meta-,usermeta"` adds one header per entry. The
// embedded RequestCommon is applied last.
func marshalInput(request any, input *OperationInput) error {
	v := reflect.ValueOf(request)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("cannot marshal input from %T", request)
	}

	if input.Headers == nil {
		input.Headers = map[string]string{}
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("input")
		if !ok {
			continue
		}
		fv := v.Field(i)
		if isEmptyValue(fv) {
			continue
		}

		tokens := strings.Split(tag, ",")
		if len(tokens) < 2 {
			continue
		}
		kind, name := tokens[0], tokens[1]

		if len(tokens) > 2 && tokens[2] == "usermeta" {
			meta, ok := fv.Interface().(map[string]string)
			if !ok {
				return fmt.Errorf("usermeta field %s must be map[string]string", t.Field(i).Name)
			}
			for k, mv := range meta {
				if !strings.HasPrefix(strings.ToLower(k), name) {
					k = name + k
				}
				input.Headers[k] = mv
			}
			continue
		}

		value, err := reflectValueString(fv)
		if err != nil {
			return err
		}
		switch kind {
		case "header":
			input.Headers[name] = value
		case "query":
			input.Parameters.SetValue(name, value)
		}
	}

	if rc, ok := requestCommon(v); ok {
		for k, hv := range rc.Headers {
			input.Headers[k] = hv
		}
		for _, p := range rc.Parameters {
			input.Parameters.Set(p.Name, p.Value)
		}
	}
	return nil
}

func requestCommon(v reflect.Value) (*RequestCommon, bool) {
	f := v.FieldByName("RequestCommon")
	if !f.IsValid() {
		return nil, false
	}
	if f.CanAddr() {
		rc, ok := f.Addr().Interface().(*RequestCommon)
		return rc, ok
	}
	rc, ok := f.Interface().(RequestCommon)
	return &rc, ok
}

func reflectValueString(v reflect.Value) (string, error) {
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	}
	return "", errors.New("cannot marshal " + v.Type().String())
}

type unmarshalFunc func(result any, output *OperationOutput) error

type resultCommonInterface interface {
	CopyIn(output *OperationOutput)
}

func unmarshalOutput(result any, output *OperationOutput, handlers ...unmarshalFunc) error {
	if rc, ok := result.(resultCommonInterface); ok {
		rc.CopyIn(output)
	}
	for _, h := range handlers {
		if err := h(result, output); err != nil {
			return err
		}
	}
	return nil
}

func discardBodyHandler(result any, output *OperationOutput) error {
	return discardBody(output.Body)
}

// unmarshalHeader fills fields tagged `output:"header,Name"`. The "etag"
// option strips enclosing quotes and "usermeta" collects every header with
// the given prefix into a map.
func unmarshalHeader(result any, output *OperationOutput) error {
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("output")
		if !ok {
			continue
		}
		tokens := strings.Split(tag, ",")
		if len(tokens) < 2 || tokens[0] != "header" {
			continue
		}
		name := tokens[1]
		option := ""
		if len(tokens) > 2 {
			option = tokens[2]
		}

		if option == "usermeta" {
			meta := userMetadata(output.Headers, name)
			if len(meta) > 0 {
				v.Field(i).Set(reflect.ValueOf(meta))
			}
			continue
		}

		values, ok := output.Headers[http.CanonicalHeaderKey(name)]
		if !ok || len(values) == 0 {
			continue
		}
		value := values[0]
		if option == "etag" {
			value = strings.Trim(value, `'"`)
		}
		if err := setReflectValue(v.Field(i), value); err != nil {
			return err
		}
	}
	return nil
}

func userMetadata(headers http.Header, prefix string) map[string]string {
	meta := map[string]string{}
	for k, vv := range headers {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, prefix) && len(vv) > 0 {
			meta[lk[len(prefix):]] = vv[0]
		}
	}
	return meta
}

// unmarshalBodyXml decodes the response body into result and closes it.
func unmarshalBodyXml(result any, output *OperationOutput) error {
	if output.Body == nil {
		return types.NewErrXmlParse(output.StatusCode, nil, io.ErrUnexpectedEOF)
	}
	defer output.Body.Close()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return types.NewErrXmlParse(output.StatusCode, body, err)
	}
	if err = xml.Unmarshal(body, result); err != nil {
		return types.NewErrXmlParse(output.StatusCode, body, err)
	}
	return nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

func setReflectValue(dst reflect.Value, data string) (err error) {
	dst0 := dst

	if dst.Kind() == reflect.Pointer {
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		dst = dst.Elem()
	}

	switch dst.Kind() {
	default:
		return errors.New("cannot unmarshal into " + dst0.Type().String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if len(data) == 0 {
			dst.SetInt(0)
			return nil
		}
		itmp, err := strconv.ParseInt(strings.TrimSpace(data), 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(itmp)
	case reflect.Bool:
		if len(data) == 0 {
			dst.SetBool(false)
			return nil
		}
		value, err := strconv.ParseBool(strings.TrimSpace(data))
		if err != nil {
			return err
		}
		dst.SetBool(value)
	case reflect.String:
		dst.SetString(data)
	}
	return nil
}
