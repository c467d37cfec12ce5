package form

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Checkbox is a boolean form value with HTML checkbox semantics: a missing value,
// "" and "false" or "0" in any case are false, anything else is true ("off" included).
type Checkbox bool

// UnmarshalParam implements binding.BindUnmarshaler
func (c *Checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(param) {
	case "", "false", "0":
		*c = false
	default:
		*c = true
	}
	return nil
}

// Bool returns the plain value
func (c Checkbox) Bool() bool {
	return bool(c)
}

var errNilRequest = errors.New("nil request")

// bind maps req into obj with b and converts any failure into messages in errs.
// Field validation failures only add field errors and return nil. A request that
// could not be read at all adds a non-field error and returns the cause, after
// which field cleaning would only report values that were never parsed.
func bind(req *http.Request, obj interface{}, b binding.Binding, errs Errors) error {
	setup()

	if req == nil {
		errs.Add(NonFieldErrors, T(MsgInvalidValue))
		return errNilRequest
	}

	err := b.Bind(req, obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs.Add(fe.Field(), fe.Translate(translator))
		}
		return nil
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		errs.Add(NonFieldErrors, T(MsgFileTooLarge, strconv.FormatInt(tooLarge.Limit>>20, 10)))
	case errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary):
		errs.Add(NonFieldErrors, T(MsgNotMultipart))
	default:
		logrus.Debugf("form: bind %T failed: %v", obj, err)
		errs.Add(NonFieldErrors, T(MsgInvalidValue))
	}
	return err
}

// IsTooLarge reports whether err comes from a body cut off by http.MaxBytesReader
func IsTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
