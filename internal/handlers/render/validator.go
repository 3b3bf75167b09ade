package render

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Statistic names look like "generalpvp_kills" or "operatorpvp_roundwon:3:1"
var statisticName = regexp.MustCompile(`^[a-zA-Z0-9_:.]+$`)

func configureValidator(validate *validator.Validate) {
	_ = validate.RegisterValidation("statistics", validateStatisticsList)
	validate.RegisterTagNameFunc(useJSONTagNames)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// Comma separated list of statistic names without empty items
func validateStatisticsList(fl validator.FieldLevel) bool {
	list := fl.Field().String()
	if list == "" {
		return false
	}

	for name := range strings.SplitSeq(list, ",") {
		if !statisticName.MatchString(name) {
			return false
		}
	}
	return true
}
