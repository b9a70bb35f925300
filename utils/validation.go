/*
 * Copyright 2025 Olake By Datazip
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// single instance, it caches struct info
var (
	validate     *validator.Validate
	trans        ut.Translator
	validateOnce sync.Once
)

func setupValidator() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		}

		if name == "-" || name == "" {
			return fld.Name
		}

		return name
	})

	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
}

func translateError(err error) []string {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []string{err.Error()}
	}

	errs := make([]string, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, e.Translate(trans))
	}

	return errs
}

// Validate checks the `validate` tags of structure and returns every violation
// joined into a single error, using json names for fields.
func Validate[T any](structure T) error {
	validateOnce.Do(setupValidator)

	if err := validate.Struct(structure); err != nil {
		return errors.New(strings.Join(translateError(err), "; "))
	}

	return nil
}

// ValidateEach validates every element and prefixes failures with name[index]
func ValidateEach[T any](items []T, name string) error {
	for idx, item := range items {
		if err := Validate(item); err != nil {
			return fmt.Errorf("%s[%d]: %s", name, idx, err)
		}
	}

	return nil
}
