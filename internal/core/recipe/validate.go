package recipe

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"fridge2food/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 錯誤訊息使用 JSON 欄位名稱
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		_, ok := ParseLanguage(fl.Field().String())
		return ok
	})
	return v
}

// ValidateRequest 本地檢查請求格式，回傳正規化後的副本
func (o *Orchestrator) ValidateRequest(req RecipeRequest) (RecipeRequest, error) {
	normalized := req
	normalized.Ingredients = strings.TrimSpace(req.Ingredients)
	if normalized.Servings == 0 {
		normalized.Servings = 1
	}
	if req.Language != "" {
		if lang, ok := ParseLanguage(string(req.Language)); ok {
			normalized.Language = lang
		}
	}
	if req.PriceRange != nil {
		pr := *req.PriceRange
		normalized.PriceRange = &pr
	}

	if err := o.validate.Struct(normalized); err != nil {
		return req, invalidInput(describeValidation(err))
	}

	if n := utf8.RuneCountInString(normalized.Ingredients); n < o.opts.MinIngredientsLength {
		return req, invalidInput(common.NewValidationError("ingredients",
			fmt.Sprintf("ingredients must be at least %d characters", o.opts.MinIngredientsLength)))
	}
	if len(common.SplitIngredients(normalized.Ingredients)) == 0 {
		return req, invalidInput(common.NewValidationError("ingredients", "ingredients list is empty"))
	}
	if normalized.Servings > o.opts.MaxServings {
		return req, invalidInput(common.NewValidationError("servings",
			fmt.Sprintf("servings must be at most %d", o.opts.MaxServings)))
	}

	return normalized, nil
}

// ValidateRecipe 檢查模型輸出是否符合宣告的結構
func (o *Orchestrator) ValidateRecipe(r *common.GeneratedRecipe) error {
	if err := o.validate.Struct(r); err != nil {
		return describeValidation(err)
	}
	return nil
}

// invalidInput 輸入錯誤，訊息直接顯示給使用者
func invalidInput(err error) *common.CustomError {
	return common.ErrInvalidInput.Wrap(err).WithMessage(err.Error())
}

// describeValidation 將 validator 錯誤轉為可讀訊息
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "min":
		msg = fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gtefield":
		msg = fmt.Sprintf("%s must not be lower than %s", field, strings.ToLower(fe.Param()))
	case "language":
		msg = fmt.Sprintf("unsupported language %q", fe.Value())
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return common.NewValidationError(fe.Namespace(), msg)
}
