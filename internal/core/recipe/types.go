package recipe

import (
	"strings"

	"fridge2food/internal/pkg/common"
)

// Language 食譜輸出語言
type Language string

// 支援的語言
const (
	LanguageEnglish  Language = "English"
	LanguageHindi    Language = "Hindi"
	LanguageGujarati Language = "Gujarati"
	LanguageMarathi  Language = "Marathi"
	LanguageTamil    Language = "Tamil"
	LanguageSpanish  Language = "Spanish"
	LanguageFrench   Language = "French"
	LanguageGerman   Language = "German"

	// LanguageUnknown 食材檢查無法判斷語言時的回傳值
	LanguageUnknown Language = "Unknown"
)

// SupportedLanguages 可選擇的語言清單（順序即顯示順序）
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageHindi,
	LanguageGujarati,
	LanguageMarathi,
	LanguageTamil,
	LanguageSpanish,
	LanguageFrench,
	LanguageGerman,
}

// ParseLanguage 不分大小寫比對支援的語言
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, lang := range SupportedLanguages {
		if strings.EqualFold(string(lang), s) {
			return lang, true
		}
	}
	return "", false
}

// PriceRange 食材總價範圍
type PriceRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gt=0,gtefield=Min"`
}

// RecipeRequest 一次食譜生成請求
type RecipeRequest struct {
	Ingredients string      `json:"ingredients" validate:"required"`
	Servings    int         `json:"servings" validate:"gte=1"`
	Language    Language    `json:"language,omitempty" validate:"omitempty,language"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
}

// CheckResult 食材檢查結果
type CheckResult struct {
	IsValid  bool     `json:"isValid"`
	Language Language `json:"language"`
}

// Result 帶標籤的結果：Recipe 與 Err 只會有一個非 nil
type Result struct {
	Recipe *common.GeneratedRecipe `json:"recipe,omitempty"`
	Err    *common.CustomError     `json:"-"`
}

// OK 是否成功
func (r Result) OK() bool {
	return r.Err == nil && r.Recipe != nil
}

// Options 協調器設定
type Options struct {
	ValidateInput        bool
	MinIngredientsLength int
	MaxServings          int
	DefaultLanguage      Language
	Currency             string
}

// DefaultOptions 預設設定
func DefaultOptions() Options {
	return Options{
		ValidateInput:        true,
		MinIngredientsLength: 10,
		MaxServings:          50,
		DefaultLanguage:      LanguageEnglish,
		Currency:             "USD",
	}
}
