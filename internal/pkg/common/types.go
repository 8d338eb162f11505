package common

import (
	"strings"
)

// Ingredient 食材
type Ingredient struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
	Price    string `json:"price,omitempty"`
}

// GeneratedRecipe 模型產生的食譜，產生後不再修改
type GeneratedRecipe struct {
	Title       string       `json:"title" validate:"required"`
	Ingredients []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	Steps       []string     `json:"steps" validate:"required,min=1,dive,required"`
	IsValid     *bool        `json:"isValid,omitempty"`
}

// Recipe 帶有識別碼的食譜，id 由介面層指定
type Recipe struct {
	ID string `json:"id" validate:"required"`
	GeneratedRecipe
}

// NewRecipe 包裝產生的食譜並指定識別碼
func NewRecipe(id string, generated GeneratedRecipe) Recipe {
	return Recipe{ID: id, GeneratedRecipe: generated}
}

// SplitIngredients 將逗號分隔的食材字串拆成清單
func SplitIngredients(raw string) []string {
	var items []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '、' || r == '，'
	}) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Notice 使用者可見的提示訊息（toast）
type Notice struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Notice 類型
const (
	NoticeDefault     = "default"
	NoticeDestructive = "destructive"
)
