package model

import "strings"

// FallbackEmoji marks a category missing from the catalog.
const FallbackEmoji = "💰"

// Category is a named bucket for transactions of one type.
type Category struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Type  TxType `json:"type"`
}

var catalog = []Category{
	{"Food", "🍕", Expense},
	{"Transport", "🚗", Expense},
	{"Shopping", "🛍️", Expense},
	{"Rent", "🏠", Expense},
	{"Bills", "💡", Expense},
	{"Entertainment", "🎮", Expense},
	{"Healthcare", "🏥", Expense},
	{"Education", "📚", Expense},
	{"Salary", "💼", Income},
	{"Freelance", "💻", Income},
	{"Investment", "📈", Income},
	{"Gift", "🎁", Income},
	{"Bonus", "🎉", Income},
}

// Categories returns the built-in catalog, optionally narrowed to one type.
// An empty type returns every category.
func Categories(t TxType) []Category {
	out := make([]Category, 0, len(catalog))
	for _, c := range catalog {
		if t == "" || c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// EmojiFor looks up a category glyph, matching names case-insensitively.
func EmojiFor(t TxType, name string) string {
	for _, c := range catalog {
		if (t == "" || c.Type == t) && strings.EqualFold(c.Name, name) {
			return c.Emoji
		}
	}
	return FallbackEmoji
}

// CategoryNames lists catalog names for one type, in catalog order.
func CategoryNames(t TxType) []string {
	cats := Categories(t)
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}
